package entity

// ResponseType classifies a query result. Driven by whether retrieval
// produced evidence, never by parsing the model's prose.
type ResponseType string

const (
	ResponseTypeAnswered     ResponseType = "ANSWERED"
	ResponseTypeCannotAnswer ResponseType = "CANNOT_ANSWER"
)
