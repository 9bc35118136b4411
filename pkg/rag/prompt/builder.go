package prompt

import (
	"fmt"
	"strings"

	"doc-session-be/pkg/rag/memory"
	"doc-session-be/pkg/rag/search"
)

// Builder assembles grounded prompts for one session. Language and the
// optional custom template are fixed at session scope; query, evidence and
// history vary per call.
type Builder struct {
	language       string
	customTemplate string
}

func NewBuilder(language, customTemplate string) *Builder {
	if language == "" {
		language = "en"
	}
	return &Builder{
		language:       language,
		customTemplate: customTemplate,
	}
}

// Build creates the full prompt for an evidence-backed answer. When a
// custom template is set it takes precedence over the default layout.
func (b *Builder) Build(query string, chunks []search.RetrievedChunk, history []memory.Exchange) string {
	if b.customTemplate != "" {
		return b.buildFromTemplate(query, chunks)
	}

	var prompt strings.Builder

	b.writeHistory(&prompt, history)
	b.writeEvidence(&prompt, chunks)
	b.writeTask(&prompt)
	b.writeUserQuery(&prompt, query)

	return prompt.String()
}

// buildFromTemplate substitutes {language}, {context} and {query} in the
// session's custom template. Unknown placeholders pass through untouched.
func (b *Builder) buildFromTemplate(query string, chunks []search.RetrievedChunk) string {
	replacer := strings.NewReplacer(
		"{language}", b.language,
		"{context}", renderEvidence(chunks),
		"{query}", query,
	)
	return replacer.Replace(b.customTemplate)
}

func (b *Builder) writeHistory(prompt *strings.Builder, history []memory.Exchange) {
	if len(history) == 0 {
		return
	}

	prompt.WriteString("<conversation_history>\n")
	for _, exchange := range history {
		prompt.WriteString("User: ")
		prompt.WriteString(exchange.Query)
		prompt.WriteString("\nAssistant: ")
		prompt.WriteString(exchange.Answer)
		prompt.WriteString("\n")
	}
	prompt.WriteString("</conversation_history>\n\n")
}

func (b *Builder) writeEvidence(prompt *strings.Builder, chunks []search.RetrievedChunk) {
	prompt.WriteString("<evidence>\n")
	prompt.WriteString("CRITICAL: This is the ONLY data source. Do NOT use outside knowledge.\n\n")
	prompt.WriteString(renderEvidence(chunks))
	prompt.WriteString("</evidence>\n\n")
}

func renderEvidence(chunks []search.RetrievedChunk) string {
	var out strings.Builder
	for i, chunk := range chunks {
		out.WriteString(fmt.Sprintf("--- EXCERPT %d (source: %s, relevance: %.2f) ---\n", i+1, chunk.SourceRef, chunk.Score))
		out.WriteString(chunk.Text)
		out.WriteString(fmt.Sprintf("\n--- END EXCERPT %d ---\n", i+1))
	}
	return out.String()
}

func (b *Builder) writeTask(prompt *strings.Builder) {
	prompt.WriteString("<task_instructions>\n")
	prompt.WriteString("You are a diligent assistant answering from the user's uploaded documents.\n")
	prompt.WriteString("Each excerpt inside <evidence> is a chunk cut from one of those documents; a single document usually spans several excerpts, so excerpts sharing a source belong to the same document.\n\n")
	prompt.WriteString("EXECUTION RULES (MUST FOLLOW):\n")
	prompt.WriteString(fmt.Sprintf("1. Respond ONLY in this language: %s. This is a hard constraint.\n", b.language))
	prompt.WriteString("2. Answer ONLY using the text inside <evidence>.\n")
	prompt.WriteString("3. If the evidence does not contain the answer, say so honestly instead of guessing.\n")
	prompt.WriteString("4. Be complete but concise. Do not repeat the excerpts verbatim.\n")
	prompt.WriteString("</task_instructions>\n\n")
}

func (b *Builder) writeUserQuery(prompt *strings.Builder, query string) {
	prompt.WriteString("<user_question>\n")
	prompt.WriteString(query)
	prompt.WriteString("\n</user_question>\n\n")
	prompt.WriteString("Answer:")
}

// declineMessages are the localized refusals used when retrieval surfaces
// no evidence. The model is never called in that path.
var declineMessages = map[string]string{
	"en": "I could not find anything in the uploaded documents that answers your question.",
	"id": "Saya tidak menemukan apa pun di dokumen yang diunggah yang menjawab pertanyaan Anda.",
	"es": "No encontré nada en los documentos subidos que responda a su pregunta.",
	"de": "Ich konnte in den hochgeladenen Dokumenten nichts finden, das Ihre Frage beantwortet.",
	"fr": "Je n'ai rien trouvé dans les documents téléversés qui réponde à votre question.",
}

// DeclineMessage returns the no-evidence refusal for the given language,
// falling back to English.
func DeclineMessage(language string) string {
	if msg, ok := declineMessages[language]; ok {
		return msg
	}
	return declineMessages["en"]
}
