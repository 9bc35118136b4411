package summary

import (
	"fmt"
	"strings"
	"unicode"
)

// sentence terminators recognized when truncating. Mirrors the splitter
// used at ingestion so summaries cut on the same boundaries.
const terminators = ".!?。！？؟।…"

// TruncateAtSentence shortens text to at most budget runes, preferring to
// cut after the last complete sentence. Falls back to the last word
// boundary, then to a hard rune cut.
func TruncateAtSentence(text string, budget int) string {
	runes := []rune(text)
	if budget <= 0 || len(runes) <= budget {
		return text
	}

	window := runes[:budget]

	lastSentence := -1
	lastSpace := -1
	for i, r := range window {
		if strings.ContainsRune(terminators, r) {
			lastSentence = i
		}
		if unicode.IsSpace(r) {
			lastSpace = i
		}
	}

	switch {
	case lastSentence >= 0:
		return strings.TrimSpace(string(window[:lastSentence+1]))
	case lastSpace > 0:
		return strings.TrimSpace(string(window[:lastSpace]))
	default:
		return string(window)
	}
}

// instruction templates per language; the corpus itself stays untouched.
var instructions = map[string]string{
	"en": "Write a concise summary of the material below. Cover every major topic, keep it factual, and do not add information that is not present.",
	"id": "Tulis ringkasan singkat dari materi di bawah ini. Cakup setiap topik utama, tetap faktual, dan jangan menambahkan informasi yang tidak ada.",
	"es": "Escribe un resumen conciso del material siguiente. Cubre todos los temas principales, mantente factual y no agregues información que no esté presente.",
	"de": "Schreibe eine knappe Zusammenfassung des folgenden Materials. Decke jedes Hauptthema ab, bleibe sachlich und füge keine Informationen hinzu, die nicht vorhanden sind.",
	"fr": "Rédige un résumé concis du contenu ci-dessous. Couvre chaque sujet majeur, reste factuel et n'ajoute aucune information absente du texte.",
}

// BuildPrompt assembles the summarization prompt. The corpus must already
// be truncated to the session's character budget.
func BuildPrompt(language, corpus string) string {
	instruction, ok := instructions[language]
	if !ok {
		instruction = instructions["en"]
	}

	var prompt strings.Builder
	prompt.WriteString("<material>\n")
	prompt.WriteString(corpus)
	prompt.WriteString("\n</material>\n\n")
	prompt.WriteString("<task_instructions>\n")
	prompt.WriteString(instruction)
	prompt.WriteString("\n")
	if language == "" {
		language = "en"
	}
	prompt.WriteString(fmt.Sprintf("Respond ONLY in this language: %s.\n", language))
	prompt.WriteString("</task_instructions>\n\n")
	prompt.WriteString("Summary:")
	return prompt.String()
}
