// Package chunker splits extracted document text into overlapping segments
// sized for embedding. Splitting is purely deterministic: identical input and
// parameters always produce identical chunks.
package chunker

import "strings"

// Chunk is one bounded segment of a source text.
type Chunk struct {
	Text   string `json:"text"`
	Index  int    `json:"index"`
	Length int    `json:"length"` // rune length of Text
	Offset int    `json:"offset"` // approximate rune offset of the chunk's own content in the source
}

type Chunker struct {
	chunkSize int
	overlap   int
	minLength int
}

// New creates a Chunker. overlap is clamped below chunkSize so the merge
// budget stays positive.
func New(chunkSize, overlap, minLength int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	if minLength < 0 {
		minLength = 0
	}
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		minLength: minLength,
	}
}

// Separator tiers, coarse to fine: paragraph breaks, line breaks, sentence
// terminators (multiple scripts), spaces, raw runes.
const (
	tierParagraph = iota
	tierLine
	tierSentence
	tierSpace
	tierRune
)

// Split segments text into chunks of at most chunkSize runes where each
// chunk after the first begins with the trailing overlap runes of its
// predecessor. Segments shorter than minLength are dropped and the rest
// re-indexed from zero. Empty or whitespace-only input yields no chunks.
func (c *Chunker) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []Chunk{{Text: text, Index: 0, Length: len(runes), Offset: 0}}
	}

	// Base segments carry at most chunkSize-overlap new runes each, so a
	// chunk (overlap tail + segment) never exceeds chunkSize.
	budget := c.chunkSize - c.overlap
	segments := c.split(text, tierParagraph, budget)

	// Drop undersized segments, keeping offsets of the survivors.
	type placed struct {
		text   string
		offset int
	}
	var kept []placed
	offset := 0
	for _, seg := range segments {
		segLen := len([]rune(seg))
		if segLen >= c.minLength {
			kept = append(kept, placed{text: seg, offset: offset})
		}
		offset += segLen
	}

	chunks := make([]Chunk, 0, len(kept))
	prev := ""
	for i, p := range kept {
		chunkText := p.text
		if i > 0 {
			chunkText = tailRunes(prev, c.overlap) + p.text
		}
		chunks = append(chunks, Chunk{
			Text:   chunkText,
			Index:  i,
			Length: len([]rune(chunkText)),
			Offset: p.offset,
		})
		prev = chunkText
	}

	return chunks
}

// split recursively divides text into pieces of at most budget runes,
// trying the coarsest separator tier first and descending only for pieces
// still over budget. Concatenating the returned pieces reproduces text.
func (c *Chunker) split(text string, tier, budget int) []string {
	if len([]rune(text)) <= budget {
		return []string{text}
	}
	if tier == tierRune {
		return splitRunes(text, budget)
	}

	var fragments []string
	switch tier {
	case tierParagraph:
		fragments = strings.SplitAfter(text, "\n\n")
	case tierLine:
		fragments = strings.SplitAfter(text, "\n")
	case tierSentence:
		fragments = splitSentences(text)
	case tierSpace:
		fragments = strings.SplitAfter(text, " ")
	}

	merged := mergeFragments(fragments, budget)

	var out []string
	for _, piece := range merged {
		if len([]rune(piece)) > budget {
			out = append(out, c.split(piece, tier+1, budget)...)
		} else if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// mergeFragments greedily joins adjacent fragments while staying within
// budget. Over-budget fragments pass through untouched for the next tier.
func mergeFragments(fragments []string, budget int) []string {
	var merged []string
	cur := ""
	curLen := 0
	for _, frag := range fragments {
		fragLen := len([]rune(frag))
		if cur != "" && curLen+fragLen > budget {
			merged = append(merged, cur)
			cur = ""
			curLen = 0
		}
		cur += frag
		curLen += fragLen
	}
	if cur != "" {
		merged = append(merged, cur)
	}
	return merged
}

// Sentence terminators across scripts. ASCII terminators only split when
// followed by whitespace (or end of text) so "3.14" stays intact; full-width
// terminators split unconditionally.
var (
	asciiEnders = map[rune]bool{'.': true, '!': true, '?': true}
	wideEnders  = map[rune]bool{'。': true, '！': true, '？': true, '؟': true, '।': true, '…': true}
)

func splitSentences(text string) []string {
	runes := []rune(text)
	var parts []string
	start := 0
	for i, r := range runes {
		boundary := wideEnders[r]
		if asciiEnders[r] {
			boundary = i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t'
		}
		if boundary {
			parts = append(parts, string(runes[start:i+1]))
			start = i + 1
		}
	}
	if start < len(runes) {
		parts = append(parts, string(runes[start:]))
	}
	return parts
}

func splitRunes(text string, budget int) []string {
	runes := []rune(text)
	var parts []string
	for i := 0; i < len(runes); i += budget {
		end := i + budget
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[i:end]))
	}
	return parts
}

func tailRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[len(runes)-n:])
}
