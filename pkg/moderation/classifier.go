// Package moderation classifies extracted text against a fixed harm
// taxonomy before it can be chunked and indexed.
package moderation

import (
	"context"
	"regexp"
	"strings"
)

// Harm taxonomy categories.
const (
	CategoryHarassment    = "HARASSMENT"
	CategoryHateSpeech    = "HATE_SPEECH"
	CategorySexualContent = "SEXUAL_CONTENT"
	CategoryDangerous     = "DANGEROUS_CONTENT"
)

// Result is the outcome of classifying one piece of text.
type Result struct {
	Approved   bool
	Categories []string
	Reason     string
}

// Classifier decides whether text may enter the index.
type Classifier interface {
	Classify(ctx context.Context, text string) (*Result, error)
}

// PatternClassifier blocks only on explicit high-confidence patterns.
// Everything else is approved: moderation must never be the single point
// of failure that keeps legitimate content out of the index.
type PatternClassifier struct {
	patterns map[string][]*regexp.Regexp
}

func NewPatternClassifier() *PatternClassifier {
	compile := func(exprs ...string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(exprs))
		for _, e := range exprs {
			out = append(out, regexp.MustCompile(e))
		}
		return out
	}

	return &PatternClassifier{
		patterns: map[string][]*regexp.Regexp{
			CategoryHarassment: compile(
				`(?i)\bkill yourself\b`,
				`(?i)\bnobody (would miss|wants) you\b`,
				`(?i)\byou deserve to (die|suffer)\b`,
			),
			CategoryHateSpeech: compile(
				`(?i)\ball \w+ (people )?(are|should be) (exterminated|eliminated|wiped out)\b`,
				`(?i)\b(gas|lynch) the\b`,
			),
			CategorySexualContent: compile(
				`(?i)\bexplicit sexual content involving (a )?(minor|child|children)\b`,
				`(?i)\bchild sexual abuse\b`,
			),
			CategoryDangerous: compile(
				`(?i)\bhow to (build|make) a (pipe )?bomb\b`,
				`(?i)\bstep.by.step (guide|instructions) (to|for) (synthesizing|making) (nerve agent|sarin|ricin)\b`,
				`(?i)\buntraceable (gun|firearm|weapon)\b`,
			),
		},
	}
}

// Classify scans text against every category's patterns. It never returns
// an error; the interface keeps one so remote classifiers can be swapped in.
func (c *PatternClassifier) Classify(_ context.Context, text string) (*Result, error) {
	var matched []string
	for _, category := range []string{
		CategoryHarassment,
		CategoryHateSpeech,
		CategorySexualContent,
		CategoryDangerous,
	} {
		for _, re := range c.patterns[category] {
			if re.MatchString(text) {
				matched = append(matched, category)
				break
			}
		}
	}

	if len(matched) == 0 {
		return &Result{Approved: true}, nil
	}

	return &Result{
		Approved:   false,
		Categories: matched,
		Reason:     "content blocked: matched " + strings.Join(matched, ", "),
	}, nil
}
