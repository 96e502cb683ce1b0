package rules

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxHeadingLen is the longest trimmed line still considered a
// heading candidate. Longer lines are ordinary prose.
const DefaultMaxHeadingLen = 180

// Rejection reason codes.
const (
	ReasonBlank   = "blank"
	ReasonTooLong = "too long"
	ReasonNoMatch = "no rule matched"
	ReasonMatched = "matched"
)

// Match records a successful heading classification.
type Match struct {
	Level       int
	LevelName   string
	Rule        *CompiledRule
	MatchedText string
	Title       string
}

// Outcome is the result of classifying one line. A non-accepted outcome
// is a normal negative result, not an error.
type Outcome struct {
	Match    *Match
	Accepted bool
	Reason   string
}

// Classify tests a single line against the compiled levels. Levels are
// tried coarsest first and rules in their configured order; the first
// rule that matches anywhere in the trimmed line wins, so coarser
// levels always take priority on ambiguous lines. Matching is an
// unanchored search: rule authors anchor with ^/$ themselves.
func Classify(line string, levels []CompiledLevel, maxLen int) Outcome {
	if maxLen <= 0 {
		maxLen = DefaultMaxHeadingLen
	}

	text := strings.TrimSpace(line)
	if text == "" {
		return Outcome{Reason: ReasonBlank}
	}
	if utf8.RuneCountInString(text) > maxLen {
		return Outcome{Reason: ReasonTooLong}
	}

	for li := range levels {
		level := &levels[li]
		for ri := range level.Rules {
			rule := &level.Rules[ri]
			groups := rule.Pattern.FindStringSubmatch(text)
			if groups == nil {
				continue
			}

			title := strings.TrimSpace(expandTemplate(rule.Template, groups))
			if title == "" {
				title = text
			}
			return Outcome{
				Accepted: true,
				Reason:   ReasonMatched,
				Match: &Match{
					Level:       level.Index,
					LevelName:   level.Name,
					Rule:        rule,
					MatchedText: text,
					Title:       title,
				},
			}
		}
	}
	return Outcome{Reason: ReasonNoMatch}
}
