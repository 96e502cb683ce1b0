// Package rules compiles user-authored heading level definitions into
// matchers and classifies corpus lines against them.
package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// Level is one user-authored classification tier. Index 1 is the
// coarsest; nesting is implied by ordering, not by parent pointers.
// Each rule line is `pattern` optionally followed by `=>` and a title
// template.
type Level struct {
	Name  string   `json:"name"`
	Rules []string `json:"rules"`
}

// CompiledRule is a reusable matcher for one rule line. Raw keeps the
// original definition for diagnostics.
type CompiledRule struct {
	Pattern  *regexp.Regexp
	Template string
	Raw      string
}

// CompiledLevel is a level whose rules have all been compiled.
type CompiledLevel struct {
	Index int
	Name  string
	Rules []CompiledRule
}

// PatternError reports a malformed rule pattern.
type PatternError struct {
	Rule string
	Err  error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid rule pattern %q: %v", e.Rule, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// ValidationError reports a level definition that cannot be used.
type ValidationError struct {
	Level  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("level %q: %s", e.Level, e.Reason)
}

// ParseRuleBlock splits a rule editor block into rule lines, dropping
// blank and whitespace-only lines.
func ParseRuleBlock(block string) []string {
	var out []string
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

// splitRule separates a rule line into pattern and title template. A
// missing template defaults to the whole matched text (`\0`).
func splitRule(line string) (pattern, template string) {
	if left, right, ok := strings.Cut(line, "=>"); ok {
		pattern = strings.TrimSpace(left)
		template = strings.TrimSpace(right)
	} else {
		pattern = strings.TrimSpace(line)
	}
	if template == "" {
		template = `\0`
	}
	return pattern, template
}

func compileRule(line string) (CompiledRule, error) {
	pattern, template := splitRule(line)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return CompiledRule{}, &PatternError{Rule: line, Err: err}
	}
	return CompiledRule{Pattern: re, Template: template, Raw: line}, nil
}

// Compile turns level definitions into matchers. It is a pure function
// of its input: no shared state, safe to call repeatedly. A malformed
// pattern yields a PatternError; a level with zero non-blank rule lines
// yields a ValidationError.
func Compile(levels []Level) ([]CompiledLevel, error) {
	compiled := make([]CompiledLevel, 0, len(levels))
	for i, level := range levels {
		name := strings.TrimSpace(level.Name)
		if name == "" {
			name = fmt.Sprintf("L%d", i+1)
		}

		var crs []CompiledRule
		for _, line := range level.Rules {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			cr, err := compileRule(line)
			if err != nil {
				return nil, err
			}
			crs = append(crs, cr)
		}
		if len(crs) == 0 {
			return nil, &ValidationError{Level: name, Reason: "no usable rules"}
		}

		compiled = append(compiled, CompiledLevel{
			Index: i + 1,
			Name:  name,
			Rules: crs,
		})
	}
	return compiled, nil
}

// expandTemplate substitutes `\0`..`\9` backreferences in a title
// template with the corresponding capture groups. `\0` is the whole
// matched text; `\\` escapes a literal backslash.
func expandTemplate(template string, groups []string) string {
	var b strings.Builder
	runes := []rune(template)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' || i+1 >= len(runes) {
			b.WriteRune(runes[i])
			continue
		}
		next := runes[i+1]
		switch {
		case next >= '0' && next <= '9':
			n := int(next - '0')
			if n < len(groups) {
				b.WriteString(groups[n])
			}
			i++
		case next == '\\':
			b.WriteRune('\\')
			i++
		default:
			b.WriteRune(runes[i])
		}
	}
	return b.String()
}
