package planner

import (
	"regexp"
	"strings"
)

var (
	jsonFence = regexp.MustCompile("(?s)```json(.*?)```")
	anyFence  = regexp.MustCompile("(?s)```(.*?)```")
)

// ExtractJSON pulls the plan document out of a model reply. It prefers a
// ```json fenced block, then any fenced block, then the first balanced
// {...} region, and finally falls back to the trimmed reply.
func ExtractJSON(text string) string {
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := anyFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if obj, ok := balancedObject(text); ok {
		return obj
	}
	return strings.TrimSpace(text)
}

// balancedObject returns the first {...} region whose braces balance,
// ignoring braces inside JSON strings.
func balancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
