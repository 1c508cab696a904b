package trx

import (
	"fmt"
	"strings"
)

// SanitizeName strips the characters that make certain TRX consumers
// (notably Azure DevOps Pipelines) reject a results file: bracketed
// [tag] annotations and commas. When removing a bracketed tag leaves a
// doubled space (one before the bracket, one after), the pair collapses
// to a single space. The final result is trimmed.
//
// An unclosed '[' is a hard error; the name cannot be sanitized.
func SanitizeName(raw string) (string, error) {
	var sb strings.Builder
	var lastChar byte
	for i := 0; i < len(raw); {
		switch {
		case raw[i] == '[':
			end := strings.IndexByte(raw[i:], ']')
			if end < 0 {
				return "", fmt.Errorf("unclosed [tag] in name: %s", raw)
			}
			i += end + 1
			if lastChar == ' ' && i < len(raw) && raw[i] == ' ' {
				// "before [tag] after" would otherwise keep both spaces.
				i++
			}
		case raw[i] == ',':
			i++
		default:
			lastChar = raw[i]
			sb.WriteByte(lastChar)
			i++
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
