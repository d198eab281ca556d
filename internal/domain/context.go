package domain

import (
	"fmt"
	"strings"
)

// ContextRadius is the number of lines shown above and below a bookmark.
const ContextRadius = 2

// ContextWindow renders the lines around lineNumber, one-based and annotated.
// The marked line is prefixed with an arrow:
//
//	  40: func main() {
//	→ 41:     run()
//	  42: }
func ContextWindow(lines []string, lineNumber int) string {
	if len(lines) == 0 || lineNumber < 0 || lineNumber >= len(lines) {
		return ""
	}

	start := max(0, lineNumber-ContextRadius)
	end := min(len(lines)-1, lineNumber+ContextRadius)

	var sb strings.Builder
	for i := start; i <= end; i++ {
		marker := "  "
		if i == lineNumber {
			marker = "→ "
		}
		fmt.Fprintf(&sb, "%s%d: %s\n", marker, i+1, lines[i])
	}
	return sb.String()
}
