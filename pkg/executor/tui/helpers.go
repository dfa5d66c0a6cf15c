package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// wordWrap wraps text to fit within the specified width while preserving
// line breaks. Width is measured in terminal cells.
func wordWrap(text string, width int) string {
	if width <= 0 {
		width = 80
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}

		currentLine := ""
		for _, word := range strings.Fields(line) {
			// Break words that cannot fit on a line of their own
			for lipgloss.Width(word) > width {
				if currentLine != "" {
					result.WriteString(currentLine)
					result.WriteString("\n")
					currentLine = ""
				}
				head, tail := splitAtWidth(word, width)
				result.WriteString(head)
				result.WriteString("\n")
				word = tail
			}

			switch {
			case word == "":
			case currentLine == "":
				currentLine = word
			case lipgloss.Width(currentLine)+1+lipgloss.Width(word) > width:
				result.WriteString(currentLine)
				result.WriteString("\n")
				currentLine = word
			default:
				currentLine += " " + word
			}
		}
		result.WriteString(currentLine)
	}

	return result.String()
}

// splitAtWidth cuts s after the last rune that fits in width cells.
func splitAtWidth(s string, width int) (string, string) {
	used := 0
	for i, r := range s {
		w := lipgloss.Width(string(r))
		if used+w > width && i > 0 {
			return s[:i], s[i:]
		}
		used += w
	}
	return s, ""
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	head, _ := splitAtWidth(s, width-1)
	return head + "…"
}
