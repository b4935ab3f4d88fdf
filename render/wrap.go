package render

import "strings"

// WrapText wraps text into lines of at most width characters, breaking on
// word boundaries. Words longer than the width are broken mid-word.
func WrapText(text string, width int) []string {
	if width <= 0 {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, word := range words {
			wordWidth := len([]rune(word))

			switch {
			case currentWidth == 0:
				if wordWidth > width {
					lines = append(lines, breakWord(word, width)...)
				} else {
					current.WriteString(word)
					currentWidth = wordWidth
				}
			case currentWidth+1+wordWidth <= width:
				current.WriteByte(' ')
				current.WriteString(word)
				currentWidth += 1 + wordWidth
			default:
				lines = append(lines, current.String())
				current.Reset()
				if wordWidth > width {
					lines = append(lines, breakWord(word, width)...)
					currentWidth = 0
				} else {
					current.WriteString(word)
					currentWidth = wordWidth
				}
			}
		}
		if currentWidth > 0 {
			lines = append(lines, current.String())
		}
	}
	return lines
}

// breakWord splits an over-long word into width-sized chunks.
func breakWord(word string, width int) []string {
	var chunks []string
	runes := []rune(word)
	for len(runes) > width {
		chunks = append(chunks, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		chunks = append(chunks, string(runes))
	}
	return chunks
}
