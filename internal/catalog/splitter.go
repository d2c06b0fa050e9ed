package catalog

import (
	"unicode"
	"unicode/utf8"

	"github.com/concesa/salesagent/internal/models"
)

// Split slices text into chunks of at most size runes with the given rune
// overlap between consecutive chunks. Breaks prefer paragraph boundaries,
// then line boundaries, then word boundaries; a run with no separator is cut
// hard. Chunk ids are dense positions, offsets are byte positions in text.
func Split(text string, size, overlap int) []models.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	byteOff := make([]int, len(runes)+1)
	for i, r := range runes {
		byteOff[i+1] = byteOff[i] + utf8.RuneLen(r)
	}

	var chunks []models.Chunk
	prev := ""
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			end = len(runes)
		} else if cut := findBreak(runes, start, end); cut > start {
			end = cut
		}

		s, e := trimRange(runes, start, end)
		if s < e {
			body := string(runes[s:e])
			if body != prev {
				chunks = append(chunks, models.Chunk{
					ID:     len(chunks),
					Text:   body,
					Offset: byteOff[s],
				})
				prev = body
			}
		}

		if end == len(runes) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// findBreak picks the break position in (start, end): just after the last
// paragraph break if any, else the last newline, else the last space.
// Returns end when nothing qualifies.
func findBreak(runes []rune, start, end int) int {
	lastNL, lastSpace := -1, -1
	for i := end - 1; i > start; i-- {
		switch runes[i] {
		case '\n':
			if i > start && runes[i-1] == '\n' {
				return i + 1
			}
			if lastNL < 0 {
				lastNL = i
			}
		case ' ', '\t':
			if lastSpace < 0 {
				lastSpace = i
			}
		}
	}
	if lastNL > start {
		return lastNL + 1
	}
	if lastSpace > start {
		return lastSpace + 1
	}
	return end
}

func trimRange(runes []rune, start, end int) (int, int) {
	for start < end && unicode.IsSpace(runes[start]) {
		start++
	}
	for end > start && unicode.IsSpace(runes[end-1]) {
		end--
	}
	return start, end
}
