package chunking

import "strings"

// Splitter cuts an FAQ corpus into passages for embedding. Paragraphs are
// the preferred unit; anything longer than PassageSize falls back to a
// sliding rune window with Overlap carried between windows.
type Splitter struct {
	PassageSize int
	Overlap     int
}

func NewSplitter(passageSize, overlap int) *Splitter {
	if passageSize <= 0 {
		passageSize = 600
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= passageSize {
		overlap = passageSize / 4
	}
	return &Splitter{
		PassageSize: passageSize,
		Overlap:     overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	var out []string
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if len([]rune(paragraph)) <= s.PassageSize {
			out = append(out, paragraph)
			continue
		}
		out = append(out, s.window(paragraph)...)
	}
	return out
}

func (s *Splitter) window(text string) []string {
	runes := []rune(text)
	step := s.PassageSize - s.Overlap
	if step <= 0 {
		step = s.PassageSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + s.PassageSize
		if end > len(runes) {
			end = len(runes)
		}
		passage := strings.TrimSpace(string(runes[start:end]))
		if passage != "" {
			out = append(out, passage)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
