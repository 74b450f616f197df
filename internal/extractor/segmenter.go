package extractor

import (
	"regexp"
	"strings"
)

// MarkerPattern matches a question heading such as "QUESTÃO 12", "Questao 3:" or
// "QUESTÃO 05 -" at the start of a line. The number and an optional trailing
// separator belong to the marker. References inside a body ("conforme a questão 3")
// do not start a line and are left alone.
var MarkerPattern = regexp.MustCompile(`(?im)^[ \t]*QUEST[ÃA]O\s*\d+[ \t]*[:.)\-–]?`)

// Segment splits the concatenated document text into question bodies.
//
// Text before the first marker is kept as a body when it is not blank, so cover
// pages with text end up as a question of their own. A text without any marker
// yields no bodies.
func Segment(text string) []string {
	if !MarkerPattern.MatchString(text) {
		return nil
	}

	chunks := MarkerPattern.Split(text, -1)
	bodies := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		body := strings.TrimSpace(chunk)
		if body == "" {
			continue
		}
		bodies = append(bodies, body)
	}
	return bodies
}
