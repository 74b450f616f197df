package extractor

import (
	"fmt"
	"strings"
	"testing"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "no markers",
			text: "Caderno de prova sem questões numeradas.",
			want: nil,
		},
		{
			name: "empty",
			text: "",
			want: nil,
		},
		{
			name: "accented and plain markers",
			text: "QUESTÃO 1 Quanto é 2+2?\nQUESTAO 2\nQual a capital do Brasil?",
			want: []string{"Quanto é 2+2?", "Qual a capital do Brasil?"},
		},
		{
			name: "case insensitive",
			text: "questão 1 primeira\nQuestao 02 segunda",
			want: []string{"primeira", "segunda"},
		},
		{
			name: "separator consumed with marker",
			text: "QUESTÃO 01 - Leia o texto.\nQUESTÃO 02: Observe a figura.",
			want: []string{"Leia o texto.", "Observe a figura."},
		},
		{
			name: "front matter kept",
			text: "ENEM 2023 - Caderno Azul\nQUESTÃO 1 Enunciado",
			want: []string{"ENEM 2023 - Caderno Azul", "Enunciado"},
		},
		{
			name: "blank front matter dropped",
			text: "  \n\nQUESTÃO 1 Enunciado",
			want: []string{"Enunciado"},
		},
		{
			name: "reference inside a body is not a marker",
			text: "QUESTÃO 1 Conforme a questão 3 do caderno, responda.\nQUESTÃO 2 Outra",
			want: []string{"Conforme a questão 3 do caderno, responda.", "Outra"},
		},
		{
			name: "indented marker",
			text: "  QUESTÃO 1 primeira\n\tQUESTÃO 2 segunda",
			want: []string{"primeira", "segunda"},
		},
		{
			name: "empty body between markers dropped",
			text: "QUESTÃO 1\n\nQUESTÃO 2 texto",
			want: []string{"texto"},
		},
	}

	for _, tt := range tests {
		got := Segment(tt.text)
		if len(got) != len(tt.want) {
			t.Errorf("%s: Segment() returned %d bodies %q, want %d", tt.name, len(got), got, len(tt.want))
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%s: body %d = %q, want %q", tt.name, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSegment_CountMatchesMarkers(t *testing.T) {
	for _, n := range []int{1, 5, 45, 90} {
		var b strings.Builder
		for i := 1; i <= n; i++ {
			fmt.Fprintf(&b, "QUESTÃO %02d\nEnunciado da questão número %d.\n", i, i)
		}
		got := Segment(b.String())
		if len(got) != n {
			t.Errorf("n=%d: Segment() returned %d bodies", n, len(got))
		}
	}
}
