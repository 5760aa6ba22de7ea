package usecase

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "Acme Brand, Salted Potato-Chips!",
			want:  []string{"acme", "brand", "salted", "potato", "chips"},
		},
		{
			name:  "drops stop words and units",
			input: "chips in a 12 oz bag",
			want:  []string{"chips"},
		},
		{
			name:  "drops pure numeric tokens",
			input: "cola 12 355 ml",
			want:  []string{"cola"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want int
	}{
		{"no overlap", []string{"acme", "chips"}, []string{"globex", "cola"}, 0},
		{"partial overlap", []string{"acme", "salted", "chips"}, []string{"acme", "chips", "wafer"}, 2},
		{"duplicates count once", []string{"acme", "acme"}, []string{"acme", "acme"}, 1},
		{"empty sets", nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("tokenOverlap(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
