package pricing

import (
	"reflect"
	"testing"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Crème   Fraîche ", "creme fraiche"},
		{"Gousses d'ail", "gousses d ail"},
		{"Bœuf haché", "bœuf hache"},
		{"PÂTES", "pates"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeText(tt.in); got != tt.want {
			t.Errorf("NormalizeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("lait 2% a l'avoine, 1 l")
	want := []string{"lait", "avoine"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestContainsPhrase(t *testing.T) {
	tests := []struct {
		text, phrase string
		want         bool
	}{
		{"ail du quebec", "ail", true},
		{"chandail", "ail", false},
		{"taille ail", "ail", true},
		{"pomme de terre jaune", "pomme de terre", true},
		{"pommes de terre", "pomme de terre", false},
		{"creme brulee", "creme", true},
		{"", "ail", false},
		{"ail", "", false},
	}
	for _, tt := range tests {
		if got := ContainsPhrase(tt.text, tt.phrase); got != tt.want {
			t.Errorf("ContainsPhrase(%q, %q) = %v, want %v", tt.text, tt.phrase, got, tt.want)
		}
	}
}
