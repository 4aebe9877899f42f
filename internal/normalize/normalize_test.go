package normalize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"release name", "[SubsPlease] My Show (2020) - 01", "my-show-2020-01"},
		{"apostrophe", "Frieren's Journey", "frierens-journey"},
		{"curly apostrophe", "Frieren’s Journey", "frierens-journey"},
		{"misencoded apostrophe", "Frierenâ€™s Journey", "frierens-journey"},
		{"plus and at", "Idolm@ster Cinderella+", "idolmster-cinderella"},
		{"underscore kept", "snake_case title", "snake_case-title"},
		{"punctuation runs", "Re:Zero -- Starting Life!!", "re-zero-starting-life"},
		{"only tags", "[Group][1080p]", ""},
		{"empty", "", ""},
		{"non ascii", "Pokémon", "pok-mon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugify_Properties(t *testing.T) {
	valid := regexp.MustCompile(`^([a-z0-9_]+(-[a-z0-9_]+)*)?$`)
	inputs := []string{
		"  --Leading and trailing--  ",
		"[Erai-raws] Kimetsu no Yaiba - Katanakaji no Sato-hen - 01 [1080p][Multiple Subtitle]",
		"Mushoku Tensei S2",
		"日本語タイトル",
		"a  b\t\tc",
		"(((parens)))",
		"x-y_z",
	}

	for _, in := range inputs {
		out := Slugify(in)
		assert.Regexp(t, valid, out, "input %q", in)
		assert.Equal(t, out, Slugify(out), "slugify must be idempotent for %q", in)
	}
}

func TestSearchString(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		year   int
		want   string
		wantOK bool
	}{
		{"title only", "Toradora", 0, "Toradora", true},
		{"title and year", "Toradora", 2008, "Toradora (2008)", true},
		{"trims title", "  Toradora ", 0, "Toradora", true},
		{"empty", "", 2008, "", false},
		{"whitespace", "   ", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SearchString(tt.title, tt.year)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
