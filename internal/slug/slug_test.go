package slug

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "cat-in-hat", Normalize("CAT-IN-HAT"))
	assert.Equal(t, "cat-in-hat", Normalize("Cat-In-Hat"))
	assert.Equal(t, "cat-in-hat", Normalize("cat-in-hat"))
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		slug string
		want bool
	}{
		{name: "lowercase words", slug: "cat-in-hat", want: true},
		{name: "mixed case and digits", slug: "Cat-2-Hat", want: true},
		{name: "single hyphen", slug: "-", want: true},
		{name: "max length", slug: "abcdefghijklmnopqrst", want: true},
		{name: "empty", slug: "", want: false},
		{name: "too long", slug: "abcdefghijklmnopqrstu", want: false},
		{name: "space", slug: "cat in hat", want: false},
		{name: "underscore", slug: "cat_in_hat", want: false},
		{name: "slash", slug: "cat/hat", want: false},
		{name: "non ascii", slug: "кот", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.slug))
		})
	}
}

func TestRandom(t *testing.T) {
	for i := 0; i < 1000; i++ {
		s := Random()

		assert.True(t, Valid(s), "random slug %q is not valid", s)
		assert.Equal(t, Normalize(s), s)
	}
}

func TestWordLengths(t *testing.T) {
	for _, w := range append(append([]string{}, adjectives...), nouns...) {
		assert.LessOrEqual(t, len(w), 6, w)
	}
}

func TestLink(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{name: "https origin", origin: "https://nexxel.dev", want: "https://nexxel.dev/r/cat-in-hat"},
		{name: "trailing slash", origin: "https://nexxel.dev/", want: "https://nexxel.dev/r/cat-in-hat"},
		{name: "no scheme", origin: "nexxel.dev", want: "https://nexxel.dev/r/cat-in-hat"},
		{name: "http origin", origin: "http://localhost:8080", want: "http://localhost:8080/r/cat-in-hat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Link(tt.origin, "cat-in-hat"))
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	validate := validator.New()
	require.NoError(t, RegisterValidation(validate))

	assert.NoError(t, validate.Var("cat-in-hat", Tag))
	assert.Error(t, validate.Var("cat in hat", Tag))
	assert.Error(t, validate.Var("cat.hat", Tag))
}
