// Package slug holds the rules for short-link slugs: the allowed alphabet and length,
// normalization, random human-readable slugs and construction of the final short link.
package slug

import (
	"errors"
	"math/rand"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxLength is the maximum number of characters in a slug.
	MaxLength = 20
	// Tag is the validator tag checking the slug alphabet.
	Tag = "slug"
	// PathPrefix is the path short links are served under.
	PathPrefix = "/r/"
)

// ErrInvalid is returned when a slug is empty, too long or contains characters
// other than ASCII letters, digits and hyphens.
var ErrInvalid = errors.New("only alphanumeric characters and hyphens are allowed, up to 20 characters")

var pattern = regexp.MustCompile(`^[-a-zA-Z0-9]+$`)

// Normalize returns the stored form of a slug typed by a user.
//
//	Normalize("CAT-IN-HAT") // "cat-in-hat"
func Normalize(s string) string {
	return strings.ToLower(s)
}

// Valid reports whether s is 1 to MaxLength characters of [-a-zA-Z0-9].
func Valid(s string) bool {
	return len(s) > 0 && len(s) <= MaxLength && pattern.MatchString(s)
}

// RegisterValidation registers the Tag validation on v. Length is not part of the
// tag, combine it with max=20 where needed.
func RegisterValidation(v *validator.Validate) error {
	return v.RegisterValidation(Tag, func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	})
}

// Link builds the fully qualified short link for s. An origin without a scheme is
// assumed to be served over https.
//
//	Link("https://nexxel.dev", "cat-in-hat") // "https://nexxel.dev/r/cat-in-hat"
//	Link("nexxel.dev/", "cat-in-hat")        // "https://nexxel.dev/r/cat-in-hat"
func Link(origin, s string) string {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if !strings.Contains(origin, "://") {
		origin = "https://" + origin
	}
	return origin + PathPrefix + s
}

// Words are kept at six letters or fewer so three of them joined by hyphens
// never exceed MaxLength.
var (
	adjectives = []string{
		"able", "amber", "bold", "brave", "bright", "calm", "clever", "cosmic", "crisp", "curly",
		"dusty", "eager", "early", "fancy", "fast", "fluffy", "fuzzy", "gentle", "giant", "glossy",
		"golden", "grumpy", "happy", "hidden", "humble", "icy", "jolly", "kind", "lazy", "little",
		"lively", "lucky", "mellow", "mighty", "misty", "modern", "noisy", "odd", "polite", "proud",
		"quick", "quiet", "rapid", "rare", "rusty", "shiny", "silent", "silly", "sleepy", "small",
		"snowy", "soft", "spicy", "steady", "sunny", "swift", "tidy", "tiny", "vivid", "wild",
	}
	nouns = []string{
		"apple", "badger", "bear", "beetle", "bird", "breeze", "cactus", "camera", "candle", "cat",
		"cloud", "comet", "cookie", "crab", "dragon", "eagle", "engine", "falcon", "forest", "fox",
		"garden", "ghost", "guitar", "hat", "island", "jacket", "kettle", "koala", "lamp", "lemon",
		"lion", "mango", "meadow", "monkey", "moon", "needle", "ocean", "otter", "panda", "parrot",
		"pepper", "piano", "planet", "pony", "rabbit", "river", "rocket", "salmon", "shadow", "spoon",
		"star", "stone", "tiger", "tomato", "tree", "tunnel", "violin", "walrus", "whale", "zebra",
	}
)

// Random returns a human-readable slug of two adjectives and a noun,
// for example "lucky-silent-otter". The result always satisfies Valid.
func Random() string {
	return strings.Join([]string{
		adjectives[rand.Intn(len(adjectives))],
		adjectives[rand.Intn(len(adjectives))],
		nouns[rand.Intn(len(nouns))],
	}, "-")
}
