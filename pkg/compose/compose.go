// Package compose assembles greeting text from a phrase bank and derives
// its content hash.
//
// The hash covers the template image reference, the font reference and the
// text, in that order, so two requests that draw the same phrases for the
// same design share a hash and therefore a cached postcard.
package compose

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/phrases"
)

// DefaultClosing is appended after the last group.
const DefaultClosing = "Ура!"

// Greeting is one composed greeting.
type Greeting struct {
	Text    string   // full greeting on a single line
	Hash    string   // lowercase hex content hash
	Phrases []string // drawn variant per group, in group order
}

// Composer draws greetings. It is safe for concurrent use.
type Composer struct {
	mu      sync.Mutex
	rng     *rand.Rand
	closing string
	digest  Digest
}

// Option configures a Composer.
type Option func(*Composer)

// WithRand sets the random source. The default is the process-wide source
// from math/rand/v2.
func WithRand(r *rand.Rand) Option {
	return func(c *Composer) { c.rng = r }
}

// WithClosing sets the closing token appended after all groups.
func WithClosing(s string) Option {
	return func(c *Composer) { c.closing = s }
}

// WithDigest sets the content hash function (default SHA-256).
func WithDigest(d Digest) Option {
	return func(c *Composer) { c.digest = d }
}

// New creates a Composer.
func New(opts ...Option) *Composer {
	c := &Composer{closing: DefaultClosing, digest: SHA256}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose draws one variant per group and hashes the result against the
// given template and font references.
func (c *Composer) Compose(bank *phrases.Bank, templateRef, fontRef string) (Greeting, error) {
	if bank == nil || len(bank.Groups) == 0 {
		return Greeting{}, errors.New(errors.ErrCodeCompose, "phrase bank has no groups")
	}

	drawn := make([]string, len(bank.Groups))
	for i, g := range bank.Groups {
		if len(g.Variants) == 0 {
			return Greeting{}, errors.New(errors.ErrCodeCompose, "group %q has no variants", g.Label)
		}
		drawn[i] = g.Variants[c.intN(len(g.Variants))]
	}

	text := Text(bank, drawn, c.closing)
	return Greeting{
		Text:    text,
		Hash:    c.Hash(templateRef, fontRef, text),
		Phrases: drawn,
	}, nil
}

// Hash returns the content hash of text rendered with the given template
// and font references.
func (c *Composer) Hash(templateRef, fontRef, text string) string {
	return c.digest.Sum(templateRef, fontRef, text)
}

// Text formats drawn phrases as "{label} {phrase}! " per group followed by
// the closing token. drawn must have one entry per group.
func Text(bank *phrases.Bank, drawn []string, closing string) string {
	var sb strings.Builder
	for i, g := range bank.Groups {
		sb.WriteString(g.Label)
		sb.WriteByte(' ')
		sb.WriteString(drawn[i])
		sb.WriteString("! ")
	}
	sb.WriteString(closing)
	return sb.String()
}

func (c *Composer) intN(n int) int {
	if c.rng == nil {
		return rand.IntN(n)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}
