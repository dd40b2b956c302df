// Package phrases holds the phrase banks greetings are composed from.
//
// A [Bank] is an ordered list of labeled groups. Composition draws one
// variant per group and emits the groups in bank order, so the order of
// groups in the source file is part of the greeting's structure while the
// order of variants inside a group is irrelevant.
//
// Banks are static configuration: load them once at startup, call
// [Bank.Validate], and share the value read-only afterwards.
//
// The TOML format is:
//
//	name = "new-year"
//
//	[[group]]
//	label = "С Новым Годом,"
//	variants = ["с новым счастьем", "годом Дракона"]
package phrases

import (
	_ "embed"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

//go:embed newyear.toml
var newYearTOML []byte

// Group is one labeled set of interchangeable phrase variants.
type Group struct {
	Label    string   `toml:"label"`
	Variants []string `toml:"variants"`
}

// Bank is an ordered collection of phrase groups.
type Bank struct {
	Name   string  `toml:"name"`
	Groups []Group `toml:"group"`
}

// Default returns the embedded New Year bank.
func Default() *Bank {
	b, err := Parse(newYearTOML)
	if err != nil {
		panic(fmt.Sprintf("phrases: embedded bank is invalid: %v", err))
	}
	return b
}

// Load reads and validates a bank from a TOML file.
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read phrase bank %s", path)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Parse decodes and validates a bank from TOML data.
func Parse(data []byte) (*Bank, error) {
	var b Bank
	md, err := toml.Decode(string(data), &b)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode phrase bank")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown phrase bank keys: %v", undecoded)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate reports a COMPOSE_ERROR when the bank cannot produce a greeting:
// no groups, a blank label, or a group without variants.
func (b *Bank) Validate() error {
	if b == nil || len(b.Groups) == 0 {
		return errors.New(errors.ErrCodeCompose, "phrase bank has no groups")
	}
	for i, g := range b.Groups {
		if strings.TrimSpace(g.Label) == "" {
			return errors.New(errors.ErrCodeCompose, "group %d has an empty label", i)
		}
		if len(g.Variants) == 0 {
			return errors.New(errors.ErrCodeCompose, "group %q has no variants", g.Label)
		}
		for j, v := range g.Variants {
			if strings.TrimSpace(v) == "" {
				return errors.New(errors.ErrCodeCompose, "group %q: variant %d is blank", g.Label, j)
			}
		}
	}
	return nil
}

// Combinations returns the number of distinct greetings the bank can produce.
// The count is exact for any bank size.
func (b *Bank) Combinations() *big.Int {
	n := new(big.Int)
	if b == nil || len(b.Groups) == 0 {
		return n
	}
	n.SetInt64(1)
	for _, g := range b.Groups {
		n.Mul(n, big.NewInt(int64(len(g.Variants))))
	}
	return n
}
