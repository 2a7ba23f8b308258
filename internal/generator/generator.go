// Package generator produces random passwords with guaranteed character-class coverage.
package generator

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/and161185/passvault/internal/errs"
)

// DefaultLength is used when the caller does not specify a length.
const DefaultLength = 12

// Character classes.
const (
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits    = "0123456789"
	Symbols   = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Options selects length and optional character classes. Lowercase is always included.
type Options struct {
	Length    int
	Uppercase bool
	Numbers   bool
	Symbols   bool
}

// DefaultOptions returns lowercase-only options of DefaultLength.
func DefaultOptions() Options { return Options{Length: DefaultLength} }

// Generate returns a password of exactly opts.Length characters.
//
// One character from each enabled optional class is placed first (uppercase,
// numbers, symbols), capped by the length budget; the rest is drawn uniformly
// from the union of all enabled classes, and the result is shuffled.
func Generate(opts Options) (string, error) {
	if opts.Length < 0 {
		return "", fmt.Errorf("%w: negative length %d", errs.ErrInvalidArgument, opts.Length)
	}

	universe := []byte(Lowercase)
	var required []string
	if opts.Uppercase {
		universe = append(universe, Uppercase...)
		required = append(required, Uppercase)
	}
	if opts.Numbers {
		universe = append(universe, Digits...)
		required = append(required, Digits)
	}
	if opts.Symbols {
		universe = append(universe, Symbols...)
		required = append(required, Symbols)
	}

	out := make([]byte, 0, opts.Length)
	for _, class := range required {
		if len(out) == opts.Length {
			break
		}
		c, err := pick(class)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < opts.Length {
		c, err := pick(string(universe))
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

// pick returns a uniformly random byte of set.
func pick(set string) (byte, error) {
	i, err := randIntn(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

// shuffle is a Fisher–Yates shuffle driven by crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		j, err := randIntn(i + 1)
		if err != nil {
			return err
		}
		b[i], b[j] = b[j], b[i]
	}
	return nil
}

func randIntn(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("%w: random source: %v", errs.ErrInternal, err)
	}
	return int(v.Int64()), nil
}
