package generator

import (
	"errors"
	"strings"
	"testing"

	"github.com/and161185/passvault/internal/errs"
)

func countIn(s, set string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(set, r) {
			n++
		}
	}
	return n
}

func TestGenerate_AllClasses(t *testing.T) {
	t.Parallel()

	all := Lowercase + Uppercase + Digits + Symbols
	for i := 0; i < 200; i++ {
		pw, err := Generate(Options{Length: 10, Uppercase: true, Numbers: true, Symbols: true})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(pw) != 10 {
			t.Fatalf("len=%d, want 10 (%q)", len(pw), pw)
		}
		if countIn(pw, Uppercase) == 0 || countIn(pw, Digits) == 0 || countIn(pw, Symbols) == 0 {
			t.Fatalf("missing a required class in %q", pw)
		}
		if countIn(pw, all) != len(pw) {
			t.Fatalf("char outside the universe in %q", pw)
		}
	}
}

func TestGenerate_LowercaseOnly(t *testing.T) {
	t.Parallel()

	pw, err := Generate(DefaultOptions())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(pw) != DefaultLength {
		t.Fatalf("len=%d, want %d", len(pw), DefaultLength)
	}
	if countIn(pw, Lowercase) != len(pw) {
		t.Fatalf("want lowercase only, got %q", pw)
	}
}

func TestGenerate_BudgetSmallerThanRequired(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		pw, err := Generate(Options{Length: 2, Uppercase: true, Numbers: true})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if len(pw) != 2 {
			t.Fatalf("len=%d, want 2", len(pw))
		}
		if countIn(pw, Uppercase) != 1 || countIn(pw, Digits) != 1 {
			t.Fatalf("want one uppercase and one digit, got %q", pw)
		}
	}

	pw, err := Generate(Options{Length: 1, Uppercase: true, Numbers: true, Symbols: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(pw) != 1 || countIn(pw, Uppercase) != 1 {
		t.Fatalf("want a single uppercase char (first class in order), got %q", pw)
	}
}

func TestGenerate_ZeroAndNegative(t *testing.T) {
	t.Parallel()

	pw, err := Generate(Options{Length: 0, Uppercase: true, Symbols: true})
	if err != nil || pw != "" {
		t.Fatalf("want empty password, got %q err=%v", pw, err)
	}

	if _, err := Generate(Options{Length: -1}); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestGenerate_NotConstant(t *testing.T) {
	t.Parallel()

	a, _ := Generate(Options{Length: 32, Uppercase: true, Numbers: true, Symbols: true})
	b, _ := Generate(Options{Length: 32, Uppercase: true, Numbers: true, Symbols: true})
	if a == b {
		t.Fatalf("two 32-char passwords are equal: %q", a)
	}
}
