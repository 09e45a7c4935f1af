package numeral_test

import (
	"testing"

	"github.com/versecue/versecue/internal/numeral"
)

func TestResolve_Digits(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"1":   1,
		"16":  16,
		"150": 150,
		" 3 ": 3,
	}
	for token, want := range cases {
		got, ok := numeral.Resolve(token)
		if !ok {
			t.Errorf("Resolve(%q) not ok, want %d", token, want)
			continue
		}
		if got != want {
			t.Errorf("Resolve(%q)=%d, want %d", token, got, want)
		}
	}
}

func TestResolve_Words(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		"one":       1,
		"Twelve":    12,
		"nineteen":  19,
		"twenty":    20,
		"fifty":     50,
		"first":     1,
		"fifth":     5,
		"3rd":       3,
		"twenty-one": 21,
		"twenty one": 21,
		"thirty six": 36,
		"forty-two":  42,
	}
	for token, want := range cases {
		got, ok := numeral.Resolve(token)
		if !ok {
			t.Errorf("Resolve(%q) not ok, want %d", token, want)
			continue
		}
		if got != want {
			t.Errorf("Resolve(%q)=%d, want %d", token, got, want)
		}
	}
}

func TestResolve_Unparseable(t *testing.T) {
	t.Parallel()

	for _, token := range []string{
		"",
		"banana",
		"-4",
		"twenty eleven", // units part out of range
		"ten one",       // ten never forms a compound
		"one twenty",    // wrong order
	} {
		if n, ok := numeral.Resolve(token); ok {
			t.Errorf("Resolve(%q)=%d ok, want unparseable", token, n)
		}
	}
}

func TestTensAndUnitsWords(t *testing.T) {
	t.Parallel()

	if n, ok := numeral.IsTensWord("twenty"); !ok || n != 20 {
		t.Errorf("IsTensWord(twenty)=%d,%v, want 20,true", n, ok)
	}
	if _, ok := numeral.IsTensWord("ten"); ok {
		t.Error("IsTensWord(ten) ok, want false")
	}
	if n, ok := numeral.IsUnitsWord("nine"); !ok || n != 9 {
		t.Errorf("IsUnitsWord(nine)=%d,%v, want 9,true", n, ok)
	}
	if _, ok := numeral.IsUnitsWord("ten"); ok {
		t.Error("IsUnitsWord(ten) ok, want false")
	}
}
