package scripture_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/versecue/versecue/pkg/scripture"
)

func TestReference_Display(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ref  scripture.Reference
		want string
	}{
		{scripture.Reference{Book: "John", Chapter: 3, VerseStart: 16}, "John 3:16"},
		{scripture.Reference{Book: "Romans", Chapter: 8, VerseStart: 28, VerseEnd: 30}, "Romans 8:28-30"},
		{scripture.Reference{Book: "Psalms", Chapter: 23, VerseStart: 1}, "Psalms 23:1"},
	}
	for _, tc := range cases {
		if got := tc.ref.Display(); got != tc.want {
			t.Errorf("Display()=%q, want %q", got, tc.want)
		}
	}
}

func TestDetection_JSONFieldNames(t *testing.T) {
	t.Parallel()

	d := scripture.Detection{
		Reference:  scripture.Reference{Book: "John", Chapter: 3, VerseStart: 16},
		RawMatch:   "John 3:16",
		Pattern:    scripture.PatternStandard,
		Confidence: 0.95,
		Timestamp:  time.Now(),
	}
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal envelope: %v", err)
	}
	for _, key := range []string{"reference", "raw_match", "pattern", "confidence", "timestamp"} {
		if _, ok := m[key]; !ok {
			t.Errorf("output missing %q key: %s", key, data)
		}
	}

	// The nested reference must use the same snake_case contract.
	var ref map[string]json.RawMessage
	if err := json.Unmarshal(m["reference"], &ref); err != nil {
		t.Fatalf("Unmarshal reference: %v", err)
	}
	for _, key := range []string{"book", "chapter", "verse_start"} {
		if _, ok := ref[key]; !ok {
			t.Errorf("reference missing %q key: %s", key, m["reference"])
		}
	}
	if _, ok := ref["verse_end"]; ok {
		t.Errorf("single-verse reference carries verse_end: %s", m["reference"])
	}
}

func TestPatternType_Confidence(t *testing.T) {
	t.Parallel()

	if got := scripture.PatternStandard.Confidence(); got != 0.95 {
		t.Errorf("standard confidence=%.2f, want 0.95", got)
	}
	if got := scripture.PatternChapterOnly.Confidence(); got != 0.80 {
		t.Errorf("chapterOnly confidence=%.2f, want 0.80", got)
	}
	if got := scripture.PatternType("bogus").Confidence(); got != 0 {
		t.Errorf("unknown pattern confidence=%.2f, want 0", got)
	}
	if scripture.PatternType("bogus").IsValid() {
		t.Error("IsValid(bogus)=true, want false")
	}
}
