package interject

import (
	"strings"
	"testing"

	"github.com/argume/council/internal/config"
	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/registry"
)

func newDetector(t *testing.T, opts ...Option) *Keyword {
	t.Helper()
	reg, err := registry.New(config.DefaultParticipants())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return NewKeyword(reg, opts...)
}

// noInsight disables the random creative aside so tests only see
// keyword-driven interjections.
func noInsight() Option { return WithRand(func() float64 { return 1.0 }) }

func pad(s string, n int) string {
	return s + strings.Repeat(" dolgu metni", n)
}

func TestDetect_RiskKeywordPagesProsecutor(t *testing.T) {
	d := newDetector(t, noInsight())

	out := d.Detect(pad("bu yaklaşımda ciddi bir risk var", 10), "architect")
	if len(out) != 1 {
		t.Fatalf("interjections = %d, want 1", len(out))
	}
	if out[0].Type != domain.InterjectionWarning || out[0].SourceID != "prosecutor" {
		t.Errorf("got %+v", out[0])
	}
	if out[0].Content == "" || out[0].SourceName == "" {
		t.Errorf("aside missing content or name: %+v", out[0])
	}
}

func TestDetect_ShortOutputGated(t *testing.T) {
	d := newDetector(t, noInsight())

	if out := d.Detect("risk var", "architect"); len(out) != 0 {
		t.Errorf("short risky reply should not interject, got %v", out)
	}
}

func TestDetect_ConflictAlwaysFires(t *testing.T) {
	d := newDetector(t, noInsight())

	// Conflict has no length gate.
	out := d.Detect("burada bir çelişki var", "architect")
	if len(out) != 1 || out[0].Type != domain.InterjectionConflict {
		t.Fatalf("got %v", out)
	}
	if out[0].SourceID != "judge" {
		t.Errorf("conflict source = %s, want judge", out[0].SourceID)
	}
}

func TestDetect_NeverCurrentSpeaker(t *testing.T) {
	d := newDetector(t, noInsight())

	out := d.Detect(pad("bu yaklaşımda ciddi bir risk var", 10), "prosecutor")
	for _, ij := range out {
		if ij.SourceID == "prosecutor" {
			t.Errorf("speaker interjected on itself: %+v", ij)
		}
	}
}

func TestDetect_InfoPagesLibrarian(t *testing.T) {
	d := newDetector(t, noInsight())

	out := d.Detect(pad("ayrıca şu kaynak ve referans listesine bakılabilir", 12), "architect")
	found := false
	for _, ij := range out {
		if ij.Type == domain.InterjectionInfo && ij.SourceID == "librarian" {
			found = true
		}
	}
	if !found {
		t.Errorf("no INFO aside from librarian in %v", out)
	}
}

func TestDetect_ComplexityPagesArchitect(t *testing.T) {
	d := newDetector(t, noInsight())

	out := d.Detect(pad("bu oldukça karmaşık bir teknik tasarım", 20), "fast-worker")
	found := false
	for _, ij := range out {
		if ij.Type == domain.InterjectionInsight && ij.SourceID == "architect" {
			found = true
		}
	}
	if !found {
		t.Errorf("no INSIGHT aside from architect in %v", out)
	}
}

func TestDetect_InsightRandomGate(t *testing.T) {
	long := pad("uzun ama nötr bir cevap", 30)

	always := newDetector(t, WithRand(func() float64 { return 0.0 }))
	out := always.Detect(long, "architect")
	if len(out) != 1 || out[0].SourceID != "visionary" {
		t.Fatalf("gate open: got %v, want visionary aside", out)
	}

	never := newDetector(t, WithRand(func() float64 { return 0.99 }))
	if out := never.Detect(long, "architect"); len(out) != 0 {
		t.Errorf("gate closed: got %v, want none", out)
	}
}

func TestDetect_MultipleSignals(t *testing.T) {
	d := newDetector(t, noInsight())

	msg := pad("risk ve çelişki içeren karmaşık bir teknik durum, ayrıca kaynak gerekli", 20)
	out := d.Detect(msg, "fast-worker")
	types := make(map[domain.InterjectionType]bool)
	for _, ij := range out {
		types[ij.Type] = true
	}
	for _, want := range []domain.InterjectionType{
		domain.InterjectionWarning,
		domain.InterjectionInfo,
		domain.InterjectionConflict,
		domain.InterjectionInsight,
	} {
		if !types[want] {
			t.Errorf("missing %s aside, got %v", want, out)
		}
	}
}

func TestDetect_NeutralOutputQuiet(t *testing.T) {
	d := newDetector(t, noInsight())

	out := d.Detect("bugün hava güneşli ve ılık", "architect")
	if len(out) != 0 {
		t.Errorf("neutral short reply interjected: %v", out)
	}
}
