// Package interject scans a finished primary turn for signals that
// warrant a short aside from another council participant. Detection is
// pure computation over the output text; the engine injects results into
// the next step's context and then discards them.
package interject

import (
	"math/rand"
	"regexp"

	"github.com/argume/council/internal/domain"
	"github.com/argume/council/internal/registry"
)

// Detector is the pluggable detection strategy. Implementations must be
// pure over their inputs apart from an injected randomness source.
type Detector interface {
	Detect(output string, speakerID string) []domain.Interjection
}

// Signal classes and their minimum output lengths. Short replies carry
// too little substance to interject on.
const (
	riskMinLen       = 100
	infoMinLen       = 150
	complexityMinLen = 200
	insightMinLen    = 250

	// insightChance gates the unsolicited creative aside so it does not
	// fire on every long answer.
	insightChance = 0.35
)

var (
	riskPattern       = regexp.MustCompile(`(?i)risk|tehlike|dikkat|uyarı|hata|sorun|başarısız|çöküş`)
	infoPattern       = regexp.MustCompile(`(?i)bilgi|not|ek olarak|ayrıca|bağlam|kaynak|referans|belge`)
	conflictPattern   = regexp.MustCompile(`(?i)çatışma|uyuşmazlık|anlaşmazlık|karşıt|zıt|tutarsız|çelişki`)
	complexityPattern = regexp.MustCompile(`(?i)karmaşık|zor|derin|ileri|teknik|mimari|tasarım`)
)

// Keyword detects interjections by regex match against four signal
// classes. Each class pages a fixed role from the registry; the current
// speaker is never chosen as a source.
type Keyword struct {
	reg  *registry.Registry
	rand func() float64
}

// Option configures a Keyword detector.
type Option func(*Keyword)

// WithRand replaces the randomness source used by the insight gate.
// Tests inject a deterministic source.
func WithRand(f func() float64) Option {
	return func(k *Keyword) { k.rand = f }
}

// NewKeyword creates a keyword detector over the given registry.
func NewKeyword(reg *registry.Registry, opts ...Option) *Keyword {
	k := &Keyword{reg: reg, rand: rand.Float64}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Detect returns the asides triggered by the given output. Conflict
// matches always fire; the other classes are gated by output length, and
// the unsolicited insight additionally by chance.
func (k *Keyword) Detect(output string, speakerID string) []domain.Interjection {
	var out []domain.Interjection
	n := len(output)

	if n > riskMinLen && riskPattern.MatchString(output) {
		out = k.append(out, domain.RoleProsecutor, speakerID, domain.InterjectionWarning,
			"Risk uyarısı: bu noktadaki potansiyel riskleri, yan etkileri ve başarısızlık senaryolarını daha detaylı analiz etmeliyiz.")
	}
	if n > infoMinLen && infoPattern.MatchString(output) {
		out = k.append(out, domain.RoleLibrarian, speakerID, domain.InterjectionInfo,
			"Ek bağlam: bu konuyla ilgili ek bilgi, kaynak ve referans ekleyebilirim.")
	}
	if conflictPattern.MatchString(output) {
		out = k.append(out, domain.RoleJudge, speakerID, domain.InterjectionConflict,
			"Etik perspektif: bu çatışmayı çözmek için dengeli bir yaklaşım önerebilirim; her iki tarafın da haklı noktaları var.")
	}
	if n > complexityMinLen && complexityPattern.MatchString(output) {
		out = k.append(out, domain.RoleArchitect, speakerID, domain.InterjectionInsight,
			"Mimari perspektif: bu karmaşık yapıyı daha modüler organize edebiliriz.")
	}
	if n > insightMinLen && k.rand() < insightChance {
		out = k.append(out, domain.RoleVisionary, speakerID, domain.InterjectionInsight,
			"Yaratıcı bakış: bu soruna tamamen farklı bir açıdan yaklaşabiliriz.")
	}

	return out
}

func (k *Keyword) append(out []domain.Interjection, role domain.Role, speakerID string, typ domain.InterjectionType, content string) []domain.Interjection {
	p, ok := k.reg.ByRole(role)
	if !ok || p.ID == speakerID {
		return out
	}
	return append(out, domain.Interjection{
		Type:       typ,
		SourceID:   p.ID,
		SourceName: p.Name,
		Content:    content,
	})
}
