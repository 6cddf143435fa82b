package engine

import (
	"fmt"
	"strings"

	"github.com/argume/council/internal/domain"
)

// Output budgets in tokens per tier and step kind. Higher tiers earn
// longer answers; the synthesis gets the most room since it folds the
// whole debate into one verdict.
var outputBudgets = map[domain.Tier]map[domain.StepKind]int{
	domain.Tier1: {
		domain.StepLead: 500,
	},
	domain.Tier2: {
		domain.StepPrimary:    800,
		domain.StepCritic:     700,
		domain.StepSpecialist: 600,
	},
	domain.Tier25: {
		domain.StepPrimary:    800,
		domain.StepCritic:     700,
		domain.StepSpecialist: 600,
	},
	domain.Tier3: {
		domain.StepPrimary:    1000,
		domain.StepCritic:     800,
		domain.StepSynthesis:  1500,
		domain.StepSpecialist: 600,
	},
}

// OutputBudget returns the max output tokens for a step.
func OutputBudget(tier domain.Tier, kind domain.StepKind) int {
	if byKind, ok := outputBudgets[tier]; ok {
		if n, ok := byKind[kind]; ok {
			return n
		}
	}
	return 500
}

// maxPriorContext bounds the transcript characters carried into the next
// step's prompt.
const maxPriorContext = 2000

func systemFor(kind domain.StepKind, p domain.Participant) string {
	switch kind {
	case domain.StepLead:
		return fmt.Sprintf("Sen %s'sin. Kullanıcıya kısa, net ve doğrudan yanıt ver.", p.Name)
	case domain.StepPrimary:
		return strings.TrimSpace(`
Sen bir tartışma Savunucususun. Görev:
1. YANIT: Soruya kapsamlı ve detaylı bir yanıt ver.
2. SAVUNMA: Pozisyonunu net ve ikna edici argümanlarla savun.
3. KAYNAKLAR: Mümkünse kaynak ve kanıt sunarak pozisyonunu güçlendir.`)
	case domain.StepCritic:
		return strings.TrimSpace(`
Sen bir tartışma Eleştirmenisin. Görev:
1. ANALİZ: Savunucu pozisyonunu dikkatle analiz et.
2. ELEŞTİRİ: Zayıf noktaları, tutarsızlıkları ve eksiklikleri bul.
3. KARŞIT ARGÜMANLAR: Pozisyona karşı güçlü argümanlar sun.
4. SORULAR: Cevaplanması gereken kritik soruları sor.
Yapıcı ama keskin bir eleştiri yap.`)
	case domain.StepSynthesis:
		return strings.TrimSpace(`
Sen bir tartışma Arabulucususun. Görev:
1. ANALİZ: Her iki pozisyonun güçlü ve zayıf yönlerini analiz et.
2. UZLAŞMA: Pozisyonlar arasında ortak noktalar bul.
3. KONSENSÜS: Her iki tarafın kabul edebileceği dengeli bir sonuca var.
4. KARAR: Nihai kararı açık ve net sun.`)
	case domain.StepSpecialist:
		return fmt.Sprintf("Sen %s'sin. Uzmanlık alanından kısa ve öz bir katkı sun.", p.Name)
	default:
		return ""
	}
}

// buildUserContent assembles the user-facing prompt for a step: the
// original message, a pruned transcript of the prior discussion, and any
// pending interjections.
func buildUserContent(userMessage, transcript string, interjections []domain.Interjection) string {
	var b strings.Builder
	b.WriteString(userMessage)

	if transcript != "" {
		b.WriteString("\n\nÖnceki tartışma:\n")
		b.WriteString(pruneContext(transcript, maxPriorContext))
	}
	if block := renderInterjections(interjections); block != "" {
		b.WriteString(block)
	}
	if transcript != "" || len(interjections) > 0 {
		b.WriteString("\n\nYeni katkı:")
	}
	return b.String()
}

// renderInterjections formats pending asides as an injected context
// block for the next speaker.
func renderInterjections(interjections []domain.Interjection) string {
	if len(interjections) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\n[MÜDAHALELER - lütfen dikkate al]")
	for _, ij := range interjections {
		fmt.Fprintf(&b, "\n%s (%s): %s", ij.SourceName, ij.Type, ij.Content)
	}
	return b.String()
}

// pruneContext keeps the tail of a long transcript, backing up to a
// sentence boundary when one falls in the kept region. The cut is made
// in runes so a multibyte character is never split.
func pruneContext(context string, maxLen int) string {
	runes := []rune(context)
	if len(runes) <= maxLen {
		return context
	}

	pruned := string(runes[len(runes)-maxLen:])
	if i := strings.LastIndexByte(pruned, '.'); i > int(float64(len(pruned))*0.7) {
		pruned = pruned[:i+1]
	}
	return "[... özet bağlam ...]\n" + pruned
}
