// Package jester entertains the waiting room. While the heavier tiers
// deliberate, the jester analyzes the user's message locally and produces
// an instant reaction plus periodic status notes, so the caller never
// stares at a bare spinner.
package jester

import (
	"fmt"
	"math/rand"
	"strings"
)

// Sentiment is the detected mood of a user message.
type Sentiment string

const (
	SentimentPositive  Sentiment = "positive"
	SentimentNegative  Sentiment = "negative"
	SentimentNeutral   Sentiment = "neutral"
	SentimentCurious   Sentiment = "curious"
	SentimentConcerned Sentiment = "concerned"
)

// Complexity grades how involved the question looks.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Urgency grades how pressed the user sounds.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// Analysis is the jester's instant read of a message.
type Analysis struct {
	Sentiment         Sentiment  `json:"sentiment"`
	Complexity        Complexity `json:"complexity"`
	Topics            []string   `json:"topics"`
	Urgency           Urgency    `json:"urgency"`
	FirstReaction     string     `json:"first_reaction"`
	ContextualComment string     `json:"contextual_comment"`
}

var (
	positiveIndicators = []string{"harika", "mükemmel", "süper", "fena değil", "güzel", "iyi", "başarılı"}
	negativeIndicators = []string{"kötü", "berbat", "sorun", "hata", "başarısız", "çökmek", "endişe"}
	curiousIndicators  = []string{"nasıl", "neden", "merak", "öğrenmek", "anlamak", "bilmek"}
	concernedIndicators = []string{"endişe", "kaygı", "risk", "tehlike", "dikkat", "uyarı", "güvenlik"}

	technicalTerms   = []string{"algoritma", "mimari", "tasarım", "etik", "analiz", "karmaşık"}
	urgentIndicators = []string{"acil", "hemen", "şimdi", "derhal"}
	highIndicators   = []string{"kritik", "önemli"}

	topicKeywords = map[string][]string{
		"Teknoloji": {"kod", "yazılım", "web", "uygulama", "veritabanı", "api"},
		"İş":        {"şirket", "proje", "ekip", "yönetim", "strateji", "pazarlama"},
		"Tasarım":   {"arayüz", "renk", "tipografi", "yerleşim"},
		"Bilim":     {"araştırma", "teori", "deney", "hipotez"},
		"Felsefe":   {"etik", "ahlak", "anlam", "bilinç", "gerçeklik"},
	}
	topicOrder = []string{"Teknoloji", "İş", "Tasarım", "Bilim", "Felsefe"}
)

// Jester analyzes messages and generates waiting-room chatter.
type Jester struct {
	pick func(n int) int
}

// Option configures a Jester.
type Option func(*Jester)

// WithPick replaces the random list picker. Tests inject a
// deterministic one.
func WithPick(f func(n int) int) Option {
	return func(j *Jester) { j.pick = f }
}

// New creates a jester.
func New(opts ...Option) *Jester {
	j := &Jester{pick: rand.Intn}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Analyze produces the jester's full read of a message.
func (j *Jester) Analyze(message string) Analysis {
	sentiment := analyzeSentiment(message)
	complexity := analyzeComplexity(message)
	a := Analysis{
		Sentiment:  sentiment,
		Complexity: complexity,
		Topics:     extractTopics(message),
		Urgency:    analyzeUrgency(message),
	}
	a.FirstReaction = j.firstReaction(sentiment, complexity)
	a.ContextualComment = j.contextualComment(sentiment)
	return a
}

func analyzeSentiment(message string) Sentiment {
	m := strings.ToLower(message)
	switch {
	case containsAny(m, concernedIndicators):
		return SentimentConcerned
	case containsAny(m, curiousIndicators):
		return SentimentCurious
	case containsAny(m, positiveIndicators):
		return SentimentPositive
	case containsAny(m, negativeIndicators):
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func analyzeComplexity(message string) Complexity {
	words := len(strings.Fields(message))
	if words > 30 || containsAny(strings.ToLower(message), technicalTerms) {
		return ComplexityComplex
	}
	if words > 15 {
		return ComplexityModerate
	}
	return ComplexitySimple
}

func extractTopics(message string) []string {
	m := strings.ToLower(message)
	var topics []string
	for _, topic := range topicOrder {
		if containsAny(m, topicKeywords[topic]) {
			topics = append(topics, topic)
		}
	}
	if len(topics) == 0 {
		return []string{"Genel"}
	}
	return topics
}

func analyzeUrgency(message string) Urgency {
	m := strings.ToLower(message)
	if containsAny(m, urgentIndicators) {
		return UrgencyHigh
	}
	if containsAny(m, highIndicators) {
		return UrgencyMedium
	}
	return UrgencyLow
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var reactions = map[Sentiment]map[Complexity][]string{
	SentimentPositive: {
		ComplexitySimple:   {"Harika bir bakış açısı!", "Kesinlikle katılıyorum!"},
		ComplexityModerate: {"İyi bir gözlem!", "Bunu derinlemesine tartışmaya değer!"},
		ComplexityComplex:  {"Çok sofistike bir soru!", "Bu gerçekten akademik düzeyde bir tartışma!"},
	},
	SentimentNegative: {
		ComplexitySimple:   {"Anladığım kadarıyla bir sorun var...", "Endişe verici bir durum..."},
		ComplexityModerate: {"Bu sorunun kökünü bulmamız gerekiyor...", "Detaylı bir analiz yapalım..."},
		ComplexityComplex:  {"Bu çok katmanlı bir sorun...", "Sistematik bir yaklaşım gerekli..."},
	},
	SentimentCurious: {
		ComplexitySimple:   {"Harika bir soru!", "Bunu araştırmaya değer!"},
		ComplexityModerate: {"Çok ilginç bir konu!", "Bu sorunun birden fazla cevabı olabilir!"},
		ComplexityComplex:  {"Bu çok ilginç bir araştırma alanı!", "Konsey bu konuda çok fikir üretecek!"},
	},
	SentimentConcerned: {
		ComplexitySimple:   {"Riskleri göz önünde bulunduralım...", "Dikkatli olmalıyız..."},
		ComplexityModerate: {"Risk analizi yapmamız gerekiyor...", "Önlemler almalıyız..."},
		ComplexityComplex:  {"Etik ve güvenlik açısından derin bir tartışma gerekli...", "Çok boyutlu bir risk değerlendirmesi yapmalıyız..."},
	},
	SentimentNeutral: {
		ComplexitySimple:   {"Dinliyorum...", "Anladım..."},
		ComplexityModerate: {"İlginç bir konu...", "Bunu tartışmaya değer..."},
		ComplexityComplex:  {"Konsey bu konuda tartışmalı...", "Derin bir analiz yapacağız..."},
	},
}

var comments = map[Sentiment][]string{
	SentimentPositive:  {"Bu perspektif konseyde çok değerli olacak.", "Bu yaklaşımı detaylandırmaya değer."},
	SentimentNegative:  {"Bu sorunları çözmek için uzmanlar gerekli.", "Sorunu kökünden çözmemiz gerekiyor."},
	SentimentCurious:   {"Konsey bu soruya çok iyi cevaplar bulacak.", "Farklı bakış açıları bu konuyu aydınlatacak."},
	SentimentConcerned: {"Riskleri dikkatle değerlendireceğiz.", "Güvenlik ve etik açısından inceleyeceğiz."},
	SentimentNeutral:   {"Tüm yönlerini inceleyeceğiz.", "Konsey bu konuda kapsamlı bir tartışma yapacak."},
}

func (j *Jester) firstReaction(s Sentiment, c Complexity) string {
	list := reactions[s][c]
	if len(list) == 0 {
		list = reactions[SentimentNeutral][ComplexitySimple]
	}
	return list[j.pick(len(list))]
}

func (j *Jester) contextualComment(s Sentiment) string {
	list := comments[s]
	if len(list) == 0 {
		list = comments[SentimentNeutral]
	}
	return list[j.pick(len(list))]
}

var greetings = []string{
	"Harika bir soru! Konseyi topluyorum...",
	"Bunu tartışmaya değer! Uzmanlar çağrılıyor...",
	"Derinlemesine bir analiz yapacağız. Biraz sabır...",
	"Bu soru için en iyi beyinleri topladım!",
}

var statusByTier = map[string][]string{
	"T1": {
		"Hızlı modeller yanıt hazırlıyor...",
	},
	"T2": {
		"Ana model analiz yapıyor...",
		"Tartışma devam ediyor...",
	},
	"T2.5": {
		"Tartışma devam ediyor...",
		"Modeller birbirini dinliyor...",
	},
	"T3": {
		"Derin bir analiz sürüyor...",
		"Akademik tartışma devam ediyor...",
		"Hakem kararını vermeye hazırlanıyor...",
	},
}

// Greeting returns the jester's first waiting-room line.
func (j *Jester) Greeting() string {
	return greetings[j.pick(len(greetings))]
}

// Status returns a waiting-room progress note for the given tier.
func (j *Jester) Status(tier string, elapsedSeconds int) string {
	list, ok := statusByTier[tier]
	if !ok {
		list = statusByTier["T1"]
	}
	return fmt.Sprintf("%s (~%ds)", list[j.pick(len(list))], elapsedSeconds)
}
