package scoring

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

const (
	minWordCount = 10
	wordsPerUnit = 50.0
)

type compiledSet struct {
	domain    string
	primary   []string
	secondary []string
}

// Scorer computes keyword affinity between a text and each known domain.
type Scorer struct {
	sets   []compiledSet
	logger *slog.Logger
}

func NewScorer(sets []KeywordSet, logger *slog.Logger) *Scorer {
	if sets == nil {
		sets = defaultKeywordSets
	}
	compiled := make([]compiledSet, 0, len(sets))
	for _, set := range sets {
		compiled = append(compiled, compiledSet{
			domain:    set.Domain,
			primary:   normalizeAll(set.Primary),
			secondary: normalizeAll(set.Secondary),
		})
	}
	return &Scorer{sets: compiled, logger: logger}
}

func (s *Scorer) Domains() []string {
	out := make([]string, 0, len(s.sets))
	for _, set := range s.sets {
		out = append(out, set.domain)
	}
	return out
}

func (s *Scorer) Score(text, domainName string) float64 {
	for _, set := range s.sets {
		if set.domain == domainName {
			return scoreNormalized(Normalize(text), set)
		}
	}
	return 0
}

// ScoreAll scores every domain. Ties keep enumeration order.
func (s *Scorer) ScoreAll(text string) domain.DomainScores {
	normalized := Normalize(text)
	scores := make(domain.DomainScores, 0, len(s.sets))
	for _, set := range s.sets {
		scores = append(scores, domain.DomainScore{
			Domain: set.domain,
			Score:  scoreNormalized(normalized, set),
		})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	if s.logger != nil {
		s.logger.Debug("domain_scores", "scores", scores.Display(len(scores)))
	}
	return scores
}

func scoreNormalized(text string, set compiledSet) float64 {
	if text == "" {
		return 0
	}
	var sum float64
	for _, keyword := range set.primary {
		sum += primaryWeight * float64(strings.Count(text, keyword))
	}
	for _, keyword := range set.secondary {
		sum += secondaryWeight * float64(strings.Count(text, keyword))
	}
	wordCount := len(strings.Fields(text))
	if wordCount < minWordCount {
		wordCount = minWordCount
	}
	return sum / (float64(wordCount) / wordsPerUnit)
}

func normalizeAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if n := Normalize(keyword); n != "" {
			out = append(out, n)
		}
	}
	return out
}
