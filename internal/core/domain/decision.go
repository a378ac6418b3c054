package domain

import (
	"fmt"
	"strings"
)

type DomainScore struct {
	Domain string  `json:"domain"`
	Score  float64 `json:"score"`
}

// DomainScores is sorted by descending score.
type DomainScores []DomainScore

func (s DomainScores) Top(n int) DomainScores {
	if n < 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

func (s DomainScores) Display(n int) string {
	top := s.Top(n)
	lines := make([]string, 0, len(top))
	for _, item := range top {
		lines = append(lines, fmt.Sprintf("  - %s: %.2f", item.Domain, item.Score))
	}
	return strings.Join(lines, "\n")
}

// Decision is the classification backend's answer. Category may be invalid
// until resolved against the catalog.
type Decision struct {
	Thought  string `json:"thought"`
	Category string `json:"category"`
	NewName  string `json:"new_name"`
	Fallback bool   `json:"-"`
}
