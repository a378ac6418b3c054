package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kirillkom/file-organizer/internal/core/domain"
	"github.com/kirillkom/file-organizer/internal/core/ports"
)

var (
	openingFence = regexp.MustCompile("(?m)^\\s*```[A-Za-z]*\\s*")
	closingFence = regexp.MustCompile("(?m)\\s*```\\s*$")
)

type DecisionEngine struct {
	backend ports.ClassificationBackend
	cache   ports.DecisionCache
	catalog domain.Catalog
	logger  *slog.Logger
	now     func() time.Time
}

type DecisionOption func(*DecisionEngine)

func WithDecisionCache(cache ports.DecisionCache) DecisionOption {
	return func(e *DecisionEngine) {
		e.cache = cache
	}
}

func WithReferenceClock(now func() time.Time) DecisionOption {
	return func(e *DecisionEngine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewDecisionEngine(
	backend ports.ClassificationBackend,
	catalog domain.Catalog,
	logger *slog.Logger,
	opts ...DecisionOption,
) *DecisionEngine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &DecisionEngine{
		backend: backend,
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide asks the backend for a category and a canonical name. Every failure
// degrades to the fallback decision; nothing is returned as an error.
func (e *DecisionEngine) Decide(
	ctx context.Context,
	path string,
	extraction domain.Extraction,
	scores domain.DomainScores,
) domain.Decision {
	name := filepath.Base(path)
	prompt := buildDecisionPrompt(promptInput{
		ReferenceDate: e.now().Format("2006-01-02"),
		FileName:      name,
		Extension:     filepath.Ext(name),
		Metadata:      extraction.Metadata.Render(),
		Text:          extraction.Text,
		Catalog:       e.catalog,
		Scores:        scores,
	})

	key := decisionFingerprint(name, extraction)
	reply, cached, err := e.complete(ctx, key, prompt)
	if err != nil {
		e.logger.Error("decision_fallback", "file", name, "error", domain.WrapError(domain.ErrBackend, "classification backend", err))
		return e.fallback(name)
	}

	decision, err := parseDecision(reply)
	if err != nil {
		e.logger.Error("decision_fallback", "file", name, "error", domain.WrapError(domain.ErrBackend, "parse decision", err))
		return e.fallback(name)
	}
	if strings.TrimSpace(decision.NewName) == "" {
		decision.NewName = name
	}

	if !cached && e.cache != nil {
		if err := e.cache.Set(ctx, key, reply); err != nil {
			e.logger.Warn("decision_cache_set_failed", "file", name, "error", err)
		}
	}
	return decision
}

func (e *DecisionEngine) complete(ctx context.Context, key, prompt string) (string, bool, error) {
	if e.cache != nil {
		reply, ok, err := e.cache.Get(ctx, key)
		switch {
		case err != nil:
			e.logger.Warn("decision_cache_get_failed", "error", err)
		case ok:
			if _, parseErr := parseDecision(reply); parseErr == nil {
				return reply, true, nil
			}
		}
	}
	if e.backend == nil {
		return "", false, errors.New("no classification backend configured")
	}
	reply, err := e.backend.Complete(ctx, prompt)
	if err != nil {
		return "", false, err
	}
	return reply, false, nil
}

func (e *DecisionEngine) fallback(name string) domain.Decision {
	return domain.Decision{
		Category: e.catalog.Fallback,
		NewName:  name,
		Fallback: true,
	}
}

func parseDecision(raw string) (domain.Decision, error) {
	payload := stripCodeFences(raw)
	payload = extractJSONObject(payload)

	var decision domain.Decision
	if err := json.Unmarshal([]byte(payload), &decision); err != nil {
		return domain.Decision{}, fmt.Errorf("parse decision json: %w", err)
	}
	return decision, nil
}

func stripCodeFences(raw string) string {
	out := openingFence.ReplaceAllString(raw, "")
	out = closingFence.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func decisionFingerprint(name string, extraction domain.Extraction) string {
	h := sha256.New()
	h.Write([]byte(name))
	h.Write([]byte{0})
	h.Write([]byte(extraction.Metadata.Render()))
	h.Write([]byte{0})
	h.Write([]byte(extraction.Text))
	return hex.EncodeToString(h.Sum(nil))
}
