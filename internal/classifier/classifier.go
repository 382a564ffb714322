// Package classifier decides how much machinery an inbound message deserves.
// It runs an ordered chain of strategies, cheapest first, and stops at the
// first sufficiently confident verdict.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sales-engine/internal/llm"
	"sales-engine/internal/logger"
	"sales-engine/internal/patterns"
	"sales-engine/pkg"
)

// DefaultConfidenceThreshold is the minimum confidence at which a strategy's
// verdict terminates the cascade.
const DefaultConfidenceThreshold = 0.8

// ErrUnavailable marks a strategy that could not produce any verdict for this
// request. The cascade logs it and moves on.
var ErrUnavailable = errors.New("classifier strategy unavailable")

// Strategy is one tier of the classification cascade.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, message string) (pkg.ClassificationVerdict, error)
}

// Cascade walks strategies in order until one returns an above-threshold
// verdict. It never returns an error: the universal safe default is a
// complex verdict, since generating a full contextual reply is always valid,
// if costlier.
type Cascade struct {
	strategies []Strategy
	threshold  float64
}

// New builds the standard three-tier cascade: pattern matching, then the
// local model, then the hosted model. Either model may be nil, which simply
// removes that tier.
func New(local, hosted llm.Chat, threshold float64) *Cascade {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	strategies := []Strategy{patternStrategy{}}
	if local != nil {
		strategies = append(strategies, modelStrategy{name: "local_model", chat: local, confidence: 0.7})
	}
	if hosted != nil {
		strategies = append(strategies, modelStrategy{name: "hosted_model", chat: hosted, confidence: 0.9})
	}
	return &Cascade{strategies: strategies, threshold: threshold}
}

// NewWithStrategies builds a cascade over an explicit strategy chain.
func NewWithStrategies(threshold float64, strategies ...Strategy) *Cascade {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Cascade{strategies: strategies, threshold: threshold}
}

// Classify returns exactly one verdict for the message.
func (c *Cascade) Classify(ctx context.Context, message string) pkg.ClassificationVerdict {
	var failures []string
	for _, s := range c.strategies {
		verdict, err := s.Attempt(ctx, message)
		if err != nil {
			logger.Warn().Err(err).Str("strategy", s.Name()).Msg("classifier strategy unavailable")
			failures = append(failures, s.Name())
			continue
		}
		if verdict.Confidence >= c.threshold {
			return verdict
		}
	}
	reason := "all classification tiers below threshold"
	if len(failures) > 0 {
		reason = fmt.Sprintf("classification tiers failed: %s", strings.Join(failures, ", "))
	}
	return pkg.ClassificationVerdict{
		Intent:     pkg.IntentComplex,
		Confidence: 0.5,
		Reason:     reason,
	}
}

// patternStrategy is tier 1: free, deterministic, and confident enough to
// short-circuit the cascade on any match.
type patternStrategy struct{}

func (patternStrategy) Name() string { return "pattern" }

func (patternStrategy) Attempt(_ context.Context, message string) (pkg.ClassificationVerdict, error) {
	m := patterns.Classify(message)
	switch {
	case m.Objection != "":
		return pkg.ClassificationVerdict{
			Intent:     pkg.IntentObjection,
			Confidence: 0.85,
			Reason:     "matched objection pattern: " + m.Objection,
		}, nil
	case m.Question != "":
		return pkg.ClassificationVerdict{
			Intent:     pkg.IntentSimpleQuestion,
			Confidence: 0.85,
			Reason:     "matched question pattern: " + m.Question,
		}, nil
	}
	return pkg.ClassificationVerdict{
		Intent:     pkg.IntentComplex,
		Confidence: 0,
		Reason:     "no pattern match",
	}, nil
}

// modelStrategy is a model-backed tier. Both model tiers share one prompt and
// one parser; only the backend and the assigned confidence differ.
type modelStrategy struct {
	name       string
	chat       llm.Chat
	confidence float64
}

const classifyPrompt = `You are an intent classifier for a car dealership sales chat.
Classify the customer message into exactly one of these categories:
objection, simple_question, complex.
Reply with the category name only.`

func (s modelStrategy) Name() string { return s.name }

func (s modelStrategy) Attempt(ctx context.Context, message string) (pkg.ClassificationVerdict, error) {
	reply, err := s.chat.Generate(ctx, classifyPrompt, nil, message)
	if err != nil {
		return pkg.ClassificationVerdict{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return pkg.ClassificationVerdict{
		Intent:     parseIntent(reply),
		Confidence: s.confidence,
		Reason:     s.name + " classification",
	}, nil
}

// parseIntent reads the first matching category keyword from a model reply.
// Objection is checked before simple_question; anything else is complex.
func parseIntent(reply string) pkg.Intent {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "objection"):
		return pkg.IntentObjection
	case strings.Contains(lower, "simple_question") || strings.Contains(lower, "simple question"):
		return pkg.IntentSimpleQuestion
	default:
		return pkg.IntentComplex
	}
}
