package scoring

import (
	"math"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/rs/zerolog"
)

// ScoreResult is the output of one score computation.
type ScoreResult struct {
	ComponentScores map[string]float64 `json:"component_scores"`
	Type            domain.ScoreType   `json:"type"`
	Grade           domain.Grade       `json:"grade"`
	Score           float64            `json:"score"`
}

// Engine computes composite account scores from signals. It holds no mutable
// state and is safe for concurrent use across accounts.
type Engine struct {
	grades domain.GradeLookup
	cfg    Config
	log    zerolog.Logger
}

// NewEngine creates a scoring engine. The grade lookup is supplied by the
// caller; the engine only consumes it.
func NewEngine(cfg Config, grades domain.GradeLookup, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		grades: grades,
		log:    log.With().Str("module", "scoring").Logger(),
	}
}

// Config returns the engine's merged configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Calculate computes one score for an account from its signal history.
//
// Signals older than the max-age cutoff are excluded entirely. The category
// filter depends on the score type: health includes every category, expansion
// only expansion signals, churn risk only churn signals (with the absolute
// weight, since churn weights are stored negative but contribute positive
// risk magnitude). Each included signal contributes weight x recency decay;
// the sum is fit-adjusted and normalized onto the scale. An account with no
// scorable signals lands exactly on the scale midpoint: neutral, not zero.
func (e *Engine) Calculate(scoreType domain.ScoreType, account domain.Account, signals []domain.Signal, now time.Time) ScoreResult {
	components := make(map[string]float64)
	signalSum := 0.0
	included := 0

	for _, sig := range signals {
		if !WithinMaxAge(sig.Timestamp, now, e.cfg.Scoring.MaxSignalAgeDays) {
			continue
		}

		def := e.cfg.Signal(sig.Type)
		weight := def.Weight
		switch scoreType {
		case domain.ScoreExpansion:
			if def.Category != domain.CategoryExpansion {
				continue
			}
		case domain.ScoreChurnRisk:
			if def.Category != domain.CategoryChurnRisk {
				continue
			}
			weight = math.Abs(weight)
		}

		decay := RecencyDecay(AgeDays(sig.Timestamp, now), e.cfg.Scoring.RecencyDecayDays)
		contribution := weight * decay
		components[sig.Type] += contribution
		signalSum += contribution
		included++
	}

	scale := e.cfg.Scoring
	var score float64
	if included == 0 {
		score = (scale.ScaleMin + scale.ScaleMax) / 2
	} else {
		adjusted := signalSum * FitMultiplier(account.FitScore, e.cfg.FitMultipliers)
		score = Normalize(adjusted, scale.ScaleMin, scale.ScaleMax)
	}

	result := ScoreResult{
		Type:            scoreType,
		Score:           score,
		ComponentScores: components,
	}
	if e.grades != nil {
		result.Grade = e.grades(score)
	}

	e.log.Debug().
		Str("account_id", account.ID).
		Str("score_type", string(scoreType)).
		Float64("score", score).
		Int("signals_included", included).
		Msg("Calculated score")

	return result
}

// CalculateAll computes the health, expansion, and churn-risk scores in one
// pass over the same signal history.
func (e *Engine) CalculateAll(account domain.Account, signals []domain.Signal, now time.Time) map[domain.ScoreType]ScoreResult {
	results := make(map[domain.ScoreType]ScoreResult, 3)
	for _, scoreType := range []domain.ScoreType{domain.ScoreHealth, domain.ScoreExpansion, domain.ScoreChurnRisk} {
		results[scoreType] = e.Calculate(scoreType, account, signals, now)
	}
	return results
}
