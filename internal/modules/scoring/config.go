// Package scoring aggregates account signals into normalized 0-100 health,
// expansion, and churn-risk scores.
package scoring

import (
	"fmt"
	"os"

	"github.com/avelara/beacon/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config holds the full scoring configuration. It is immutable per
// computation: overrides are merged once, at construction, never at runtime.
type Config struct {
	Signals               map[string]SignalDefinition `yaml:"signals" json:"signals"`
	Scoring               ScaleConfig                 `yaml:"scoring" json:"scoring"`
	FitMultipliers        FitMultipliers              `yaml:"fit_multipliers" json:"fit_multipliers"`
	Thresholds            Thresholds                  `yaml:"thresholds" json:"thresholds"`
	SignalProcessing      SignalProcessing            `yaml:"signal_processing" json:"signal_processing"`
	OpportunityGeneration OpportunityGeneration       `yaml:"opportunity_generation" json:"opportunity_generation"`
}

// ScaleConfig defines the score scale and signal age handling.
type ScaleConfig struct {
	ScaleMin         float64 `yaml:"scale_min" json:"scale_min"`
	ScaleMax         float64 `yaml:"scale_max" json:"scale_max"`
	RecencyDecayDays float64 `yaml:"recency_decay_days" json:"recency_decay_days"`
	MaxSignalAgeDays float64 `yaml:"max_signal_age_days" json:"max_signal_age_days"`
}

// FitMultipliers are the score multipliers applied per ICP fit band.
type FitMultipliers struct {
	ICPMatch float64 `yaml:"icp_match" json:"icp_match"` // fit_score >= 0.8
	NearICP  float64 `yaml:"near_icp" json:"near_icp"`   // 0.5 <= fit_score < 0.8
	PoorFit  float64 `yaml:"poor_fit" json:"poor_fit"`   // fit_score < 0.5
}

// Thresholds are the score levels at which opportunity generation should act.
type Thresholds struct {
	Expansion float64 `yaml:"expansion" json:"expansion"`
	ChurnRisk float64 `yaml:"churn_risk" json:"churn_risk"`
}

// SignalProcessing holds detector batch parameters.
type SignalProcessing struct {
	DedupWindowDays   int `yaml:"dedup_window_days" json:"dedup_window_days"`
	BatchAccountLimit int `yaml:"batch_account_limit" json:"batch_account_limit"`
}

// OpportunityGeneration holds the ARR multipliers used to estimate
// opportunity value per score type.
type OpportunityGeneration struct {
	ExpansionValueMultiplier float64 `yaml:"expansion_value_multiplier" json:"expansion_value_multiplier"`
	ChurnRiskValueMultiplier float64 `yaml:"churn_risk_value_multiplier" json:"churn_risk_value_multiplier"`
}

// SignalDefinition describes one signal type in the taxonomy. Weights are
// signed: positive for expansion, negative for churn risk, zero for neutral.
type SignalDefinition struct {
	Category    domain.SignalCategory `yaml:"category" json:"category"`
	Description string                `yaml:"description" json:"description"`
	Weight      float64               `yaml:"weight" json:"weight"`
}

// DefaultConfig returns the built-in scoring configuration.
func DefaultConfig() Config {
	return Config{
		Scoring: ScaleConfig{
			ScaleMin:         0,
			ScaleMax:         100,
			RecencyDecayDays: 30,
			MaxSignalAgeDays: 90,
		},
		FitMultipliers: FitMultipliers{
			ICPMatch: 1.5,
			NearICP:  1.0,
			PoorFit:  0.5,
		},
		Thresholds: Thresholds{
			Expansion: 70,
			ChurnRisk: 30,
		},
		SignalProcessing: SignalProcessing{
			DedupWindowDays:   7,
			BatchAccountLimit: 100,
		},
		OpportunityGeneration: OpportunityGeneration{
			ExpansionValueMultiplier: 0.3,
			ChurnRiskValueMultiplier: 1.0,
		},
		Signals: map[string]SignalDefinition{
			domain.SignalUsageSpike: {
				Weight:      15,
				Category:    domain.CategoryExpansion,
				Description: "Event volume grew sharply versus the preceding window",
			},
			domain.SignalNearingPaywall: {
				Weight:      20,
				Category:    domain.CategoryExpansion,
				Description: "Free plan seat utilization is close to the plan limit",
			},
			domain.SignalTrialEnding: {
				Weight:      12,
				Category:    domain.CategoryExpansion,
				Description: "Trial period ends within the alert window",
			},
			domain.SignalDecisionMakerSignup: {
				Weight:      15,
				Category:    domain.CategoryExpansion,
				Description: "A director-level or above user joined the account",
			},
			domain.SignalIntegrationAdded: {
				Weight:      8,
				Category:    domain.CategoryExpansion,
				Description: "The account connected a new integration",
			},
			domain.SignalOnboardingCompleted: {
				Weight:      5,
				Category:    domain.CategoryExpansion,
				Description: "The account finished onboarding",
			},
			domain.SignalHealthScoreDecrease: {
				Weight:      -15,
				Category:    domain.CategoryChurnRisk,
				Description: "Health score dropped versus the previous reading",
			},
			domain.SignalUsageDecline: {
				Weight:      -12,
				Category:    domain.CategoryChurnRisk,
				Description: "Week-over-week event volume declined",
			},
			domain.SignalIncompleteOnboarding: {
				Weight:      -10,
				Category:    domain.CategoryChurnRisk,
				Description: "Onboarding is still unfinished past the grace period",
			},
			domain.SignalChampionLeft: {
				Weight:      -18,
				Category:    domain.CategoryChurnRisk,
				Description: "The account champion left the company",
			},
			domain.SignalSupportEscalation: {
				Weight:      -8,
				Category:    domain.CategoryChurnRisk,
				Description: "A support conversation was escalated",
			},
		},
	}
}

// LoadConfig returns the built-in configuration merged with the YAML file at
// path. The file is decoded directly into a populated default config: a key
// the file does not mention keeps its default, so an override can retune one
// field of one section without restating its siblings. The signals map merges
// per signal type (an overridden type restates its full definition; untouched
// types keep their defaults). A missing path or file is not an error; the
// defaults apply unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read scoring config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse scoring config %s: %w", path, err)
	}
	return cfg, nil
}

// Signal resolves a signal type against the taxonomy. Unknown types never
// error: they resolve to weight 0, neutral category, and the raw type string
// as description, so taxonomy drift cannot break scoring.
func (c Config) Signal(signalType string) SignalDefinition {
	if def, ok := c.Signals[signalType]; ok {
		return def
	}
	return SignalDefinition{
		Weight:      0,
		Category:    domain.CategoryNeutral,
		Description: signalType,
	}
}
