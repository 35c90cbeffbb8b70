package scoring

import "github.com/avelara/beacon/internal/domain"

// OpportunityType identifies the external process a score can trigger.
type OpportunityType string

const (
	OpportunityExpansion   OpportunityType = "expansion"
	OpportunityChurnRescue OpportunityType = "churn_rescue"
)

// OpportunityEvaluation is the engine's verdict on whether an external
// opportunity-generation process should act on an account. This engine only
// evaluates; creating the opportunity is the caller's job.
type OpportunityEvaluation struct {
	Type           OpportunityType `json:"type"`
	AccountID      string          `json:"account_id"`
	Score          float64         `json:"score"`
	Threshold      float64         `json:"threshold"`
	EstimatedValue float64         `json:"estimated_value"`
	Triggered      bool            `json:"triggered"`
}

// EvaluateOpportunities checks the expansion and churn-risk scores against
// their configured thresholds. Estimated value is the account's ARR times the
// configured multiplier for the opportunity type.
func (e *Engine) EvaluateOpportunities(account domain.Account, expansionScore, churnRiskScore float64) []OpportunityEvaluation {
	gen := e.cfg.OpportunityGeneration
	return []OpportunityEvaluation{
		{
			Type:           OpportunityExpansion,
			AccountID:      account.ID,
			Score:          expansionScore,
			Threshold:      e.cfg.Thresholds.Expansion,
			Triggered:      expansionScore >= e.cfg.Thresholds.Expansion,
			EstimatedValue: account.ARR * gen.ExpansionValueMultiplier,
		},
		{
			Type:           OpportunityChurnRescue,
			AccountID:      account.ID,
			Score:          churnRiskScore,
			Threshold:      e.cfg.Thresholds.ChurnRisk,
			Triggered:      churnRiskScore >= e.cfg.Thresholds.ChurnRisk,
			EstimatedValue: account.ARR * gen.ChurnRiskValueMultiplier,
		},
	}
}
