// Package domain provides core domain models and types.
package domain

import "time"

// SignalCategory classifies a signal's directional meaning for an account.
type SignalCategory string

const (
	// CategoryExpansion marks signals that indicate growth or upsell potential
	CategoryExpansion SignalCategory = "expansion"
	// CategoryChurnRisk marks signals that indicate disengagement or churn risk
	CategoryChurnRisk SignalCategory = "churn_risk"
	// CategoryNeutral marks informational signals with no directional weight
	CategoryNeutral SignalCategory = "neutral"
)

// SignalSource identifies how a signal was created.
type SignalSource string

const (
	// SourceHeuristic marks signals emitted by a detector rule
	SourceHeuristic SignalSource = "heuristic"
	// SourceManual marks signals recorded directly by a user
	SourceManual SignalSource = "manual"
)

// Signal is an immutable, timestamped fact about an account's behavior.
// Signals are never mutated or deleted by this engine; retention is an
// external concern.
type Signal struct {
	Timestamp   time.Time      `json:"timestamp"`
	Details     map[string]any `json:"details,omitempty"`
	ID          string         `json:"id"`
	AccountID   string         `json:"account_id"`
	WorkspaceID string         `json:"workspace_id"`
	Type        string         `json:"type"`
	Category    SignalCategory `json:"category"`
	Source      SignalSource   `json:"source"`
	Value       float64        `json:"value"`
}

// DetectedSignal is the output of a single detector invocation. It becomes a
// Signal once storage assigns an id and timestamp.
type DetectedSignal struct {
	Details     map[string]any `json:"details,omitempty"`
	AccountID   string         `json:"account_id"`
	WorkspaceID string         `json:"workspace_id"`
	Type        string         `json:"type"`
	Category    SignalCategory `json:"category"`
	Value       float64        `json:"value"`
}

// Account plans and statuses the detectors care about.
const (
	PlanFree      = "free"
	StatusTrial   = "trial"
	StatusActive  = "active"
	StatusChurned = "churned"
)

// Account is a read-only snapshot of a customer account.
type Account struct {
	CreatedAt   time.Time `json:"created_at"`
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	Name        string    `json:"name"`
	Plan        string    `json:"plan"`
	Status      string    `json:"status"`
	FitScore    float64   `json:"fit_score"` // 0.0-1.0 ICP alignment
	ARR         float64   `json:"arr"`
}

// AccountUser is a member of an account, used by detectors that inspect
// seat counts and job titles.
type AccountUser struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Email     string    `json:"email"`
	Title     string    `json:"title"`
}

// ScoreType identifies one of the three composite account scores.
type ScoreType string

const (
	ScoreHealth    ScoreType = "health"
	ScoreExpansion ScoreType = "expansion"
	ScoreChurnRisk ScoreType = "churn_risk"
)

// ScoreRecord is a persisted score snapshot for an account.
type ScoreRecord struct {
	RecordedAt time.Time `json:"recorded_at"`
	AccountID  string    `json:"account_id"`
	Type       ScoreType `json:"type"`
	Score      float64   `json:"score"`
}

// Grade is a discrete label for a score, supplied by an external grade table.
type Grade struct {
	Grade string `json:"grade"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// GradeLookup maps a score to its grade. Implementations must be total over
// the configured scale.
type GradeLookup func(score float64) Grade
