package detectors

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avelara/beacon/internal/domain"
	"github.com/avelara/beacon/internal/modules/detection"
	"github.com/rs/zerolog"
)

// titleKeywords match anywhere in a lowercased job title.
var titleKeywords = []string{
	"director",
	"vice president",
	"head of",
	"chief",
	"founder",
	"president",
	"owner",
}

// titleWords match only as whole words, to keep short tokens like "vp" from
// matching inside unrelated titles.
var titleWords = map[string]bool{
	"vp":  true,
	"ceo": true,
	"cto": true,
	"cfo": true,
	"coo": true,
	"cmo": true,
	"cro": true,
}

// IsDecisionMakerTitle classifies a job title as director-level or above.
func IsDecisionMakerTitle(title string) bool {
	normalized := strings.ToLower(strings.TrimSpace(title))
	if normalized == "" {
		return false
	}
	for _, kw := range titleKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	for _, word := range strings.FieldsFunc(normalized, func(r rune) bool {
		return r == ' ' || r == ',' || r == '/' || r == '-' || r == '&'
	}) {
		if titleWords[word] {
			return true
		}
	}
	return false
}

// DecisionMakerSignup fires when a user with a director-level or above title
// joined the account within the scan window.
type DecisionMakerSignup struct {
	log zerolog.Logger
}

// NewDecisionMakerSignup creates the decision maker signup detector.
func NewDecisionMakerSignup(log zerolog.Logger) *DecisionMakerSignup {
	return &DecisionMakerSignup{log: log.With().Str("detector", domain.SignalDecisionMakerSignup).Logger()}
}

func (d *DecisionMakerSignup) Name() string                    { return domain.SignalDecisionMakerSignup }
func (d *DecisionMakerSignup) Category() domain.SignalCategory { return domain.CategoryExpansion }

func (d *DecisionMakerSignup) Description() string {
	return "A director-level or above user joined the account"
}

func (d *DecisionMakerSignup) DefaultParams() detection.Params {
	return detection.Params{
		"scan_window_days": 30.0, // 0 scans every user regardless of age
		"lookback_days":    30.0,
	}
}

func (d *DecisionMakerSignup) Detect(ctx context.Context, dctx *detection.Context) (*domain.DetectedSignal, error) {
	fired, err := dctx.RecentlyFired(ctx, d.Name(), dctx.Params.Float("lookback_days", 30))
	if err != nil {
		return nil, fmt.Errorf("dedup check: %w", err)
	}
	if fired {
		return nil, nil
	}

	var since time.Time
	if window := dctx.Params.Float("scan_window_days", 30); window > 0 {
		since = dctx.Now.Add(-detection.Days(window))
	}

	users, err := dctx.Store.UsersCreatedSince(ctx, dctx.Account.ID, since)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	for _, user := range users {
		if !IsDecisionMakerTitle(user.Title) {
			continue
		}
		d.log.Debug().
			Str("account_id", dctx.Account.ID).
			Str("user_id", user.ID).
			Str("title", user.Title).
			Msg("Decision maker joined")
		return &domain.DetectedSignal{
			AccountID:   dctx.Account.ID,
			WorkspaceID: dctx.WorkspaceID,
			Type:        d.Name(),
			Category:    d.Category(),
			Value:       1,
			Details: map[string]any{
				"user_id": user.ID,
				"title":   user.Title,
			},
		}, nil
	}

	return nil, nil
}
