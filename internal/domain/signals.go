package domain

// Signal type taxonomy. Detector-emitted types share this namespace with
// manually recorded signals; scoring treats any unlisted type as neutral.
const (
	// Expansion signals
	SignalUsageSpike          = "usage_spike"
	SignalNearingPaywall      = "nearing_paywall"
	SignalTrialEnding         = "trial_ending"
	SignalDecisionMakerSignup = "decision_maker_signup"
	SignalIntegrationAdded    = "integration_added"
	SignalOnboardingCompleted = "onboarding_completed"

	// Churn-risk signals
	SignalHealthScoreDecrease  = "health_score_decrease"
	SignalUsageDecline         = "usage_decline"
	SignalIncompleteOnboarding = "incomplete_onboarding"
	SignalChampionLeft         = "champion_left"
	SignalSupportEscalation    = "support_escalation"
)
