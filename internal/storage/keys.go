package storage

// Logical keys of the durable layout. Each holds one independent JSON value.
const (
	KeyMinutes = "hockey_minutes"
	KeySeconds = "hockey_seconds"
	KeyTime    = "hockey_time"
	KeySound   = "hockey_sound"
	KeyPeriod  = "hockey_period"
	KeyTeams   = "hockey_teams"
	KeyHistory = "hockey_score_history"
)

// SoftLimitBytes caps a single serialized value before the shrink policy applies.
const SoftLimitBytes = 4_000_000
