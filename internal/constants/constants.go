package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "taker_session"
	ContextKeyUserID  = "user_id"
	ContextKeyActor   = "actor"
	ContextKeyTask    = "task"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Accounts
const (
	MinPasswordLength   = 6
	DefaultUserPassword = "Welcome@1"
	LoginIDMin          = 10000
	LoginIDMax          = 99999
	LoginIDAttempts     = 100
	MaxUserAge          = 150
)

// Password reset challenge
const (
	ChallengeTTL        = 5 * time.Minute
	ChallengeOperandMax = 9
)

// Project staffing limits
const (
	MaxProjectManagers    = 1
	MaxProjectTeamLeaders = 3
)

// Projects
const (
	DefaultProjectStatus = "Active"
	MinProjectProgress   = 0
	MaxProjectProgress   = 100
)

const MaxAIGeneratedTasks = 20
