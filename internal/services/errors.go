package services

import "errors"

// Error kinds. Every error returned by this package either is one of these,
// wraps one of these, or is an unexpected storage failure.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrForbidden       = errors.New("forbidden")
	ErrExpired         = errors.New("expired")
	ErrInvalidAnswer   = errors.New("invalid answer")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnavailable     = errors.New("service unavailable")
)

type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrUserNotFound    = newKindError(ErrNotFound, "user not found")
	ErrProjectNotFound = newKindError(ErrNotFound, "project not found")
	ErrTaskNotFound    = newKindError(ErrNotFound, "task not found")

	ErrAlreadyAssigned    = newKindError(ErrConflict, "user is already assigned to this project")
	ErrProjectHasManager  = newKindError(ErrConflict, "this project already has a manager, only one manager per project")
	ErrTeamLeaderCapacity = newKindError(ErrConflict, "this project already has the maximum of 3 team leaders")
	ErrEmailTaken         = newKindError(ErrConflict, "email already registered")
	ErrLoginIDExhausted   = newKindError(ErrConflict, "could not generate a unique login id, try again")

	ErrNotAuthenticated   = newKindError(ErrUnauthenticated, "not authenticated")
	ErrInvalidCredentials = newKindError(ErrUnauthenticated, "invalid login id, email or password")

	ErrCannotKickAdmin      = newKindError(ErrForbidden, "cannot kick an admin")
	ErrManagerKickScope     = newKindError(ErrForbidden, "manager can only kick team leaders and team members")
	ErrKickNotAllowed       = newKindError(ErrForbidden, "only admin or manager can kick users")
	ErrTaskPermissionDenied = newKindError(ErrForbidden, "you cannot modify this task")
	ErrAdminRoleRestricted  = newKindError(ErrForbidden, "only an admin can grant or revoke the admin role")
	ErrProfileForbidden     = newKindError(ErrForbidden, "you cannot edit this profile")
	ErrUserNotVisible       = newKindError(ErrForbidden, "user is outside your visibility")
	ErrRoleNotSet           = newKindError(ErrForbidden, "user role not set")

	ErrChallengeInvalid = newKindError(ErrNotFound, "invalid or expired, request a new question from forgot password")
	ErrChallengeExpired = newKindError(ErrExpired, "question expired, request a new one from forgot password")
	ErrWrongAnswer      = newKindError(ErrInvalidAnswer, "wrong answer, please try again")

	ErrFullNameRequired   = newKindError(ErrInvalidInput, "full name is required")
	ErrEmailRequired      = newKindError(ErrInvalidInput, "email is required")
	ErrIdentifierRequired = newKindError(ErrInvalidInput, "enter your email or login id")
	ErrPasswordTooShort   = newKindError(ErrInvalidInput, "password too short")
	ErrPasswordMismatch   = newKindError(ErrInvalidInput, "passwords do not match")
	ErrAnswerRequired     = newKindError(ErrInvalidInput, "please enter the answer to the question")
	ErrInvalidAge         = newKindError(ErrInvalidInput, "age must be between 0 and 150")
	ErrTitleRequired      = newKindError(ErrInvalidInput, "title is required")
	ErrProjectNameEmpty   = newKindError(ErrInvalidInput, "project name is required")

	ErrAIServiceNotConfigured = newKindError(ErrUnavailable, "AI service is not configured")
	ErrAINoTasksGenerated     = newKindError(ErrInvalidInput, "AI did not generate any tasks")
)
