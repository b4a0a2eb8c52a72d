package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/taker-api/internal/constants"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"github.com/yukikurage/taker-api/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles authentication related business logic, including the
// password reset challenge.
type AuthService struct {
	userRepo     repository.UserRepository
	positionRepo repository.PositionRepository
	mailer       Mailer
	now          func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, positionRepo repository.PositionRepository, mailer Mailer) *AuthService {
	if mailer == nil {
		mailer = NoopMailer{}
	}
	return &AuthService{
		userRepo:     userRepo,
		positionRepo: positionRepo,
		mailer:       mailer,
		now:          time.Now,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	IDCardNumber    string
	Position        string
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Signup registers a new Member. The requested role, if any, is not honored.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	email := NormalizeEmail(input.Email)

	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Password != input.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	loginID, err := uniqueLoginID(s.userRepo)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		LoginID:      &loginID,
		PasswordHash: hashedPassword,
		Role:         models.RoleMember,
	}
	if idCard := strings.TrimSpace(input.IDCardNumber); idCard != "" {
		user.IDCardNumber = &idCard
	}
	if position := lookupPosition(s.positionRepo, input.Position); position != nil {
		user.PositionID = &position.ID
		user.Position = position
	}

	if err := s.userRepo.Create(user); err != nil {
		if _, findErr := s.userRepo.FindByEmail(email); findErr == nil {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// uniqueLoginID draws random 5-digit ids until one is free.
func uniqueLoginID(userRepo repository.UserRepository) (int, error) {
	for i := 0; i < constants.LoginIDAttempts; i++ {
		candidate, err := utils.GenerateLoginID()
		if err != nil {
			return 0, err
		}
		taken, err := userRepo.ExistsLoginID(candidate)
		if err != nil {
			return 0, fmt.Errorf("failed to check login id: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return 0, ErrLoginIDExhausted
}

// LoginInput holds the credentials for authentication. LoginID wins over
// Email when both are given.
type LoginInput struct {
	LoginID      *int
	Email        string
	IDCardNumber string
	Password     string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	if input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *models.User
		err  error
	)
	switch {
	case input.LoginID != nil:
		user, err = s.userRepo.FindByLoginID(*input.LoginID)
	case NormalizeEmail(input.Email) != "":
		user, err = s.userRepo.FindByEmail(NormalizeEmail(input.Email))
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.LoginID == nil {
		if idCard := strings.TrimSpace(input.IDCardNumber); idCard != "" {
			if user.IDCardNumber == nil || *user.IDCardNumber != idCard {
				return nil, ErrInvalidCredentials
			}
		}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.Role == "" {
		return nil, ErrRoleNotSet
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// Challenge is what the caller shows to the user who forgot their password.
type Challenge struct {
	Question string
	Email    string
}

// IssueChallenge stores a fresh "What is a + b?" question on the user found by
// email or login id, replacing any earlier one.
func (s *AuthService) IssueChallenge(identifier string) (*Challenge, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrIdentifierRequired
	}

	var (
		user *models.User
		err  error
	)
	if loginID, convErr := strconv.Atoi(identifier); convErr == nil {
		user, err = s.userRepo.FindByLoginID(loginID)
	} else {
		user, err = s.userRepo.FindByEmail(NormalizeEmail(identifier))
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	a, b, err := utils.ChallengeOperands()
	if err != nil {
		return nil, err
	}

	answer := strconv.Itoa(a + b)
	if err := s.userRepo.SaveChallenge(user.ID, answer, s.now().Add(constants.ChallengeTTL)); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return &Challenge{
		Question: fmt.Sprintf("What is %d + %d?", a, b),
		Email:    user.Email,
	}, nil
}

// ResetInput is the answer to a challenge plus the new password.
type ResetInput struct {
	Email           string
	Answer          string
	NewPassword     string
	ConfirmPassword string
}

// ConsumeChallenge sets a new password if the answer matches the pending,
// unexpired challenge. A wrong answer leaves the challenge in place.
func (s *AuthService) ConsumeChallenge(ctx context.Context, input ResetInput) error {
	email := NormalizeEmail(input.Email)
	answer := strings.TrimSpace(input.Answer)

	if email == "" {
		return ErrEmailRequired
	}
	if answer == "" {
		return ErrAnswerRequired
	}
	if len(input.NewPassword) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordMismatch
	}

	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrChallengeInvalid
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if !user.HasPendingChallenge() {
		return ErrChallengeInvalid
	}

	if s.now().After(*user.AnswerExpiresAt) {
		if err := s.userRepo.ClearChallenge(user.ID); err != nil {
			return fmt.Errorf("failed to clear challenge: %w", err)
		}
		return ErrChallengeExpired
	}

	if *user.PendingAnswer != answer {
		return ErrWrongAnswer
	}

	hashedPassword, err := hashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	consumed, err := s.userRepo.ConsumeChallenge(user.ID, answer, hashedPassword)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	if !consumed {
		return ErrChallengeInvalid
	}

	if err := s.mailer.SendPasswordChanged(ctx, user.Email, user.FullName); err != nil {
		slog.Warn("Password changed notice not delivered", "user_id", user.ID, "error", err)
	}

	return nil
}
