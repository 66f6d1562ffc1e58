// Package service implements registration and the login/refresh/logout flow:
// rate limiting happens upstream in middleware; this service runs the lockout
// check, credential verification, and session creation in order.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"authguard/internal/audit"
	"authguard/internal/events"
	"authguard/internal/identity/domain"
	"authguard/internal/identity/repository"
	"authguard/internal/lockout"
	"authguard/internal/security"
	sessionservice "authguard/internal/session/service"
)

// Sentinel errors; the HTTP boundary maps them to statuses.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

// InvalidCredentialsError is a failed login. RemainingAttempts tells the
// client how many tries are left before lockout. The message never reveals
// whether the account exists.
type InvalidCredentialsError struct {
	RemainingAttempts int
}

func (e *InvalidCredentialsError) Error() string { return "invalid credentials" }

// Is makes errors.Is(err, ErrInvalidCredentials) match.
func (e *InvalidCredentialsError) Is(target error) bool { return target == ErrInvalidCredentials }

// AccountLockedError is returned while an identifier is locked out.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account locked; retry in %s", e.RetryAfter)
}

// AuthService composes the lockout guard, credential verification, and the
// session manager around the login path.
type AuthService struct {
	users    repository.Repository
	hasher   *security.Hasher
	guard    *lockout.Guard
	sessions *sessionservice.Manager
	audit    audit.AuditLogger
	emitter  events.Emitter
}

// NewAuthService returns an AuthService with the given dependencies.
// auditLogger and emitter may be nil (disabled).
func NewAuthService(
	users repository.Repository,
	hasher *security.Hasher,
	guard *lockout.Guard,
	sessions *sessionservice.Manager,
	auditLogger audit.AuditLogger,
	emitter events.Emitter,
) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		guard:    guard,
		sessions: sessions,
		audit:    auditLogger,
		emitter:  emitter,
	}
}

// Register creates a user with the given email and password and opens a
// first session for it.
func (s *AuthService) Register(ctx context.Context, email, password string, dc sessionservice.DeviceContext) (*sessionservice.TokenPair, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return nil, "", err
	}
	if err := validatePassword(password); err != nil {
		return nil, "", err
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailAlreadyRegistered
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hashed,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := user.Validate(); err != nil {
		return nil, "", err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	pair, err := s.sessions.CreateSession(ctx, user.ID, dc)
	if err != nil {
		return nil, "", err
	}
	s.logAudit(ctx, user.ID, audit.ActionRegister, dc.IPAddress, "")
	return pair, user.ID, nil
}

// Login authenticates email/password and creates a session. Order matters:
// the lockout check runs before credential verification, and a failed
// attempt is recorded whether or not the account exists, so the response
// never distinguishes "no such account" from "wrong password".
func (s *AuthService) Login(ctx context.Context, email, password string, dc sessionservice.DeviceContext) (*sessionservice.TokenPair, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, "", &InvalidCredentialsError{RemainingAttempts: 0}
	}

	if s.guard.IsLocked(email) {
		rem, _ := s.guard.TimeRemaining(email)
		s.logAudit(ctx, "", audit.ActionLoginFailure, dc.IPAddress, "locked")
		return nil, "", &AccountLockedError{RetryAfter: rem}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	matched := user != nil && s.hasher.Compare(user.PasswordHash, []byte(password)) == nil
	if !matched {
		res := s.guard.RecordFailure(email)
		s.logAudit(ctx, "", audit.ActionLoginFailure, dc.IPAddress, "")
		events.EmitAsync(s.emitter, &events.Event{
			Type:       events.TypeLoginFailure,
			Identifier: email,
			IP:         dc.IPAddress,
			At:         time.Now().UTC(),
		})
		if res.Locked {
			rem, _ := s.guard.TimeRemaining(email)
			s.logAudit(ctx, "", audit.ActionAccountLocked, dc.IPAddress, "")
			events.EmitAsync(s.emitter, &events.Event{
				Type:       events.TypeAccountLocked,
				Identifier: email,
				IP:         dc.IPAddress,
				At:         time.Now().UTC(),
			})
			return nil, "", &AccountLockedError{RetryAfter: rem}
		}
		return nil, "", &InvalidCredentialsError{RemainingAttempts: res.RemainingAttempts}
	}

	s.guard.Clear(email)
	pair, err := s.sessions.CreateSession(ctx, user.ID, dc)
	if err != nil {
		return nil, "", err
	}
	s.logAudit(ctx, user.ID, audit.ActionLoginSuccess, dc.IPAddress, "")
	return pair, user.ID, nil
}

// Refresh exchanges a refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, ip string) (*sessionservice.RefreshResult, error) {
	res, err := s.sessions.RefreshAccessToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	s.logAudit(ctx, res.UserID, audit.ActionTokenRefresh, ip, "")
	return res, nil
}

// Logout revokes the session matching the refresh token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, refreshToken, userID, ip string) (bool, error) {
	deleted, err := s.sessions.DeleteSession(ctx, refreshToken)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logAudit(ctx, userID, audit.ActionLogout, ip, "")
		events.EmitAsync(s.emitter, &events.Event{
			Type:   events.TypeSessionRevoked,
			UserID: userID,
			IP:     ip,
			At:     time.Now().UTC(),
		})
	}
	return deleted, nil
}

// LogoutAll revokes every session for the user and returns the count deleted.
func (s *AuthService) LogoutAll(ctx context.Context, userID, ip string) (int64, error) {
	n, err := s.sessions.DeleteAllUserSessions(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logAudit(ctx, userID, audit.ActionLogoutAll, ip, fmt.Sprintf("sessions=%d", n))
	events.EmitAsync(s.emitter, &events.Event{
		Type:   events.TypeSessionRevoked,
		UserID: userID,
		IP:     ip,
		At:     time.Now().UTC(),
	})
	return n, nil
}

func (s *AuthService) logAudit(ctx context.Context, userID, action, ip, metadata string) {
	if s.audit != nil {
		s.audit.LogEvent(ctx, userID, action, ip, metadata)
	}
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return errors.New("invalid email format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	var hasUpper, hasLower, hasNumber, hasSymbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '0' && r <= '9':
			hasNumber = true
		default:
			hasSymbol = true
		}
	}
	if !hasUpper {
		return errors.New("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return errors.New("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return errors.New("password must contain at least one number")
	}
	if !hasSymbol {
		return errors.New("password must contain at least one symbol")
	}
	return nil
}
