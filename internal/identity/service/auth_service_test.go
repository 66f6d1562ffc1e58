package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"authguard/internal/lockout"
	"authguard/internal/security"
	sessiondomain "authguard/internal/session/domain"
	sessionservice "authguard/internal/session/service"

	"golang.org/x/crypto/bcrypt"

	identitydomain "authguard/internal/identity/domain"
)

type fakeUserRepo struct {
	byEmail map[string]*identitydomain.User
	byID    map[string]*identitydomain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: map[string]*identitydomain.User{},
		byID:    map[string]*identitydomain.User{},
	}
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*identitydomain.User, error) {
	return r.byEmail[email], nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*identitydomain.User, error) {
	return r.byID[id], nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *identitydomain.User) error {
	r.byEmail[u.Email] = u
	r.byID[u.ID] = u
	return nil
}

type fakeSessionRepo struct {
	byHash map[string]*sessiondomain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{byHash: map[string]*sessiondomain.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *sessiondomain.Session) error {
	r.byHash[s.RefreshTokenHash] = s
	return nil
}

func (r *fakeSessionRepo) GetByRefreshTokenHash(_ context.Context, hash string) (*sessiondomain.Session, error) {
	return r.byHash[hash], nil
}

func (r *fakeSessionRepo) DeleteByRefreshTokenHash(_ context.Context, hash string) (int64, error) {
	if _, ok := r.byHash[hash]; !ok {
		return 0, nil
	}
	delete(r.byHash, hash)
	return 1, nil
}

func (r *fakeSessionRepo) DeleteAllByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for h, s := range r.byHash {
		if s.UserID == userID {
			delete(r.byHash, h)
			n++
		}
	}
	return n, nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID string) ([]*sessiondomain.Session, error) {
	var out []*sessiondomain.Session
	for _, s := range r.byHash {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("token provider: %v", err)
	}
	users := newFakeUserRepo()
	sessions := sessionservice.NewManager(newFakeSessionRepo(), tokens, 168*time.Hour)
	guard := lockout.NewGuard(5, 15*time.Minute, 0)
	t.Cleanup(guard.Stop)
	svc := NewAuthService(users, security.NewHasher(bcrypt.MinCost), guard, sessions, nil, nil)
	return svc, users
}

func seedUser(t *testing.T, users *fakeUserRepo, email, password, role string) *identitydomain.User {
	t.Helper()
	hash, err := security.NewHasher(bcrypt.MinCost).Hash([]byte(password))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &identitydomain.User{
		ID:           "user-" + email,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create: %v", err)
	}
	return u
}

func TestAuthService_LoginSuccess(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice@example.com", "Str0ng-Passw0rd!", "")

	pair, userID, err := svc.Login(context.Background(), "alice@example.com", "Str0ng-Passw0rd!", sessionservice.DeviceContext{IPAddress: "10.0.0.1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if userID != "user-alice@example.com" {
		t.Errorf("userID = %q", userID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("expected non-empty token pair")
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice@example.com", "Str0ng-Passw0rd!", "")

	_, _, err := svc.Login(context.Background(), "alice@example.com", "wrong-password", sessionservice.DeviceContext{})
	var ice *InvalidCredentialsError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InvalidCredentialsError, got %v", err)
	}
	if ice.RemainingAttempts != 4 {
		t.Errorf("RemainingAttempts = %d, want 4", ice.RemainingAttempts)
	}
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Error("expected errors.Is match on ErrInvalidCredentials")
	}
}

func TestAuthService_LockoutAfterFiveFailures(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice@example.com", "Str0ng-Passw0rd!", "")

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, _, err := svc.Login(ctx, "alice@example.com", "wrong", sessionservice.DeviceContext{})
		var ice *InvalidCredentialsError
		if !errors.As(err, &ice) {
			t.Fatalf("attempt %d: expected InvalidCredentialsError, got %v", i+1, err)
		}
	}

	_, _, err := svc.Login(ctx, "alice@example.com", "wrong", sessionservice.DeviceContext{})
	var locked *AccountLockedError
	if !errors.As(err, &locked) {
		t.Fatalf("fifth failure: expected AccountLockedError, got %v", err)
	}
	if locked.RetryAfter <= 0 || locked.RetryAfter > 15*time.Minute {
		t.Errorf("RetryAfter = %s", locked.RetryAfter)
	}

	// Correct credentials are rejected while the lock holds.
	_, _, err = svc.Login(ctx, "alice@example.com", "Str0ng-Passw0rd!", sessionservice.DeviceContext{})
	if !errors.As(err, &locked) {
		t.Fatalf("expected AccountLockedError with correct password, got %v", err)
	}
}

func TestAuthService_SuccessClearsFailureCount(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice@example.com", "Str0ng-Passw0rd!", "")

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		svc.Login(ctx, "alice@example.com", "wrong", sessionservice.DeviceContext{})
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "Str0ng-Passw0rd!", sessionservice.DeviceContext{}); err != nil {
		t.Fatalf("Login after failures: %v", err)
	}

	// The counter restarted; one more failure does not lock.
	_, _, err := svc.Login(ctx, "alice@example.com", "wrong", sessionservice.DeviceContext{})
	var ice *InvalidCredentialsError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InvalidCredentialsError, got %v", err)
	}
	if ice.RemainingAttempts != 4 {
		t.Errorf("RemainingAttempts = %d, want 4", ice.RemainingAttempts)
	}
}

func TestAuthService_UnknownAccountIndistinguishable(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice@example.com", "Str0ng-Passw0rd!", "")

	ctx := context.Background()
	_, _, errKnown := svc.Login(ctx, "alice@example.com", "wrong", sessionservice.DeviceContext{})
	_, _, errUnknown := svc.Login(ctx, "nobody@example.com", "wrong", sessionservice.DeviceContext{})

	if errKnown.Error() != errUnknown.Error() {
		t.Errorf("error messages differ: %q vs %q", errKnown, errUnknown)
	}

	// Unknown identifiers accumulate lockout state too.
	for i := 0; i < 4; i++ {
		svc.Login(ctx, "nobody@example.com", "wrong", sessionservice.DeviceContext{})
	}
	_, _, err := svc.Login(ctx, "nobody@example.com", "wrong", sessionservice.DeviceContext{})
	var locked *AccountLockedError
	if !errors.As(err, &locked) {
		t.Fatalf("expected AccountLockedError for unknown identifier, got %v", err)
	}
}

func TestAuthService_LoginNormalizesEmail(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice@example.com", "Str0ng-Passw0rd!", "")

	_, _, err := svc.Login(context.Background(), "  Alice@Example.COM ", "Str0ng-Passw0rd!", sessionservice.DeviceContext{})
	if err != nil {
		t.Fatalf("Login with unnormalized email: %v", err)
	}
}

func TestAuthService_Register(t *testing.T) {
	svc, users := newTestAuthService(t)

	pair, userID, err := svc.Register(context.Background(), "bob@example.com", "Str0ng-Passw0rd!", sessionservice.DeviceContext{})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if pair.RefreshToken == "" {
		t.Error("expected refresh token")
	}
	stored := users.byEmail["bob@example.com"]
	if stored == nil || stored.ID != userID {
		t.Fatalf("user not stored, got %+v", stored)
	}
	if stored.PasswordHash == "Str0ng-Passw0rd!" {
		t.Error("password stored in plaintext")
	}

	_, _, err = svc.Register(context.Background(), "bob@example.com", "Str0ng-Passw0rd!", sessionservice.DeviceContext{})
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Errorf("duplicate register: got %v", err)
	}
}

func TestAuthService_RegisterWeakPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "Ab1!short"},
		{"no upper", "str0ng-passw0rd!"},
		{"no lower", "STR0NG-PASSW0RD!"},
		{"no number", "Strong-Password!"},
		{"no symbol", "Str0ngPassw0rd1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Register(context.Background(), "new@example.com", tc.password, sessionservice.DeviceContext{}); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAuthService_LogoutIdempotent(t *testing.T) {
	svc, users := newTestAuthService(t)
	seedUser(t, users, "alice@example.com", "Str0ng-Passw0rd!", "")

	ctx := context.Background()
	pair, userID, err := svc.Login(ctx, "alice@example.com", "Str0ng-Passw0rd!", sessionservice.DeviceContext{})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	deleted, err := svc.Logout(ctx, pair.RefreshToken, userID, "")
	if err != nil || !deleted {
		t.Fatalf("Logout: deleted=%v err=%v", deleted, err)
	}
	deleted, err = svc.Logout(ctx, pair.RefreshToken, userID, "")
	if err != nil || deleted {
		t.Fatalf("second Logout: deleted=%v err=%v", deleted, err)
	}
}

func TestRoleResolver(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "admin@example.com", "Str0ng-Passw0rd!", "admin")
	seedUser(t, users, "plain@example.com", "Str0ng-Passw0rd!", "")
	seedUser(t, users, "odd@example.com", "Str0ng-Passw0rd!", "superuser")

	r := NewRoleResolver(users)
	ctx := context.Background()

	cases := []struct {
		userID string
		want   string
	}{
		{"user-admin@example.com", "admin"},
		{"user-plain@example.com", "member"},
		{"user-odd@example.com", "member"},
		{"no-such-user", "member"},
	}
	for _, tc := range cases {
		role, err := r.RoleOf(ctx, tc.userID)
		if err != nil {
			t.Fatalf("RoleOf(%q): %v", tc.userID, err)
		}
		if string(role) != tc.want {
			t.Errorf("RoleOf(%q) = %q, want %q", tc.userID, role, tc.want)
		}
	}
}
