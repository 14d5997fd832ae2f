package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/juanCamilo2002/gamer-buy-api/internal/events"
	"github.com/juanCamilo2002/gamer-buy-api/internal/hash"
	"github.com/juanCamilo2002/gamer-buy-api/internal/logging"
	"github.com/juanCamilo2002/gamer-buy-api/internal/metrics"
	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
	"github.com/juanCamilo2002/gamer-buy-api/internal/repo"
	"github.com/juanCamilo2002/gamer-buy-api/internal/tokens"
)

const (
	DefaultSessionTTL = 7 * 24 * time.Hour

	msgInvalidCredentials  = "invalid credentials"
	msgInvalidRefreshToken = "invalid refresh token"
)

type DeviceMeta struct {
	UserAgent string
	IP        string
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	SessionExpiresAt time.Time
}

type AuthService struct {
	Repo       *repo.GormRepo
	Signer     *tokens.Signer
	Hasher     *hash.Hasher
	SessionTTL time.Duration
	Events     events.Publisher
	Metrics    *metrics.Metrics

	now func() time.Time
}

func (s *AuthService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, validationError("email must be a valid address")
	}
	if password == "" {
		return nil, validationError("password is required")
	}

	pwHash, err := s.Hasher.HashPassword(password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooLong) {
			return nil, validationError("password must be at most 72 bytes")
		}
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleCustomer,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			l.Warn("register_error", "status", 409, "reason", "email already registered")
			s.Metrics.AuthEvent("register", "failure", "conflict")
			return nil, conflictError("email already registered")
		}
		l.Error("register_error", "status", 500, "reason", "store error", "error", err)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.Metrics.AuthEvent("register", "success", "")
	publish(ctx, s.Events, events.TopicUserEvents, user.ID.String(), "user_registered", map[string]any{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

// Login answers unknown emails and wrong passwords with the same error and
// comparable bcrypt work.
func (s *AuthService) Login(ctx context.Context, email, password string, meta DeviceMeta) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			l.Error("login_error", "status", 500, "reason", "store error", "error", err)
			return nil, fmt.Errorf("find user: %w", err)
		}
		s.Hasher.CheckAgainstDummy(password)
		return nil, s.loginFailed(l, "unknown_email")
	}
	if !s.Hasher.CheckPassword(user.PasswordHash, password) {
		return nil, s.loginFailed(l, "bad_password")
	}

	pair, err := s.issue(ctx, s.Repo, user, meta)
	if err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot issue session", "error", err)
		return nil, err
	}

	s.Metrics.AuthEvent("login", "success", "")
	l.Info("login_successful", "user_id", user.ID)
	return pair, nil
}

func (s *AuthService) loginFailed(l *slog.Logger, reason string) error {
	l.Warn("login_failed", "status", 401, "reason", reason)
	s.Metrics.AuthEvent("login", "failure", reason)
	return authError(msgInvalidCredentials, reason, nil)
}

// issue signs a new token pair and stores the session for it through r,
// which may be bound to a transaction.
func (s *AuthService) issue(ctx context.Context, r *repo.GormRepo, user *models.User, meta DeviceMeta) (*TokenPair, error) {
	sub, role := user.ID.String(), string(user.Role)

	access, accessExp, err := s.Signer.SignAccess(sub, role, user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, _, err := s.Signer.SignRefresh(sub, role, user.Email)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}
	tokenHash, err := s.Hasher.HashToken(refresh)
	if err != nil {
		return nil, fmt.Errorf("hash refresh token: %w", err)
	}

	session := models.Session{
		UserID:    user.ID,
		TokenHash: tokenHash,
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		ExpiresAt: s.clock().Add(s.sessionTTL()).UTC(),
	}
	if err := r.CreateSession(ctx, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		SessionExpiresAt: session.ExpiresAt,
	}, nil
}

// matchSession compares the presented token against each stored digest.
func (s *AuthService) matchSession(sessions []models.Session, presented string) *models.Session {
	for i := range sessions {
		if s.Hasher.CheckToken(sessions[i].TokenHash, presented) {
			return &sessions[i]
		}
	}
	return nil
}

// Refresh rotates a session: the matched session is revoked and a new one is
// created in the same transaction. Every failure reaches the caller as the
// same AuthError; the reason code only goes to logs and metrics.
func (s *AuthService) Refresh(ctx context.Context, presented string, meta DeviceMeta) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	fail := func(reason string, cause error) *Error {
		return authError(msgInvalidRefreshToken, reason, cause)
	}

	claims, err := s.Signer.ParseRefresh(presented)
	if err != nil {
		return nil, s.refreshFailed(l, fail("bad_token", err))
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, s.refreshFailed(l, fail("bad_token", err))
	}

	var pair *TokenPair
	err = s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		sessions, err := tx.ListActiveSessions(ctx, userID)
		if err != nil {
			return fail("store_error", err)
		}

		match := s.matchSession(sessions, presented)
		if match == nil {
			return fail("no_match", nil)
		}
		if !s.clock().Before(match.ExpiresAt) {
			return fail("expired", nil)
		}

		revoked, err := tx.RevokeSession(ctx, match.ID)
		if err != nil {
			return fail("store_error", err)
		}
		if !revoked {
			return fail("race_lost", nil)
		}

		user, err := tx.FindUserByID(ctx, userID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return fail("user_missing", nil)
			}
			return fail("store_error", err)
		}

		pair, err = s.issue(ctx, tx, user, meta)
		if err != nil {
			return fail("store_error", err)
		}
		return nil
	})
	if err != nil {
		var e *Error
		if !errors.As(err, &e) || !errors.Is(err, ErrAuth) {
			e = fail("store_error", err)
		}
		return nil, s.refreshFailed(l, e)
	}

	s.Metrics.AuthEvent("refresh", "success", "")
	l.Info("refresh_successful", "user_id", userID)
	return pair, nil
}

func (s *AuthService) refreshFailed(l *slog.Logger, e *Error) error {
	if e.Reason == "store_error" {
		l.Error("refresh_failed", "status", 401, "reason", e.Reason, "error", e.Err)
	} else {
		l.Warn("refresh_failed", "status", 401, "reason", e.Reason, "error", e.Err)
	}
	s.Metrics.AuthEvent("refresh", "failure", e.Reason)
	return e
}

// Logout revokes the session the presented token belongs to. An empty,
// unknown or already revoked token is not an error. A returned error means
// the store failed and is only meant for logging.
func (s *AuthService) Logout(ctx context.Context, presented string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")
	if presented == "" {
		return nil
	}

	sessions, err := s.logoutCandidates(ctx, presented)
	if err != nil {
		s.Metrics.AuthEvent("logout", "failure", "store_error")
		return fmt.Errorf("list sessions: %w", err)
	}

	match := s.matchSession(sessions, presented)
	if match == nil {
		l.Info("logout_noop", "reason", "no_match")
		s.Metrics.AuthEvent("logout", "noop", "no_match")
		return nil
	}
	if _, err := s.Repo.RevokeSession(ctx, match.ID); err != nil {
		s.Metrics.AuthEvent("logout", "failure", "store_error")
		return fmt.Errorf("revoke session: %w", err)
	}

	s.Metrics.AuthEvent("logout", "success", "")
	l.Info("logout_successful", "user_id", match.UserID)
	return nil
}

// logoutCandidates narrows the scan to the token's subject when the signature
// checks out and falls back to every active session otherwise.
func (s *AuthService) logoutCandidates(ctx context.Context, presented string) ([]models.Session, error) {
	if claims, err := s.Signer.ParseRefreshSignature(presented); err == nil {
		if userID, err := uuid.Parse(claims.Subject); err == nil {
			return s.Repo.ListActiveSessions(ctx, userID)
		}
	}
	return s.Repo.ListAllActiveSessions(ctx)
}

// LogoutAll revokes every session the user holds right now. Sessions created
// afterwards are unaffected.
func (s *AuthService) LogoutAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "auth.logout_all")

	n, err := s.Repo.RevokeAllSessions(ctx, userID)
	if err != nil {
		l.Error("logout_all_error", "status", 500, "error", err)
		s.Metrics.AuthEvent("logout_all", "failure", "store_error")
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}

	s.Metrics.AuthEvent("logout_all", "success", "")
	l.Info("logout_all_successful", "user_id", userID, "revoked", n)
	return n, nil
}
