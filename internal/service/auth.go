// Package service orchestrates account registration, sessions and the cached
// directory listing over injected collaborators: an AccountStore for
// persistence, the token manager for both token classes, a cache gateway for
// the read path and an optional event publisher.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/user-directory/internal/model"
	"github.com/iliyamo/user-directory/internal/query"
	"github.com/iliyamo/user-directory/internal/queue"
	"github.com/iliyamo/user-directory/internal/repository"
	"github.com/iliyamo/user-directory/internal/token"
	"github.com/iliyamo/user-directory/internal/utils"
)

// AccountStore is the persistence surface the services depend on.  The MySQL
// repository satisfies it in production; tests plug in an in-memory fake.
type AccountStore interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
	GetByID(ctx context.Context, id uint64) (model.Account, error)
	UpdateRefreshHash(ctx context.Context, id uint64, hash *string) error
	SoftDelete(ctx context.Context, id uint64) error
	List(ctx context.Context, p query.Params) ([]model.Account, int64, error)
}

// EventPublisher emits account lifecycle events.  Publishing is best effort;
// the auth flows ignore its errors.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AccountEvent) error
}

// AccountView is the safe projection of an account.  It never carries the
// password hash or the refresh token hash.
type AccountView struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func viewOf(a model.Account) AccountView {
	return AccountView{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Role:      a.Role,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// IssuedToken is one signed token plus its absolute expiry.
type IssuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenPair is what login and refresh hand back to the client.
type TokenPair struct {
	Access  IssuedToken `json:"access"`
	Refresh IssuedToken `json:"refresh"`
}

// AuthService implements registration, login, refresh rotation, logout and
// profile retrieval.  It holds no mutable state of its own; the store is the
// single source of truth and concurrent calls are not ordered.
type AuthService struct {
	store      AccountStore
	tokens     *token.Manager
	bcryptCost int
	events     EventPublisher // may be nil
}

func NewAuthService(store AccountStore, tokens *token.Manager, bcryptCost int, events EventPublisher) *AuthService {
	return &AuthService{store: store, tokens: tokens, bcryptCost: bcryptCost, events: events}
}

// Register creates an account with the default user role.  The email must be
// unused among non-deleted accounts, otherwise ErrEmailExists.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (AccountView, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return AccountView{}, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.store.Create(ctx, name, email, hash, model.RoleUser)
	if err != nil {
		if isConflict(err) {
			return AccountView{}, ErrEmailExists
		}
		return AccountView{}, fmt.Errorf("create account: %w", err)
	}

	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		return AccountView{}, fmt.Errorf("load account: %w", err)
	}

	s.publish(ctx, queue.EventRegistered, a)
	return viewOf(a), nil
}

// Login verifies credentials and opens a session.  An unknown email and a
// wrong password both return ErrInvalidCredentials: the two paths must stay
// externally indistinguishable.  On success the previous session, if any, is
// invalidated by overwriting the stored refresh hash.
func (s *AuthService) Login(ctx context.Context, email, password string) (TokenPair, AccountView, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	a, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return TokenPair{}, AccountView{}, ErrInvalidCredentials
		}
		return TokenPair{}, AccountView{}, fmt.Errorf("load account: %w", err)
	}
	if !utils.VerifyPassword(a.PasswordHash, password) {
		return TokenPair{}, AccountView{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, a)
	if err != nil {
		return TokenPair{}, AccountView{}, err
	}

	s.publish(ctx, queue.EventLoggedIn, a)
	return pair, viewOf(a), nil
}

// Refresh exchanges a still-valid refresh token for a brand-new pair.  The
// presented token must verify under the refresh secret and must match the
// account's stored hash; the hash check is what makes a rotated-away token
// unusable even before it expires.  Each refresh token is usable exactly once.
func (s *AuthService) Refresh(ctx context.Context, presented string) (TokenPair, error) {
	claims, err := s.tokens.Verify(presented, s.tokens.Refresh)
	if err != nil {
		log.Printf("auth: refresh rejected: %v", err)
		return TokenPair{}, ErrInvalidRefresh
	}
	id, err := claims.AccountID()
	if err != nil {
		log.Printf("auth: refresh rejected: bad subject %q", claims.Subject)
		return TokenPair{}, ErrInvalidRefresh
	}

	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return TokenPair{}, ErrInvalidRefresh
		}
		return TokenPair{}, fmt.Errorf("load account: %w", err)
	}
	if a.RefreshTokenHash == nil || token.Hash(presented) != *a.RefreshTokenHash {
		// No active session, or the token was superseded by a newer login or
		// refresh.
		return TokenPair{}, ErrInvalidRefresh
	}

	return s.issuePair(ctx, a)
}

// Logout revokes the account's active session by clearing the stored refresh
// hash.  Access tokens already in the wild stay valid until natural expiry;
// that is the stateless-token tradeoff, not an oversight.
func (s *AuthService) Logout(ctx context.Context, accountID uint64) error {
	if _, err := s.store.GetByID(ctx, accountID); err != nil {
		if isNotFound(err) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("load account: %w", err)
	}
	if err := s.store.UpdateRefreshHash(ctx, accountID, nil); err != nil {
		return fmt.Errorf("clear refresh hash: %w", err)
	}
	return nil
}

// Profile returns the safe projection for the authenticated principal.
func (s *AuthService) Profile(ctx context.Context, accountID uint64) (AccountView, error) {
	a, err := s.store.GetByID(ctx, accountID)
	if err != nil {
		if isNotFound(err) {
			return AccountView{}, ErrAccountNotFound
		}
		return AccountView{}, fmt.Errorf("load account: %w", err)
	}
	return viewOf(a), nil
}

// issuePair signs a fresh access+refresh pair and persists the new refresh
// hash, overwriting whatever was stored before.
func (s *AuthService) issuePair(ctx context.Context, a model.Account) (TokenPair, error) {
	access, accessExp, err := s.tokens.Sign(a.ID, a.Email, a.Role, s.tokens.Access)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, refreshExp, err := s.tokens.Sign(a.ID, a.Email, a.Role, s.tokens.Refresh)
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	hash := token.Hash(refresh)
	if err := s.store.UpdateRefreshHash(ctx, a.ID, &hash); err != nil {
		return TokenPair{}, fmt.Errorf("store refresh hash: %w", err)
	}

	return TokenPair{
		Access:  IssuedToken{Token: access, ExpiresAt: accessExp},
		Refresh: IssuedToken{Token: refresh, ExpiresAt: refreshExp},
	}, nil
}

func (s *AuthService) publish(ctx context.Context, kind string, a model.Account) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, queue.AccountEvent{
		Event:      kind,
		AccountID:  a.ID,
		Email:      a.Email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func isConflict(err error) bool { return errors.Is(err, repository.ErrEmailExists) }

func isNotFound(err error) bool { return errors.Is(err, repository.ErrNotFound) }
