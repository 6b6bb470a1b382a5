package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/ports"

	"github.com/shopspring/decimal"
)

// UserService registers users and manages their sessions and settings.
type UserService struct {
	repo     ports.Repository
	sessions *auth.Sessions
}

func NewUserService(repo ports.Repository, sessions *auth.Sessions) *UserService {
	return &UserService{repo: repo, sessions: sessions}
}

// Register creates the user and its default categories in one transaction.
func (s *UserService) Register(ctx context.Context, username, email, password string) (core.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" {
		return core.User{}, ErrMissingIdentity
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.User{}, err
	}

	var user core.User
	err = s.repo.WithTx(ctx, func(st ports.Store) error {
		u, err := st.CreateUser(ctx, core.User{
			Username:             username,
			Email:                email,
			PasswordHash:         hash,
			InitialBalance:       decimal.Zero,
			OverdraftLimit:       decimal.Zero,
			NotificationsEnabled: true,
		})
		if err != nil {
			return err
		}
		for _, name := range core.DefaultCategories {
			if _, err := st.CreateCategory(ctx, core.Category{UserID: u.ID, Name: name}); err != nil {
				return fmt.Errorf("create default category %q: %w", name, err)
			}
		}
		user = u
		return nil
	})
	if err != nil {
		return core.User{}, err
	}

	applog.FromContext(ctx).WithComponent(applog.ComponentAuth).InfoContext(ctx, "User registered",
		applog.FieldUserID, user.ID)
	return user, nil
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords both report core.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, email, password string) (core.User, string, error) {
	u, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, "", core.ErrInvalidCredentials
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("get user: %w", err)
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return core.User{}, "", err
	}
	token, err := s.sessions.Create(u.ID)
	if err != nil {
		return core.User{}, "", err
	}
	return u, token, nil
}

func (s *UserService) Logout(token string) {
	s.sessions.Revoke(token)
}

// Authenticate resolves a session token to its user.
func (s *UserService) Authenticate(ctx context.Context, token string) (core.User, error) {
	sess, ok := s.sessions.Lookup(token)
	if !ok {
		return core.User{}, core.ErrInvalidCredentials
	}
	u, err := s.repo.GetUser(ctx, sess.UserID)
	if errors.Is(err, core.ErrNotFound) {
		s.sessions.Revoke(token)
		return core.User{}, core.ErrInvalidCredentials
	}
	return u, err
}

type SettingsPatch struct {
	InitialBalance       *decimal.Decimal
	OverdraftLimit       *decimal.Decimal
	NotificationsEnabled *bool
}

// UpdateSettings applies p. The overdraft limit cannot be negative.
func (s *UserService) UpdateSettings(ctx context.Context, userID int64, p SettingsPatch) (core.User, error) {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return core.User{}, err
	}
	if p.InitialBalance != nil {
		u.InitialBalance = p.InitialBalance.Round(core.AmountScale)
	}
	if p.OverdraftLimit != nil {
		if p.OverdraftLimit.IsNegative() {
			return core.User{}, fmt.Errorf("%w: overdraft limit must not be negative", core.ErrInvalidAmount)
		}
		u.OverdraftLimit = p.OverdraftLimit.Round(core.AmountScale)
	}
	if p.NotificationsEnabled != nil {
		u.NotificationsEnabled = *p.NotificationsEnabled
	}
	if err := s.repo.UpdateUserSettings(ctx, u); err != nil {
		return core.User{}, fmt.Errorf("update settings: %w", err)
	}
	return u, nil
}
