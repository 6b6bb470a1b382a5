package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ports"

	"github.com/shopspring/decimal"
)

func newUserService(repo *fakeRepo) *UserService {
	return NewUserService(repo, auth.NewSessions(cache.NewLRUCache[auth.Session](10, time.Hour)))
}

func TestUserService_RegisterLoginLogout(t *testing.T) {
	repo := newFakeRepo()
	svc := newUserService(repo)
	ctx := context.Background()

	u, err := svc.Register(ctx, " ana ", "Ana@Example.com", "secret1")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "ana@example.com" || u.Username != "ana" || u.PasswordHash == "secret1" {
		t.Errorf("Register() = %+v", u)
	}
	cats, _ := repo.ListCategories(ctx, u.ID)
	if len(cats) != len(core.DefaultCategories) {
		t.Errorf("default categories = %d, want %d", len(cats), len(core.DefaultCategories))
	}

	if _, err := svc.Register(ctx, "ana2", "ana@example.com", "secret1"); !errors.Is(err, core.ErrEmailTaken) {
		t.Errorf("duplicate Register() = %v, want ErrEmailTaken", err)
	}
	if _, err := svc.Register(ctx, "bob", "bob@example.com", "123"); !errors.Is(err, auth.ErrPasswordTooShort) {
		t.Errorf("short password Register() = %v", err)
	}
	if _, err := svc.Register(ctx, "", "c@example.com", "secret1"); !errors.Is(err, ErrMissingIdentity) {
		t.Errorf("empty username Register() = %v", err)
	}

	if _, _, err := svc.Login(ctx, "ana@example.com", "wrong!!"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) = %v", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "secret1"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Login(unknown) = %v", err)
	}
	_, token, err := svc.Login(ctx, "ANA@example.com", "secret1")
	if err != nil || token == "" {
		t.Fatalf("Login() = %q, %v", token, err)
	}

	got, err := svc.Authenticate(ctx, token)
	if err != nil || got.ID != u.ID {
		t.Errorf("Authenticate() = %+v, %v", got, err)
	}
	svc.Logout(token)
	if _, err := svc.Authenticate(ctx, token); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Authenticate after logout = %v", err)
	}
}

func TestUserService_RegisterRollsBackOnCategoryFailure(t *testing.T) {
	repo := newFakeRepo()
	svc := newUserService(repo)
	failing := &failingCategories{fakeRepo: repo}
	svc.repo = failing

	if _, err := svc.Register(context.Background(), "ana", "ana@example.com", "secret1"); !errors.Is(err, errInjected) {
		t.Fatalf("Register() = %v, want injected failure", err)
	}
	if len(repo.users) != 0 || len(repo.categories) != 0 {
		t.Errorf("partial registration: %d users, %d categories", len(repo.users), len(repo.categories))
	}
}

type failingCategories struct {
	*fakeRepo
	n int
}

func (f *failingCategories) WithTx(ctx context.Context, fn func(st ports.Store) error) error {
	return f.fakeRepo.WithTx(ctx, func(ports.Store) error { return fn(f) })
}

func (f *failingCategories) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	f.n++
	if f.n == 3 {
		return core.Category{}, errInjected
	}
	return f.fakeRepo.CreateCategory(ctx, c)
}

func TestUserService_UpdateSettings(t *testing.T) {
	repo := newFakeRepo()
	svc := newUserService(repo)
	u, _ := repo.seed()
	ctx := context.Background()

	initial := decimal.RequireFromString("150.456")
	limit := decimal.RequireFromString("500")
	off := false
	got, err := svc.UpdateSettings(ctx, u.ID, SettingsPatch{InitialBalance: &initial, OverdraftLimit: &limit, NotificationsEnabled: &off})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if got.InitialBalance.String() != "150.46" || got.OverdraftLimit.String() != "500" || got.NotificationsEnabled {
		t.Errorf("UpdateSettings() = %+v", got)
	}

	neg := decimal.RequireFromString("-1")
	if _, err := svc.UpdateSettings(ctx, u.ID, SettingsPatch{OverdraftLimit: &neg}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative limit = %v", err)
	}
	if _, err := svc.UpdateSettings(ctx, 9999, SettingsPatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("unknown user = %v", err)
	}
}
