package service

import (
	"testing"
	"time"

	"velora/config"
	"velora/internal/auth"
	"velora/internal/domain"
	"velora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) (*AuthService, *repository.LedgerRepository) {
	t.Helper()
	db := newServiceTestDB(t)
	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "velora-test",
	}
	cfg.Tokens.WelcomeBonusTokens = 10
	ledger := repository.NewLedgerRepository(db)
	return NewAuthService(cfg, repository.NewUserRepository(db), ledger), ledger
}

func TestRegisterGrantsWelcomeBonus(t *testing.T) {
	svc, ledger := newAuthService(t)

	u, access, refresh, err := svc.Register("amy@example.com", "amy", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.Equal(t, domain.RoleUser, u.Role)

	balance, err := ledger.GetBalance(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)

	txs, _, err := ledger.ListTransactions(u.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TxTypeBonus, txs[0].Type)
}

func TestRegisterDuplicates(t *testing.T) {
	svc, _ := newAuthService(t)

	_, _, _, err := svc.Register("amy@example.com", "amy", "s3cret-pass")
	require.NoError(t, err)

	_, _, _, err = svc.Register("amy@example.com", "amy2", "s3cret-pass")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, _, _, err = svc.Register("amy2@example.com", "amy", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthService(t)
	_, _, _, err := svc.Register("amy@example.com", "amy", "s3cret-pass")
	require.NoError(t, err)

	u, access, _, err := svc.Login("amy@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "amy", u.Username)
	assert.NotEmpty(t, access)

	_, _, _, err = svc.Login("amy@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCreds)
	_, _, _, err = svc.Login("nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}

func TestRefresh(t *testing.T) {
	svc, _ := newAuthService(t)
	u, _, refresh, err := svc.Register("amy@example.com", "amy", "s3cret-pass")
	require.NoError(t, err)

	access2, refresh2, err := svc.Refresh(refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, access2)
	assert.NotEmpty(t, refresh2)

	claims, err := auth.ParseAccessToken(&svc.cfg.JWT, access2)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, _, err = svc.Refresh("not-a-token")
	assert.Error(t, err)
	// an access token is not accepted as a refresh token
	_, _, err = svc.Refresh(access2)
	assert.Error(t, err)
}

func TestLoginWithGoogle(t *testing.T) {
	svc, ledger := newAuthService(t)

	u, _, _, isNew, err := svc.LoginWithGoogle("google-123", "bob@example.com", "Bob", "https://img/avatar.png")
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, "bob", u.Username)

	balance, err := ledger.GetBalance(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance, "Google signups get the welcome bonus too")

	// second login finds the same account, no second bonus
	u2, _, _, isNew, err := svc.LoginWithGoogle("google-123", "bob@example.com", "Bob", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, u2.ID)
	balance, err = ledger.GetBalance(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), balance)
}

func TestLoginWithGoogleLinksExistingEmail(t *testing.T) {
	svc, _ := newAuthService(t)
	u, _, _, err := svc.Register("amy@example.com", "amy", "s3cret-pass")
	require.NoError(t, err)

	linked, _, _, isNew, err := svc.LoginWithGoogle("google-456", "amy@example.com", "Amy", "")
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, u.ID, linked.ID)
	require.NotNil(t, linked.GoogleID)
	assert.Equal(t, "google-456", *linked.GoogleID)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthService(t)
	u, _, _, err := svc.Register("amy@example.com", "amy", "old-pass-123")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(u.ID, "wrong", "new-pass-123"), ErrInvalidCreds)
	require.NoError(t, svc.ChangePassword(u.ID, "old-pass-123", "new-pass-123"))

	_, _, _, err = svc.Login("amy@example.com", "new-pass-123")
	require.NoError(t, err)
	_, _, _, err = svc.Login("amy@example.com", "old-pass-123")
	assert.ErrorIs(t, err, ErrInvalidCreds)
}
