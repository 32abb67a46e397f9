package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"velora/config"
	"velora/internal/domain"
	"velora/internal/models"
	"velora/internal/repository"
	"velora/pkg/novita"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeImageProvider struct {
	taskErr   error
	resultErr error
	imageURL  string
}

func (f *fakeImageProvider) CreateTask(ctx context.Context, req novita.TaskRequest) (string, error) {
	if f.taskErr != nil {
		return "", f.taskErr
	}
	return "task_1", nil
}

func (f *fakeImageProvider) WaitForResult(ctx context.Context, taskID string) (string, error) {
	if f.resultErr != nil {
		return "", f.resultErr
	}
	return f.imageURL, nil
}

func (f *fakeImageProvider) FetchImage(ctx context.Context, url string) ([]byte, error) {
	return []byte("jpeg"), nil
}

type fakeCloud struct {
	err error
}

func (f *fakeCloud) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "https://cdn.example.com/" + publicID + ".jpg", "https://cdn.example.com/" + publicID + "_thumb.jpg", nil
}

func newServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.TokenBalance{},
		&models.TokenTransaction{},
		&models.GenerationRequest{},
		&models.Notification{},
	))
	return db
}

func newGenerationService(t *testing.T, db *gorm.DB, provider ImageProvider, cloud *fakeCloud) (*GenerationService, *repository.LedgerRepository) {
	t.Helper()
	cfg := &config.TokenConfig{TokensPerImage: 5, TokensPerChatMessage: 1, WelcomeBonusTokens: 10}
	ledger := repository.NewLedgerRepository(db)
	genRepo := repository.NewGenerationRepository(db)
	notifSvc := NewNotificationService(repository.NewNotificationRepository(db))
	return NewGenerationService(cfg, ledger, genRepo, provider, cloud, notifSvc), ledger
}

func TestGenerateHappyPath(t *testing.T) {
	db := newServiceTestDB(t)
	provider := &fakeImageProvider{imageURL: "https://img.novita.ai/raw.jpg"}
	svc, ledger := newGenerationService(t, db, provider, &fakeCloud{})
	require.NoError(t, ledger.Credit(1, 20, domain.TxTypePurchase, "pack", nil, ""))

	gen, err := svc.Generate(context.Background(), GenerateParams{UserID: 1, Prompt: "a red fox"})
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationStatusCompleted, gen.Status)
	assert.Contains(t, gen.ImageURL, "cdn.example.com")
	assert.Contains(t, gen.ThumbnailURL, "_thumb")
	assert.Equal(t, int64(5), gen.TokenCost)

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), balance)
}

func TestGenerateInsufficientBalance(t *testing.T) {
	db := newServiceTestDB(t)
	svc, ledger := newGenerationService(t, db, &fakeImageProvider{}, &fakeCloud{})
	require.NoError(t, ledger.Credit(1, 4, domain.TxTypePurchase, "pack", nil, ""))

	_, err := svc.Generate(context.Background(), GenerateParams{UserID: 1, Prompt: "p"})
	assert.ErrorIs(t, err, repository.ErrInsufficientBalance)

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), balance, "no provider work means no charge")

	var count int64
	require.NoError(t, db.Model(&models.GenerationRequest{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "no request row is created before payment clears")
}

func TestGenerateProviderFailureRefunds(t *testing.T) {
	db := newServiceTestDB(t)
	provider := &fakeImageProvider{resultErr: errors.New("task crashed")}
	svc, ledger := newGenerationService(t, db, provider, &fakeCloud{})
	require.NoError(t, ledger.Credit(1, 20, domain.TxTypePurchase, "pack", nil, ""))

	gen, err := svc.Generate(context.Background(), GenerateParams{UserID: 1, Prompt: "p"})
	require.Error(t, err)
	require.NotNil(t, gen)
	assert.Equal(t, domain.GenerationStatusRefunded, gen.Status)

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance, "failed generation refunds the debit")

	sum, err := ledger.SumTransactions(1)
	require.NoError(t, err)
	assert.Equal(t, balance, sum, "ledger stays consistent through debit and refund")

	// user gets told about the failure
	var notifications int64
	require.NoError(t, db.Model(&models.Notification{}).Where("user_id = ?", 1).Count(&notifications).Error)
	assert.Equal(t, int64(1), notifications)
}

func TestGenerateCreateTaskFailureRefunds(t *testing.T) {
	db := newServiceTestDB(t)
	provider := &fakeImageProvider{taskErr: errors.New("provider down")}
	svc, ledger := newGenerationService(t, db, provider, &fakeCloud{})
	require.NoError(t, ledger.Credit(1, 20, domain.TxTypePurchase, "pack", nil, ""))

	_, err := svc.Generate(context.Background(), GenerateParams{UserID: 1, Prompt: "p"})
	require.Error(t, err)

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance)
}

func TestGenerateKeepsProviderURLOnUploadFailure(t *testing.T) {
	db := newServiceTestDB(t)
	provider := &fakeImageProvider{imageURL: "https://img.novita.ai/raw.jpg"}
	svc, ledger := newGenerationService(t, db, provider, &fakeCloud{err: errors.New("cloudinary down")})
	require.NoError(t, ledger.Credit(1, 20, domain.TxTypePurchase, "pack", nil, ""))

	gen, err := svc.Generate(context.Background(), GenerateParams{UserID: 1, Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, domain.GenerationStatusCompleted, gen.Status)
	assert.Equal(t, "https://img.novita.ai/raw.jpg", gen.ImageURL, "paid image survives a CDN outage")

	balance, err := ledger.GetBalance(1)
	require.NoError(t, err)
	assert.Equal(t, int64(15), balance, "upload failure is not the user's problem, no refund")
}
