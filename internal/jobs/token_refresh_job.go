package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	config "github.com/w3art/marko/configs"
	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/repository"
	"github.com/w3art/marko/internal/service"
	"github.com/w3art/marko/pkg/utils"
)

type TokenRefreshJob struct {
	cfg    config.Config
	ma     repository.MetaAccountRepository
	client service.MetaClient
}

func NewTokenRefreshJob(
	cfg config.Config,
	ma repository.MetaAccountRepository,
	client service.MetaClient) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg:    cfg,
		ma:     ma,
		client: client,
	}
}

// RefreshTokens re-exchanges long-lived Meta tokens that expire within the
// next week. The fb_exchange_token grant accepts a still-valid long-lived
// token and returns a fresh one.
func (c *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	accounts, err := c.ma.ListExpiring(ctx, time.Now().Add(7*24*time.Hour))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.MetaAccount) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.refreshAccount(ctx, acc); err != nil {
				slog.Info("Unable to refresh Meta token", "user_id", acc.UserID, "error", err.Error())
			}
		}(acc)
	}

	wg.Wait()
}

func (c *TokenRefreshJob) refreshAccount(ctx context.Context, acc *models.MetaAccount) error {
	decryptedToken, err := utils.Decrypt(acc.AccessToken, []byte(c.cfg.SecretKey))
	if err != nil {
		return err
	}

	token, err := c.client.LongLivedToken(ctx, decryptedToken)
	if err != nil {
		return err
	}

	encryptedToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(c.cfg.SecretKey))
	if err != nil {
		return err
	}

	return c.ma.SetToken(ctx, acc.UserID, encryptedToken, token.ExpiresAt)
}
