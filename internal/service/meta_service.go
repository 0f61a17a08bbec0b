package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	config "github.com/w3art/marko/configs"
	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/repository"
	"github.com/w3art/marko/internal/transfer"
	"github.com/w3art/marko/pkg/utils"
)

// stateWindow is how long an issued OAuth state stays valid for the callback.
const stateWindow = 10 * time.Minute

var (
	ErrInvalidState       = errors.New("invalid state")
	ErrExpiredState       = errors.New("state expired")
	ErrNoActiveAccount    = errors.New("no active Meta account")
	ErrNoAccount          = errors.New("no Meta account connected")
	ErrNoInstagramAccount = errors.New("no Instagram account linked")
	ErrNoFacebookPage     = errors.New("no Facebook page selected")
)

type MetaService interface {
	Status(ctx context.Context, userID int64) (*transfer.MetaStatus, error)
	ConnectURL(ctx context.Context, userID int64) (string, error)
	Callback(ctx context.Context, req *transfer.OAuthCallbackRequest) (*transfer.ConnectResult, error)
	SelectPage(ctx context.Context, userID int64, req *transfer.PageSelection) error
	Publish(ctx context.Context, userID int64, req *transfer.PublishRequest) (*transfer.PublishResult, error)
	PublishTo(ctx context.Context, account *models.MetaAccount, req *transfer.PublishRequest) (string, error)
	Accounts(ctx context.Context, userID int64) ([]*models.MetaAccount, error)
	Disconnect(ctx context.Context, userID int64) error
	PageToken(ctx context.Context, account *models.MetaAccount) (string, error)
	UserToken(ctx context.Context, account *models.MetaAccount) (string, error)
}

type metaService struct {
	cfg    config.Config
	client MetaClient
	ma     repository.MetaAccountRepository
	os     repository.OAuthStateRepository
}

func NewMetaService(
	cfg config.Config,
	client MetaClient,
	ma repository.MetaAccountRepository,
	os repository.OAuthStateRepository) MetaService {
	return &metaService{
		cfg:    cfg,
		client: client,
		ma:     ma,
		os:     os,
	}
}

func (s *metaService) Status(ctx context.Context, userID int64) (*transfer.MetaStatus, error) {
	account, isExist, err := s.ma.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return &transfer.MetaStatus{Connected: false}, nil
	}

	return &transfer.MetaStatus{
		Connected:         true,
		FacebookPage:      account.FacebookPageName,
		InstagramUsername: account.InstagramUsername,
		AdAccount:         account.AdAccountID,
	}, nil
}

// ConnectURL issues a fresh single-use state token and returns the Meta OAuth
// dialog URL. Older unused states for the same user are discarded first.
func (s *metaService) ConnectURL(ctx context.Context, userID int64) (string, error) {
	if err := s.os.DeleteOldByUserID(ctx, userID, time.Now().Add(-stateWindow)); err != nil {
		return "", err
	}

	// 43 chars of the nanoid alphabet carry over 256 bits of randomness.
	state, err := gonanoid.New(43)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	if err := s.os.Create(ctx, state, userID); err != nil {
		return "", err
	}

	return s.client.OAuthURL(state), nil
}

func (s *metaService) Callback(ctx context.Context, req *transfer.OAuthCallbackRequest) (*transfer.ConnectResult, error) {
	cutoff := time.Now().Add(-stateWindow)

	userID, ok, err := s.os.Consume(ctx, req.State, cutoff)
	if err != nil {
		return nil, err
	}
	if !ok {
		expired, err := s.os.DeleteExpired(ctx, req.State, cutoff)
		if err != nil {
			return nil, err
		}
		if expired {
			return nil, ErrExpiredState
		}
		return nil, ErrInvalidState
	}

	token, err := s.client.ExchangeCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	longLived, err := s.client.LongLivedToken(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	userInfo, err := s.client.UserInfo(ctx, longLived.AccessToken)
	if err != nil {
		return nil, err
	}

	encryptedToken, err := utils.Encrypt([]byte(longLived.AccessToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return nil, err
	}

	accountID, err := s.ma.Upsert(ctx, &models.MetaAccount{
		UserID:         userID,
		MetaUserID:     userInfo.ID,
		AccessToken:    encryptedToken,
		TokenExpiresAt: longLived.ExpiresAt,
		IsActive:       false,
	})
	if err != nil {
		return nil, err
	}

	pages, err := s.client.Pages(ctx, longLived.AccessToken)
	if err != nil {
		return nil, err
	}

	pageOptions := make([]*transfer.PageOption, 0, len(pages))
	for _, page := range pages {
		igAccount := page.InstagramBusinessAccount

		// The page listing can return the Instagram link without its
		// username; resolve it from the page in that case.
		if igAccount != nil && igAccount.Username == "" && page.AccessToken != "" {
			resolved, err := s.client.InstagramAccount(ctx, page.ID, page.AccessToken)
			if err != nil {
				slog.Info(err.Error())
			} else if resolved != nil {
				igAccount = resolved
			}
		}

		pageOptions = append(pageOptions, &transfer.PageOption{
			ID:               page.ID,
			Name:             page.Name,
			HasInstagram:     igAccount != nil,
			AccessToken:      page.AccessToken,
			InstagramAccount: igAccount,
		})
	}

	adAccounts, err := s.client.AdAccounts(ctx, longLived.AccessToken)
	if err != nil {
		slog.Info(err.Error())
		adAccounts = nil
	}

	return &transfer.ConnectResult{
		Status:     "connected",
		AccountID:  accountID,
		Pages:      pageOptions,
		AdAccounts: adAccounts,
	}, nil
}

func (s *metaService) SelectPage(ctx context.Context, userID int64, req *transfer.PageSelection) error {
	_, isExist, err := s.ma.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if !isExist {
		return ErrNoAccount
	}

	igAccountID := req.InstagramAccountID
	igUsername := req.InstagramUsername

	// The page selection payload may omit the Instagram link; resolve it from
	// the page itself in that case.
	if igAccountID == "" {
		igAccount, err := s.client.InstagramAccount(ctx, req.PageID, req.PageToken)
		if err != nil {
			slog.Info(err.Error())
		} else if igAccount != nil {
			igAccountID = igAccount.ID
			igUsername = igAccount.Username
		}
	}

	encryptedPageToken, err := utils.Encrypt([]byte(req.PageToken), []byte(s.cfg.SecretKey))
	if err != nil {
		return err
	}

	return s.ma.SelectPage(ctx, &models.MetaAccount{
		UserID:             userID,
		FacebookPageID:     req.PageID,
		FacebookPageName:   req.PageName,
		PageAccessToken:    encryptedPageToken,
		InstagramAccountID: igAccountID,
		InstagramUsername:  igUsername,
	})
}

func (s *metaService) Publish(ctx context.Context, userID int64, req *transfer.PublishRequest) (*transfer.PublishResult, error) {
	account, isExist, err := s.ma.GetActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrNoActiveAccount
	}

	postID, err := s.PublishTo(ctx, account, req)
	if err != nil {
		return nil, err
	}

	return &transfer.PublishResult{
		Status:   "published",
		PostID:   postID,
		Platform: req.Platform,
	}, nil
}

// PublishTo routes a publish request to the right platform for an account
// already resolved by the caller.
func (s *metaService) PublishTo(ctx context.Context, account *models.MetaAccount, req *transfer.PublishRequest) (string, error) {
	switch req.Platform {
	case models.PlatformInstagram:
		if account.InstagramAccountID == "" {
			return "", ErrNoInstagramAccount
		}
		token, err := s.PageToken(ctx, account)
		if err != nil {
			return "", err
		}
		return s.client.PublishInstagram(ctx, account.InstagramAccountID, token, req.Caption, req.MediaURL, instagramMediaType(req.ContentType))
	case models.PlatformFacebook:
		if account.FacebookPageID == "" {
			return "", ErrNoFacebookPage
		}
		token, err := s.PageToken(ctx, account)
		if err != nil {
			return "", err
		}
		return s.client.PublishFacebook(ctx, account.FacebookPageID, token, req.Caption, req.Link, req.MediaURL)
	default:
		return "", fmt.Errorf("unsupported platform: %s", req.Platform)
	}
}

// instagramMediaType maps a content type onto the Graph container media_type.
func instagramMediaType(contentType string) string {
	switch contentType {
	case models.ContentTypeReel:
		return IGMediaTypeReels
	case models.ContentTypeVideo:
		return IGMediaTypeVideo
	default:
		return IGMediaTypeImage
	}
}

func (s *metaService) Accounts(ctx context.Context, userID int64) ([]*models.MetaAccount, error) {
	return s.ma.ListByUserID(ctx, userID)
}

func (s *metaService) Disconnect(ctx context.Context, userID int64) error {
	return s.ma.RemoveByUserID(ctx, userID)
}

// PageToken decrypts the page access token, falling back to the user token
// when no page has been selected yet.
func (s *metaService) PageToken(ctx context.Context, account *models.MetaAccount) (string, error) {
	if strings.TrimSpace(account.PageAccessToken) != "" {
		return utils.Decrypt(account.PageAccessToken, []byte(s.cfg.SecretKey))
	}
	return s.UserToken(ctx, account)
}

func (s *metaService) UserToken(ctx context.Context, account *models.MetaAccount) (string, error) {
	return utils.Decrypt(account.AccessToken, []byte(s.cfg.SecretKey))
}
