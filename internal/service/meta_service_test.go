package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	config "github.com/w3art/marko/configs"
	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/transfer"
	"github.com/w3art/marko/pkg/utils"
)

func testConfig() config.Config {
	return config.Config{
		SecretKey:       "0123456789abcdef0123456789abcdef",
		MetaAppID:       "app-id",
		MetaAppSecret:   "app-secret",
		MetaRedirectURI: "http://localhost:3000/callback/meta",
	}
}

func connectedClient() *fakeMetaClient {
	return &fakeMetaClient{
		oauthURL: "https://www.facebook.com/dialog/oauth",
		exchangeCode: func(code string) (*transfer.MetaToken, error) {
			return &transfer.MetaToken{AccessToken: "short-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
		longLivedToken: func(shortToken string) (*transfer.MetaToken, error) {
			return &transfer.MetaToken{AccessToken: "long-token", ExpiresAt: time.Now().Add(60 * 24 * time.Hour)}, nil
		},
		userInfo: func(accessToken string) (*transfer.MetaUserInfo, error) {
			return &transfer.MetaUserInfo{ID: "fb-user-1", Name: "Marie"}, nil
		},
		pages: func(accessToken string) ([]*transfer.MetaPage, error) {
			return []*transfer.MetaPage{
				{
					ID:          "page-1",
					Name:        "Boulangerie Marie",
					AccessToken: "page-token",
					InstagramBusinessAccount: &transfer.InstagramAccount{
						ID:       "ig-1",
						Username: "boulangerie.marie",
					},
				},
			}, nil
		},
		adAccounts: func(accessToken string) ([]*transfer.AdAccount, error) {
			return []*transfer.AdAccount{{ID: "act_1", Name: "Marie Ads"}}, nil
		},
	}
}

func TestConnectURLIssuesState(t *testing.T) {
	ctx := context.Background()
	states := newFakeOAuthStateRepo()
	s := NewMetaService(testConfig(), connectedClient(), newFakeMetaAccountRepo(), states)

	url, err := s.ConnectURL(ctx, 7)
	if err != nil {
		t.Fatalf("ConnectURL: %v", err)
	}
	if !strings.Contains(url, "state=") {
		t.Errorf("URL %q carries no state", url)
	}
	if len(states.states) != 1 {
		t.Fatalf("got %d stored states, want 1", len(states.states))
	}
	for state, row := range states.states {
		if row.userID != 7 {
			t.Errorf("state belongs to user %d, want 7", row.userID)
		}
		if len(state) < 43 {
			t.Errorf("state %q is %d chars, want at least 43", state, len(state))
		}
	}
}

func TestCallbackConnectsAccount(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	states := newFakeOAuthStateRepo()
	accounts := newFakeMetaAccountRepo()
	s := NewMetaService(cfg, connectedClient(), accounts, states)

	if err := states.Create(ctx, "state-1", 7); err != nil {
		t.Fatal(err)
	}

	result, err := s.Callback(ctx, &transfer.OAuthCallbackRequest{Code: "code-1", State: "state-1"})
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if result.Status != "connected" {
		t.Errorf("got status %q, want %q", result.Status, "connected")
	}
	if len(result.Pages) != 1 || !result.Pages[0].HasInstagram {
		t.Errorf("unexpected pages: %+v", result.Pages)
	}
	if len(result.AdAccounts) != 1 {
		t.Errorf("got %d ad accounts, want 1", len(result.AdAccounts))
	}

	account, ok, _ := accounts.GetByUserID(ctx, 7)
	if !ok {
		t.Fatal("no account stored")
	}
	if account.IsActive {
		t.Error("account should stay inactive until a page is selected")
	}
	if account.AccessToken == "long-token" {
		t.Error("token stored unencrypted")
	}
	decrypted, err := utils.Decrypt(account.AccessToken, []byte(cfg.SecretKey))
	if err != nil || decrypted != "long-token" {
		t.Errorf("stored token does not decrypt to the Graph token: %q, %v", decrypted, err)
	}
}

func TestCallbackBackfillsInstagramUsername(t *testing.T) {
	ctx := context.Background()
	states := newFakeOAuthStateRepo()
	client := connectedClient()
	client.pages = func(accessToken string) ([]*transfer.MetaPage, error) {
		return []*transfer.MetaPage{
			{
				ID:          "page-1",
				Name:        "Boulangerie Marie",
				AccessToken: "page-token",
				// Username missing from the page listing.
				InstagramBusinessAccount: &transfer.InstagramAccount{ID: "ig-1"},
			},
		}, nil
	}
	var lookupPageID, lookupToken string
	client.instagramAccount = func(pageID, pageToken string) (*transfer.InstagramAccount, error) {
		lookupPageID = pageID
		lookupToken = pageToken
		return &transfer.InstagramAccount{ID: "ig-1", Username: "boulangerie.marie"}, nil
	}
	s := NewMetaService(testConfig(), client, newFakeMetaAccountRepo(), states)

	if err := states.Create(ctx, "state-1", 7); err != nil {
		t.Fatal(err)
	}

	result, err := s.Callback(ctx, &transfer.OAuthCallbackRequest{Code: "code-1", State: "state-1"})
	if err != nil {
		t.Fatalf("Callback: %v", err)
	}
	if lookupPageID != "page-1" || lookupToken != "page-token" {
		t.Errorf("username lookup used page %q, token %q", lookupPageID, lookupToken)
	}
	if len(result.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(result.Pages))
	}
	page := result.Pages[0]
	if page.InstagramAccount == nil || page.InstagramAccount.Username != "boulangerie.marie" {
		t.Errorf("username not backfilled: %+v", page.InstagramAccount)
	}
}

func TestCallbackRejectsReusedState(t *testing.T) {
	ctx := context.Background()
	states := newFakeOAuthStateRepo()
	s := NewMetaService(testConfig(), connectedClient(), newFakeMetaAccountRepo(), states)

	if err := states.Create(ctx, "state-1", 7); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Callback(ctx, &transfer.OAuthCallbackRequest{Code: "code-1", State: "state-1"}); err != nil {
		t.Fatalf("first Callback: %v", err)
	}
	_, err := s.Callback(ctx, &transfer.OAuthCallbackRequest{Code: "code-1", State: "state-1"})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("got %v, want ErrInvalidState", err)
	}
}

func TestCallbackUnknownState(t *testing.T) {
	s := NewMetaService(testConfig(), connectedClient(), newFakeMetaAccountRepo(), newFakeOAuthStateRepo())

	_, err := s.Callback(context.Background(), &transfer.OAuthCallbackRequest{Code: "code-1", State: "never-issued"})
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("got %v, want ErrInvalidState", err)
	}
}

func TestCallbackExpiredState(t *testing.T) {
	ctx := context.Background()
	states := newFakeOAuthStateRepo()
	s := NewMetaService(testConfig(), connectedClient(), newFakeMetaAccountRepo(), states)

	states.states["old-state"] = &stateRow{userID: 7, createdAt: time.Now().Add(-15 * time.Minute)}

	_, err := s.Callback(ctx, &transfer.OAuthCallbackRequest{Code: "code-1", State: "old-state"})
	if !errors.Is(err, ErrExpiredState) {
		t.Errorf("got %v, want ErrExpiredState", err)
	}
	if _, ok := states.states["old-state"]; ok {
		t.Error("expired state should be removed")
	}
}

func TestSelectPageResolvesInstagram(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	states := newFakeOAuthStateRepo()
	accounts := newFakeMetaAccountRepo()
	client := connectedClient()
	client.instagramAccount = func(pageID, pageToken string) (*transfer.InstagramAccount, error) {
		return &transfer.InstagramAccount{ID: "ig-1", Username: "boulangerie.marie"}, nil
	}
	s := NewMetaService(cfg, client, accounts, states)

	if err := states.Create(ctx, "state-1", 7); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Callback(ctx, &transfer.OAuthCallbackRequest{Code: "code-1", State: "state-1"}); err != nil {
		t.Fatalf("Callback: %v", err)
	}

	// The payload omits the Instagram link; it is resolved from the page.
	err := s.SelectPage(ctx, 7, &transfer.PageSelection{
		PageID:    "page-1",
		PageName:  "Boulangerie Marie",
		PageToken: "page-token",
	})
	if err != nil {
		t.Fatalf("SelectPage: %v", err)
	}

	account, _, _ := accounts.GetByUserID(ctx, 7)
	if !account.IsActive {
		t.Error("page selection should activate the account")
	}
	if account.InstagramAccountID != "ig-1" || account.InstagramUsername != "boulangerie.marie" {
		t.Errorf("Instagram link not resolved: %+v", account)
	}

	pageToken, err := s.PageToken(ctx, account)
	if err != nil || pageToken != "page-token" {
		t.Errorf("PageToken = %q, %v; want the decrypted page token", pageToken, err)
	}
}

func TestSelectPageWithoutAccount(t *testing.T) {
	s := NewMetaService(testConfig(), connectedClient(), newFakeMetaAccountRepo(), newFakeOAuthStateRepo())

	err := s.SelectPage(context.Background(), 7, &transfer.PageSelection{PageID: "p", PageName: "n", PageToken: "t"})
	if !errors.Is(err, ErrNoAccount) {
		t.Errorf("got %v, want ErrNoAccount", err)
	}
}

func TestPublishRequiresActiveAccount(t *testing.T) {
	s := NewMetaService(testConfig(), connectedClient(), newFakeMetaAccountRepo(), newFakeOAuthStateRepo())

	_, err := s.Publish(context.Background(), 7, &transfer.PublishRequest{Platform: models.PlatformInstagram, Caption: "Hello"})
	if !errors.Is(err, ErrNoActiveAccount) {
		t.Errorf("got %v, want ErrNoActiveAccount", err)
	}
}

func TestPublishToPlatformGuards(t *testing.T) {
	ctx := context.Background()
	s := NewMetaService(testConfig(), connectedClient(), newFakeMetaAccountRepo(), newFakeOAuthStateRepo())

	account := &models.MetaAccount{UserID: 7, IsActive: true}

	_, err := s.PublishTo(ctx, account, &transfer.PublishRequest{Platform: models.PlatformInstagram, Caption: "Hello"})
	if !errors.Is(err, ErrNoInstagramAccount) {
		t.Errorf("got %v, want ErrNoInstagramAccount", err)
	}

	_, err = s.PublishTo(ctx, account, &transfer.PublishRequest{Platform: models.PlatformFacebook, Caption: "Hello"})
	if !errors.Is(err, ErrNoFacebookPage) {
		t.Errorf("got %v, want ErrNoFacebookPage", err)
	}

	_, err = s.PublishTo(ctx, account, &transfer.PublishRequest{Platform: "tiktok", Caption: "Hello"})
	if err == nil {
		t.Error("expected an error for an unsupported platform")
	}
}

func TestPageTokenFallsBackToUserToken(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	s := NewMetaService(cfg, connectedClient(), newFakeMetaAccountRepo(), newFakeOAuthStateRepo())

	encrypted, err := utils.Encrypt([]byte("user-token"), []byte(cfg.SecretKey))
	if err != nil {
		t.Fatal(err)
	}
	account := &models.MetaAccount{UserID: 7, AccessToken: encrypted}

	token, err := s.PageToken(ctx, account)
	if err != nil {
		t.Fatalf("PageToken: %v", err)
	}
	if token != "user-token" {
		t.Errorf("got %q, want the user token", token)
	}
}

func TestDisconnectRemovesAccount(t *testing.T) {
	ctx := context.Background()
	accounts := newFakeMetaAccountRepo()
	s := NewMetaService(testConfig(), connectedClient(), accounts, newFakeOAuthStateRepo())

	accounts.accounts[7] = &models.MetaAccount{ID: 1, UserID: 7, IsActive: true}

	if err := s.Disconnect(ctx, 7); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}

	status, err := s.Status(ctx, 7)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Connected {
		t.Error("status should report disconnected")
	}
}
