package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/transfer"
	"github.com/w3art/marko/pkg/utils"
)

type analyticsFixture struct {
	ai        *fakeAIService
	client    *fakeMetaClient
	analytics *fakeAnalyticsRepo
	contents  *fakeContentRepo
	campaigns *fakeCampaignRepo
	accounts  *fakeMetaAccountRepo
	users     *fakeUserRepo
	s         AnalyticsService
}

func newAnalyticsFixture(t *testing.T) *analyticsFixture {
	t.Helper()
	cfg := testConfig()

	userToken, err := utils.Encrypt([]byte("user-token"), []byte(cfg.SecretKey))
	if err != nil {
		t.Fatal(err)
	}

	f := &analyticsFixture{
		ai:        &fakeAIService{},
		client:    connectedClient(),
		analytics: newFakeAnalyticsRepo(),
		contents:  newFakeContentRepo(),
		campaigns: newFakeCampaignRepo(),
		accounts:  newFakeMetaAccountRepo(),
		users:     newFakeUserRepo(),
	}
	f.users.users[7] = &models.User{ID: 7, Name: "Marie", CompanyName: "Boulangerie Marie"}
	f.accounts.accounts[7] = &models.MetaAccount{ID: 1, UserID: 7, AccessToken: userToken, IsActive: true}

	meta := NewMetaService(cfg, f.client, f.accounts, newFakeOAuthStateRepo())
	f.s = NewAnalyticsService(f.ai, meta, f.client, f.analytics, f.contents, f.campaigns, f.accounts, f.users)
	return f
}

func publishedContent(t *testing.T, f *analyticsFixture) *models.Content {
	t.Helper()
	now := time.Now()
	content := &models.Content{
		UserID:      7,
		ContentType: models.ContentTypePost,
		Platform:    models.PlatformInstagram,
		Caption:     "Publié",
		Status:      models.ContentStatusPublished,
		MetaPostID:  "ig-post-1",
		PublishedAt: &now,
	}
	if _, err := f.contents.Create(context.Background(), nil, content); err != nil {
		t.Fatal(err)
	}
	return content
}

func TestRefreshPullsInsights(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	content := publishedContent(t, f)

	payload := `{"data": [
		{"name": "impressions", "values": [{"value": 1200}]},
		{"name": "reach", "values": [{"value": 900}]},
		{"name": "saved", "values": [{"value": 15}]}
	]}`

	var gotToken string
	f.client.postInsights = func(mediaID, accessToken string) (*transfer.PostInsights, error) {
		gotToken = accessToken
		var insights transfer.PostInsights
		if err := json.Unmarshal([]byte(payload), &insights); err != nil {
			return nil, err
		}
		return &insights, nil
	}

	if err := f.s.Refresh(ctx, content.ID, 7); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if gotToken != "user-token" {
		t.Errorf("insights fetched with token %q, want the user token", gotToken)
	}

	snapshot, ok, _ := f.analytics.GetByContentID(ctx, content.ID)
	if !ok {
		t.Fatal("no snapshot stored")
	}
	if snapshot.Impressions != 1200 || snapshot.Reach != 900 || snapshot.Saves != 15 {
		t.Errorf("insights not applied: %+v", snapshot)
	}
}

func TestRefreshGuards(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)

	draft := &models.Content{UserID: 7, Caption: "Brouillon", Status: models.ContentStatusDraft}
	if _, err := f.contents.Create(ctx, nil, draft); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Refresh(ctx, draft.ID, 7); !errors.Is(err, ErrNotPublished) {
		t.Errorf("got %v, want ErrNotPublished for a draft", err)
	}

	noPost := &models.Content{UserID: 7, Caption: "Sans post", Status: models.ContentStatusPublished}
	if _, err := f.contents.Create(ctx, nil, noPost); err != nil {
		t.Fatal(err)
	}
	if err := f.s.Refresh(ctx, noPost.ID, 7); !errors.Is(err, ErrNoMetaPostID) {
		t.Errorf("got %v, want ErrNoMetaPostID", err)
	}

	content := publishedContent(t, f)
	f.accounts.accounts[7].IsActive = false
	if err := f.s.Refresh(ctx, content.ID, 7); !errors.Is(err, ErrNoActiveAccount) {
		t.Errorf("got %v, want ErrNoActiveAccount", err)
	}
}

func TestContentAnalyticsWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	content := publishedContent(t, f)

	got, snapshot, err := f.s.ContentAnalytics(ctx, content.ID, 7)
	if err != nil {
		t.Fatalf("ContentAnalytics: %v", err)
	}
	if got.ID != content.ID {
		t.Errorf("got content %d, want %d", got.ID, content.ID)
	}
	if snapshot != nil {
		t.Error("expected a nil snapshot before any refresh")
	}
}

func TestAnalyzeRequiresSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	content := publishedContent(t, f)

	if _, _, err := f.s.Analyze(ctx, content.ID, 7); !errors.Is(err, ErrNoAnalytics) {
		t.Errorf("got %v, want ErrNoAnalytics", err)
	}
}

func TestAnalyzePassesIndustry(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)
	content := publishedContent(t, f)

	if _, err := f.analytics.Create(ctx, nil, content.ID); err != nil {
		t.Fatal(err)
	}

	var gotIndustry string
	f.ai.analyze = func(metrics *models.ContentAnalytics, contentType, industry string) (string, error) {
		gotIndustry = industry
		return "Performance correcte pour le secteur.", nil
	}

	_, analysis, err := f.s.Analyze(ctx, content.ID, 7)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if analysis == "" {
		t.Error("expected a non-empty analysis")
	}
	if gotIndustry != "Boulangerie Marie" {
		t.Errorf("got industry %q, want the company name", gotIndustry)
	}
}

func TestOverviewEngagementRate(t *testing.T) {
	ctx := context.Background()
	f := newAnalyticsFixture(t)

	f.analytics.rows[1] = &models.ContentAnalytics{ContentID: 1, Impressions: 1000, Engagement: 123}

	overview, err := f.s.Overview(ctx, 7, 30)
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.AverageEngagementRate != 12.3 {
		t.Errorf("got rate %v, want 12.3", overview.AverageEngagementRate)
	}
}

func TestCampaignAnalyticsUnknownCampaign(t *testing.T) {
	f := newAnalyticsFixture(t)

	if _, err := f.s.Campaign(context.Background(), 99, 7); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("got %v, want ErrCampaignNotFound", err)
	}
}

func TestTruncateCaption(t *testing.T) {
	long := strings.Repeat("é", 120)
	got := truncateCaption(long)
	if len([]rune(got)) != 103 || !strings.HasSuffix(got, "...") {
		t.Errorf("unexpected truncation: %q", got)
	}
	if got := truncateCaption("court"); got != "court" {
		t.Errorf("short caption should pass through, got %q", got)
	}
}
