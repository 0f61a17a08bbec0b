package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/transfer"
)

// In-memory repository doubles. Each one keeps rows in a map keyed by id and
// mimics the user scoping of the real queries.

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, bool, error) {
	u, ok := r.users[id]
	return u, ok, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, bool, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ *sql.Tx, user *models.User) (int64, error) {
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

type stateRow struct {
	userID    int64
	used      bool
	createdAt time.Time
}

type fakeOAuthStateRepo struct {
	states map[string]*stateRow
}

func newFakeOAuthStateRepo() *fakeOAuthStateRepo {
	return &fakeOAuthStateRepo{states: make(map[string]*stateRow)}
}

func (r *fakeOAuthStateRepo) Create(_ context.Context, state string, userID int64) error {
	r.states[state] = &stateRow{userID: userID, createdAt: time.Now()}
	return nil
}

func (r *fakeOAuthStateRepo) DeleteOldByUserID(_ context.Context, userID int64, cutoff time.Time) error {
	for s, row := range r.states {
		if row.userID == userID && !row.used && row.createdAt.Before(cutoff) {
			delete(r.states, s)
		}
	}
	return nil
}

func (r *fakeOAuthStateRepo) Consume(_ context.Context, state string, cutoff time.Time) (int64, bool, error) {
	row, ok := r.states[state]
	if !ok || row.used || row.createdAt.Before(cutoff) {
		return 0, false, nil
	}
	row.used = true
	return row.userID, true, nil
}

func (r *fakeOAuthStateRepo) DeleteExpired(_ context.Context, state string, cutoff time.Time) (bool, error) {
	row, ok := r.states[state]
	if !ok || row.used || !row.createdAt.Before(cutoff) {
		return false, nil
	}
	delete(r.states, state)
	return true, nil
}

func (r *fakeOAuthStateRepo) Sweep(_ context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	for s, row := range r.states {
		if row.used || row.createdAt.Before(cutoff) {
			delete(r.states, s)
			removed++
		}
	}
	return removed, nil
}

type fakeMetaAccountRepo struct {
	nextID   int64
	accounts map[int64]*models.MetaAccount // keyed by user id
}

func newFakeMetaAccountRepo() *fakeMetaAccountRepo {
	return &fakeMetaAccountRepo{accounts: make(map[int64]*models.MetaAccount)}
}

func (r *fakeMetaAccountRepo) GetByUserID(_ context.Context, userID int64) (*models.MetaAccount, bool, error) {
	a, ok := r.accounts[userID]
	return a, ok, nil
}

func (r *fakeMetaAccountRepo) GetActiveByUserID(_ context.Context, userID int64) (*models.MetaAccount, bool, error) {
	a, ok := r.accounts[userID]
	if !ok || !a.IsActive {
		return nil, false, nil
	}
	return a, true, nil
}

func (r *fakeMetaAccountRepo) ListByUserID(_ context.Context, userID int64) ([]*models.MetaAccount, error) {
	if a, ok := r.accounts[userID]; ok {
		return []*models.MetaAccount{a}, nil
	}
	return nil, nil
}

func (r *fakeMetaAccountRepo) Upsert(_ context.Context, account *models.MetaAccount) (int64, error) {
	if existing, ok := r.accounts[account.UserID]; ok {
		existing.MetaUserID = account.MetaUserID
		existing.AccessToken = account.AccessToken
		existing.TokenExpiresAt = account.TokenExpiresAt
		existing.FacebookPageID = ""
		existing.FacebookPageName = ""
		existing.PageAccessToken = ""
		existing.InstagramAccountID = ""
		existing.InstagramUsername = ""
		existing.AdAccountID = ""
		existing.IsActive = account.IsActive
		return existing.ID, nil
	}
	r.nextID++
	account.ID = r.nextID
	r.accounts[account.UserID] = account
	return account.ID, nil
}

func (r *fakeMetaAccountRepo) SelectPage(_ context.Context, account *models.MetaAccount) error {
	existing, ok := r.accounts[account.UserID]
	if !ok {
		return nil
	}
	existing.FacebookPageID = account.FacebookPageID
	existing.FacebookPageName = account.FacebookPageName
	existing.PageAccessToken = account.PageAccessToken
	existing.InstagramAccountID = account.InstagramAccountID
	existing.InstagramUsername = account.InstagramUsername
	existing.IsActive = true
	return nil
}

func (r *fakeMetaAccountRepo) SetToken(_ context.Context, userID int64, accessToken string, expiresAt time.Time) error {
	if a, ok := r.accounts[userID]; ok {
		a.AccessToken = accessToken
		a.TokenExpiresAt = expiresAt
	}
	return nil
}

func (r *fakeMetaAccountRepo) ListExpiring(_ context.Context, before time.Time) ([]*models.MetaAccount, error) {
	var out []*models.MetaAccount
	for _, a := range r.accounts {
		if a.IsActive && a.TokenExpiresAt.Before(before) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeMetaAccountRepo) RemoveByUserID(_ context.Context, userID int64) error {
	delete(r.accounts, userID)
	return nil
}

type fakeContentRepo struct {
	nextID   int64
	contents map[int64]*models.Content
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{contents: make(map[int64]*models.Content)}
}

func (r *fakeContentRepo) Create(_ context.Context, _ *sql.Tx, content *models.Content) (int64, error) {
	r.nextID++
	content.ID = r.nextID
	content.CreatedAt = time.Now()
	r.contents[content.ID] = content
	return content.ID, nil
}

func (r *fakeContentRepo) GetByID(_ context.Context, id, userID int64) (*models.Content, bool, error) {
	c, ok := r.contents[id]
	if !ok || c.UserID != userID {
		return nil, false, nil
	}
	return c, true, nil
}

func (r *fakeContentRepo) List(_ context.Context, userID int64, filter transfer.ContentFilter) ([]*models.Content, error) {
	var out []*models.Content
	for _, c := range r.contents {
		if c.UserID != userID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.ContentType != "" && c.ContentType != filter.ContentType {
			continue
		}
		if filter.Platform != "" && c.Platform != filter.Platform {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeContentRepo) ListByCampaign(_ context.Context, campaignID int64) ([]*models.Content, error) {
	var out []*models.Content
	for _, c := range r.contents {
		if c.CampaignID != nil && *c.CampaignID == campaignID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeContentRepo) CountByCampaign(ctx context.Context, campaignID int64) (int64, error) {
	contents, err := r.ListByCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	return int64(len(contents)), nil
}

func (r *fakeContentRepo) Update(_ context.Context, content *models.Content) error {
	r.contents[content.ID] = content
	return nil
}

func (r *fakeContentRepo) UpdateStatus(_ context.Context, status string, id int64) error {
	if c, ok := r.contents[id]; ok {
		c.Status = status
	}
	return nil
}

func (r *fakeContentRepo) MarkPublished(_ context.Context, id int64, metaPostID string, publishedAt time.Time) error {
	if c, ok := r.contents[id]; ok {
		c.Status = models.ContentStatusPublished
		c.MetaPostID = metaPostID
		c.PublishedAt = &publishedAt
	}
	return nil
}

func (r *fakeContentRepo) UnlinkCampaign(_ context.Context, campaignID int64) error {
	for _, c := range r.contents {
		if c.CampaignID != nil && *c.CampaignID == campaignID {
			c.CampaignID = nil
		}
	}
	return nil
}

func (r *fakeContentRepo) Remove(_ context.Context, id int64) error {
	delete(r.contents, id)
	return nil
}

type fakeAnalyticsRepo struct {
	nextID int64
	rows   map[int64]*models.ContentAnalytics // keyed by content id
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{rows: make(map[int64]*models.ContentAnalytics)}
}

func (r *fakeAnalyticsRepo) Create(_ context.Context, _ *sql.Tx, contentID int64) (int64, error) {
	if row, ok := r.rows[contentID]; ok {
		row.LastUpdated = time.Now()
		return row.ID, nil
	}
	r.nextID++
	r.rows[contentID] = &models.ContentAnalytics{ID: r.nextID, ContentID: contentID, LastUpdated: time.Now()}
	return r.nextID, nil
}

func (r *fakeAnalyticsRepo) GetByContentID(_ context.Context, contentID int64) (*models.ContentAnalytics, bool, error) {
	row, ok := r.rows[contentID]
	return row, ok, nil
}

func (r *fakeAnalyticsRepo) Save(_ context.Context, analytics *models.ContentAnalytics) error {
	r.rows[analytics.ContentID] = analytics
	return nil
}

func (r *fakeAnalyticsRepo) RemoveByContentID(_ context.Context, contentID int64) error {
	delete(r.rows, contentID)
	return nil
}

func (r *fakeAnalyticsRepo) Overview(_ context.Context, _ int64, _ time.Time) (*transfer.AnalyticsOverview, error) {
	overview := &transfer.AnalyticsOverview{}
	for _, row := range r.rows {
		overview.TotalImpressions += row.Impressions
		overview.TotalReach += row.Reach
		overview.TotalEngagement += row.Engagement
		overview.TotalSpendCents += row.SpendCents
	}
	return overview, nil
}

func (r *fakeAnalyticsRepo) BestPerformingType(_ context.Context, _ int64) (string, error) {
	return "", nil
}

func (r *fakeAnalyticsRepo) CampaignTotals(_ context.Context, _ int64) (*transfer.CampaignTotals, error) {
	return &transfer.CampaignTotals{}, nil
}

func (r *fakeAnalyticsRepo) CampaignBreakdown(_ context.Context, _ int64) ([]transfer.ContentBreakdownRow, error) {
	return nil, nil
}

func (r *fakeAnalyticsRepo) TopContent(_ context.Context, _ int64, _ string, _ int) ([]transfer.TopContentRow, error) {
	return nil, nil
}

type fakeCampaignRepo struct {
	nextID    int64
	campaigns map[int64]*models.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: make(map[int64]*models.Campaign)}
}

func (r *fakeCampaignRepo) Create(_ context.Context, _ *sql.Tx, campaign *models.Campaign) (int64, error) {
	r.nextID++
	campaign.ID = r.nextID
	r.campaigns[campaign.ID] = campaign
	return campaign.ID, nil
}

func (r *fakeCampaignRepo) GetByID(_ context.Context, id, userID int64) (*models.Campaign, bool, error) {
	c, ok := r.campaigns[id]
	if !ok || c.UserID != userID {
		return nil, false, nil
	}
	return c, true, nil
}

func (r *fakeCampaignRepo) List(_ context.Context, userID int64, filter transfer.CampaignFilter) ([]*models.Campaign, error) {
	var out []*models.Campaign
	for _, c := range r.campaigns {
		if c.UserID != userID {
			continue
		}
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCampaignRepo) Update(_ context.Context, campaign *models.Campaign) error {
	r.campaigns[campaign.ID] = campaign
	return nil
}

func (r *fakeCampaignRepo) SetStrategy(_ context.Context, id int64, strategy models.JSONMap, vibe string) error {
	if c, ok := r.campaigns[id]; ok {
		c.Strategy = strategy
		c.Vibe = vibe
	}
	return nil
}

func (r *fakeCampaignRepo) Remove(_ context.Context, id int64) error {
	delete(r.campaigns, id)
	return nil
}

type fakeConversationRepo struct {
	nextID        int64
	conversations map[int64]*models.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[int64]*models.Conversation)}
}

func (r *fakeConversationRepo) Create(_ context.Context, _ *sql.Tx, conversation *models.Conversation) (int64, error) {
	r.nextID++
	conversation.ID = r.nextID
	conversation.CreatedAt = time.Now()
	r.conversations[conversation.ID] = conversation
	return conversation.ID, nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id, userID int64) (*models.Conversation, bool, error) {
	c, ok := r.conversations[id]
	if !ok || c.UserID != userID {
		return nil, false, nil
	}
	return c, true, nil
}

func (r *fakeConversationRepo) List(_ context.Context, userID int64) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, c := range r.conversations {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) Touch(_ context.Context, id int64) error {
	if c, ok := r.conversations[id]; ok {
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeConversationRepo) Remove(_ context.Context, id int64) error {
	delete(r.conversations, id)
	return nil
}

type fakeMessageRepo struct {
	nextID   int64
	messages []*models.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(_ context.Context, _ *sql.Tx, message *models.Message) (int64, error) {
	r.nextID++
	message.ID = r.nextID
	message.CreatedAt = time.Now()
	stored := *message
	r.messages = append(r.messages, &stored)
	return message.ID, nil
}

func (r *fakeMessageRepo) ListByConversation(_ context.Context, conversationID int64) ([]*models.Message, error) {
	var out []*models.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) ListRecent(ctx context.Context, conversationID int64, limit int) ([]*models.Message, error) {
	all, err := r.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

// fakeMetaClient stubs the Graph API. Only the funcs a test sets are callable.
type fakeMetaClient struct {
	oauthURL         string
	exchangeCode     func(code string) (*transfer.MetaToken, error)
	longLivedToken   func(shortToken string) (*transfer.MetaToken, error)
	userInfo         func(accessToken string) (*transfer.MetaUserInfo, error)
	pages            func(accessToken string) ([]*transfer.MetaPage, error)
	instagramAccount func(pageID, pageToken string) (*transfer.InstagramAccount, error)
	adAccounts       func(accessToken string) ([]*transfer.AdAccount, error)
	publishInstagram func(igUserID, accessToken, caption, mediaURL, mediaType string) (string, error)
	publishFacebook  func(pageID, pageToken, message, link, photoURL string) (string, error)
	postInsights     func(mediaID, accessToken string) (*transfer.PostInsights, error)
}

func (c *fakeMetaClient) OAuthURL(state string) string {
	return c.oauthURL + "?state=" + state
}

func (c *fakeMetaClient) ExchangeCode(_ context.Context, code string) (*transfer.MetaToken, error) {
	return c.exchangeCode(code)
}

func (c *fakeMetaClient) LongLivedToken(_ context.Context, shortToken string) (*transfer.MetaToken, error) {
	return c.longLivedToken(shortToken)
}

func (c *fakeMetaClient) UserInfo(_ context.Context, accessToken string) (*transfer.MetaUserInfo, error) {
	return c.userInfo(accessToken)
}

func (c *fakeMetaClient) Pages(_ context.Context, accessToken string) ([]*transfer.MetaPage, error) {
	return c.pages(accessToken)
}

func (c *fakeMetaClient) InstagramAccount(_ context.Context, pageID, pageToken string) (*transfer.InstagramAccount, error) {
	return c.instagramAccount(pageID, pageToken)
}

func (c *fakeMetaClient) AdAccounts(_ context.Context, accessToken string) ([]*transfer.AdAccount, error) {
	return c.adAccounts(accessToken)
}

func (c *fakeMetaClient) PublishInstagram(_ context.Context, igUserID, accessToken, caption, mediaURL, mediaType string) (string, error) {
	return c.publishInstagram(igUserID, accessToken, caption, mediaURL, mediaType)
}

func (c *fakeMetaClient) PublishFacebook(_ context.Context, pageID, pageToken, message, link, photoURL string) (string, error) {
	return c.publishFacebook(pageID, pageToken, message, link, photoURL)
}

func (c *fakeMetaClient) PostInsights(_ context.Context, mediaID, accessToken string) (*transfer.PostInsights, error) {
	return c.postInsights(mediaID, accessToken)
}

// fakeAIService scripts assistant replies.
type fakeAIService struct {
	chat             func(messages []transfer.AIMessage, chatContext *transfer.ChatContext) (string, error)
	generateContent  func(req *transfer.ContentGenerateRequest) (*transfer.GenerationResult, error)
	analyze          func(metrics *models.ContentAnalytics, contentType, industry string) (string, error)
	generateStrategy func(req *transfer.StrategyRequest) (models.JSONMap, error)
}

func (s *fakeAIService) Chat(_ context.Context, messages []transfer.AIMessage, chatContext *transfer.ChatContext) (string, error) {
	return s.chat(messages, chatContext)
}

func (s *fakeAIService) GenerateContent(_ context.Context, req *transfer.ContentGenerateRequest) (*transfer.GenerationResult, error) {
	return s.generateContent(req)
}

func (s *fakeAIService) AnalyzePerformance(_ context.Context, metrics *models.ContentAnalytics, contentType, industry string) (string, error) {
	return s.analyze(metrics, contentType, industry)
}

func (s *fakeAIService) GenerateStrategy(_ context.Context, req *transfer.StrategyRequest) (models.JSONMap, error) {
	return s.generateStrategy(req)
}
