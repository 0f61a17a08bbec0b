package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/repository"
	"github.com/w3art/marko/internal/transfer"
)

var (
	ErrNoAnalytics  = errors.New("no analytics available")
	ErrNoMetaPostID = errors.New("no Meta post ID")
	ErrNotPublished = errors.New("published content not found")
)

type AnalyticsService interface {
	Overview(ctx context.Context, userID int64, days int) (*transfer.AnalyticsOverview, error)
	ContentAnalytics(ctx context.Context, contentID, userID int64) (*models.Content, *models.ContentAnalytics, error)
	Refresh(ctx context.Context, contentID, userID int64) error
	Analyze(ctx context.Context, contentID, userID int64) (*models.ContentAnalytics, string, error)
	Campaign(ctx context.Context, campaignID, userID int64) (*transfer.CampaignAnalytics, error)
	TopContent(ctx context.Context, userID int64, metric string, limit int) ([]transfer.TopContentRow, error)
}

type analyticsService struct {
	ai     AIService
	meta   MetaService
	client MetaClient
	a      repository.AnalyticsRepository
	c      repository.ContentRepository
	ca     repository.CampaignRepository
	ma     repository.MetaAccountRepository
	u      repository.UserRepository
}

func NewAnalyticsService(
	ai AIService,
	meta MetaService,
	client MetaClient,
	a repository.AnalyticsRepository,
	c repository.ContentRepository,
	ca repository.CampaignRepository,
	ma repository.MetaAccountRepository,
	u repository.UserRepository) AnalyticsService {
	return &analyticsService{
		ai:     ai,
		meta:   meta,
		client: client,
		a:      a,
		c:      c,
		ca:     ca,
		ma:     ma,
		u:      u,
	}
}

func (s *analyticsService) Overview(ctx context.Context, userID int64, days int) (*transfer.AnalyticsOverview, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days)

	overview, err := s.a.Overview(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	if overview.TotalImpressions > 0 {
		rate := float64(overview.TotalEngagement) / float64(overview.TotalImpressions) * 100
		overview.AverageEngagementRate = math.Round(rate*100) / 100
	}

	bestType, err := s.a.BestPerformingType(ctx, userID)
	if err != nil {
		return nil, err
	}
	overview.BestPerformingType = bestType

	return overview, nil
}

// ContentAnalytics returns the content row and its analytics snapshot. The
// snapshot is nil when nothing has been collected yet.
func (s *analyticsService) ContentAnalytics(ctx context.Context, contentID, userID int64) (*models.Content, *models.ContentAnalytics, error) {
	content, isExist, err := s.c.GetByID(ctx, contentID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !isExist {
		return nil, nil, ErrContentNotFound
	}

	analytics, isExist, err := s.a.GetByContentID(ctx, contentID)
	if err != nil {
		return nil, nil, err
	}
	if !isExist {
		return content, nil, nil
	}
	return content, analytics, nil
}

// Refresh pulls post insights from the Graph API and overwrites the stored
// snapshot wholesale.
func (s *analyticsService) Refresh(ctx context.Context, contentID, userID int64) error {
	content, isExist, err := s.c.GetByID(ctx, contentID, userID)
	if err != nil {
		return err
	}
	if !isExist || content.Status != models.ContentStatusPublished {
		return ErrNotPublished
	}
	if content.MetaPostID == "" {
		return ErrNoMetaPostID
	}

	account, isExist, err := s.ma.GetActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if !isExist {
		return ErrNoActiveAccount
	}

	token, err := s.meta.UserToken(ctx, account)
	if err != nil {
		return err
	}

	insights, err := s.client.PostInsights(ctx, content.MetaPostID, token)
	if err != nil {
		return err
	}

	analytics, isExist, err := s.a.GetByContentID(ctx, contentID)
	if err != nil {
		return err
	}
	if !isExist {
		analytics = &models.ContentAnalytics{ContentID: contentID}
	}

	applyInsights(analytics, insights)

	return s.a.Save(ctx, analytics)
}

func applyInsights(analytics *models.ContentAnalytics, insights *transfer.PostInsights) {
	for _, metric := range insights.Data {
		var value int64
		if len(metric.Values) > 0 {
			value = metric.Values[0].Value
		}

		switch metric.Name {
		case "impressions":
			analytics.Impressions = value
		case "reach":
			analytics.Reach = value
		case "engagement":
			analytics.Engagement = value
		case "likes":
			analytics.Likes = value
		case "comments":
			analytics.Comments = value
		case "shares":
			analytics.Shares = value
		case "saved":
			analytics.Saves = value
		}
	}
}

func (s *analyticsService) Analyze(ctx context.Context, contentID, userID int64) (*models.ContentAnalytics, string, error) {
	content, isExist, err := s.c.GetByID(ctx, contentID, userID)
	if err != nil {
		return nil, "", err
	}
	if !isExist {
		return nil, "", ErrContentNotFound
	}

	analytics, isExist, err := s.a.GetByContentID(ctx, contentID)
	if err != nil {
		return nil, "", err
	}
	if !isExist {
		return nil, "", ErrNoAnalytics
	}

	industry := ""
	user, isExist, err := s.u.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if isExist {
		industry = user.CompanyName
	}

	analysis, err := s.ai.AnalyzePerformance(ctx, analytics, content.ContentType, industry)
	if err != nil {
		return nil, "", err
	}

	return analytics, analysis, nil
}

func (s *analyticsService) Campaign(ctx context.Context, campaignID, userID int64) (*transfer.CampaignAnalytics, error) {
	campaign, isExist, err := s.ca.GetByID(ctx, campaignID, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrCampaignNotFound
	}

	totals, err := s.a.CampaignTotals(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.a.CampaignBreakdown(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	return &transfer.CampaignAnalytics{
		CampaignID:       campaignID,
		CampaignName:     campaign.Name,
		BudgetCents:      campaign.BudgetCents,
		SpentCents:       totals.SpendCents,
		Metrics:          *totals,
		ContentBreakdown: breakdown,
	}, nil
}

func (s *analyticsService) TopContent(ctx context.Context, userID int64, metric string, limit int) ([]transfer.TopContentRow, error) {
	rows, err := s.a.TopContent(ctx, userID, metric, limit)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Caption = truncateCaption(rows[i].Caption)
	}
	return rows, nil
}

func truncateCaption(caption string) string {
	runes := []rune(caption)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return caption
}
