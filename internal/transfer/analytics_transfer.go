package transfer

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

type OverviewQuery struct {
	Days int `query:"days"`
}

type TopContentQuery struct {
	Limit  int    `query:"limit"`
	Metric string `query:"metric"`
}

func (t TopContentQuery) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Metric, validation.In("", "engagement", "impressions", "reach")),
	)
}

// AnalyticsOverview is the windowed roll-up behind GET /api/analytics/overview.
type AnalyticsOverview struct {
	TotalContent          int64   `json:"total_content"`
	PublishedContent      int64   `json:"published_content"`
	TotalImpressions      int64   `json:"total_impressions"`
	TotalReach            int64   `json:"total_reach"`
	TotalEngagement       int64   `json:"total_engagement"`
	TotalSpendCents       int64   `json:"total_spend_cents"`
	AverageEngagementRate float64 `json:"average_engagement_rate"`
	BestPerformingType    string  `json:"best_performing_type,omitempty"`
}

type CampaignTotals struct {
	ContentCount int64 `json:"content_count"`
	Impressions  int64 `json:"impressions"`
	Reach        int64 `json:"reach"`
	Engagement   int64 `json:"engagement"`
	SpendCents   int64 `json:"-"`
	Conversions  int64 `json:"conversions"`
}

type ContentBreakdownRow struct {
	Type   string `json:"type"`
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type CampaignAnalytics struct {
	CampaignID       int64                 `json:"campaign_id"`
	CampaignName     string                `json:"campaign_name"`
	BudgetCents      int64                 `json:"budget_cents"`
	SpentCents       int64                 `json:"spent_cents"`
	Metrics          CampaignTotals        `json:"metrics"`
	ContentBreakdown []ContentBreakdownRow `json:"content_breakdown"`
}

type TopContentMetrics struct {
	Impressions int64 `json:"impressions"`
	Reach       int64 `json:"reach"`
	Engagement  int64 `json:"engagement"`
	Likes       int64 `json:"likes"`
	Comments    int64 `json:"comments"`
}

type TopContentRow struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	ContentType string            `json:"content_type"`
	Platform    string            `json:"platform"`
	Caption     string            `json:"caption"`
	PublishedAt *time.Time        `json:"published_at"`
	Metrics     TopContentMetrics `json:"metrics"`
}
