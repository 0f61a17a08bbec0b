package models

import "time"

type Content struct {
	ID           int64       `db:"id" json:"id"`
	UserID       int64       `db:"user_id" json:"user_id"`
	CampaignID   *int64      `db:"campaign_id" json:"campaign_id"`
	Title        string      `db:"title" json:"title"`
	ContentType  string      `db:"content_type" json:"content_type"`
	Platform     string      `db:"platform" json:"platform"`
	Caption      string      `db:"caption" json:"caption"`
	MediaURLs    StringSlice `db:"media_urls" json:"media_urls"`
	Hashtags     StringSlice `db:"hashtags" json:"hashtags"`
	Headline     string      `db:"headline" json:"headline"`
	CTAText      string      `db:"cta_text" json:"cta_text"`
	LinkURL      string      `db:"link_url" json:"link_url"`
	Status       string      `db:"status" json:"status"`
	ScheduledFor *time.Time  `db:"scheduled_for" json:"scheduled_for"`
	PublishedAt  *time.Time  `db:"published_at" json:"published_at"`
	MetaPostID   string      `db:"meta_post_id" json:"meta_post_id"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

type ContentAnalytics struct {
	ID          int64     `db:"id" json:"id"`
	ContentID   int64     `db:"content_id" json:"content_id"`
	Impressions int64     `db:"impressions" json:"impressions"`
	Reach       int64     `db:"reach" json:"reach"`
	Engagement  int64     `db:"engagement" json:"engagement"`
	Likes       int64     `db:"likes" json:"likes"`
	Comments    int64     `db:"comments" json:"comments"`
	Shares      int64     `db:"shares" json:"shares"`
	Saves       int64     `db:"saves" json:"saves"`
	Clicks      int64     `db:"clicks" json:"clicks"`
	SpendCents  int64     `db:"spend_cents" json:"spend_cents"`
	Conversions int64     `db:"conversions" json:"conversions"`
	CPCCents    int64     `db:"cpc_cents" json:"cpc_cents"`
	CPMCents    int64     `db:"cpm_cents" json:"cpm_cents"`
	ROASx100    int64     `db:"roas_x100" json:"roas_x100"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

const (
	ContentStatusDraft     = "draft"
	ContentStatusScheduled = "scheduled"
	ContentStatusPublished = "published"
	ContentStatusFailed    = "failed"
)

const (
	ContentTypePost     = "post"
	ContentTypeStory    = "story"
	ContentTypeReel     = "reel"
	ContentTypeVideo    = "video"
	ContentTypeCarousel = "carousel"
	ContentTypeAd       = "ad"
)

const (
	PlatformInstagram = "instagram"
	PlatformFacebook  = "facebook"
)
