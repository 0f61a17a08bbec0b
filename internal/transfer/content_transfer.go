package transfer

import (
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type ContentGenerateRequest struct {
	ContentType    string `json:"content_type"`
	Platform       string `json:"platform"`
	Brief          string `json:"brief"`
	BrandVoice     string `json:"brand_voice"`
	TargetAudience string `json:"target_audience"`
	Objective      string `json:"objective"`
}

func (r ContentGenerateRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.ContentType, v.Required, v.In("post", "story", "reel", "carousel", "ad")),
		v.Field(&r.Platform, v.Required, v.In("instagram", "facebook")),
		v.Field(&r.Brief, v.Required),
	)
}

type ImageGenerateRequest struct {
	Prompt string `json:"prompt"`
}

func (r ImageGenerateRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Prompt, v.Required),
	)
}

type ContentCreateRequest struct {
	Title        string     `json:"title"`
	ContentType  string     `json:"content_type"`
	Platform     string     `json:"platform"`
	Caption      string     `json:"caption"`
	MediaURLs    []string   `json:"media_urls"`
	Hashtags     []string   `json:"hashtags"`
	Headline     string     `json:"headline"`
	CTAText      string     `json:"cta_text"`
	LinkURL      string     `json:"link_url"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	CampaignID   *int64     `json:"campaign_id"`
}

func (r ContentCreateRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Caption, v.Required),
		v.Field(&r.ContentType, v.In("post", "story", "reel", "carousel", "ad")),
		v.Field(&r.Platform, v.In("instagram", "facebook")),
		v.Field(&r.LinkURL, is.URL),
	)
}

// ContentUpdateRequest uses pointers so absent fields are left untouched.
type ContentUpdateRequest struct {
	Title        *string    `json:"title"`
	Caption      *string    `json:"caption"`
	MediaURLs    *[]string  `json:"media_urls"`
	Hashtags     *[]string  `json:"hashtags"`
	Headline     *string    `json:"headline"`
	CTAText      *string    `json:"cta_text"`
	LinkURL      *string    `json:"link_url"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	Status       *string    `json:"status"`
}

type ContentFilter struct {
	Status      string
	ContentType string
	Platform    string
	Limit       int
}

// GeneratedContent is the structured shape the model is asked to return.
type GeneratedContent struct {
	Caption          string   `json:"caption"`
	Hashtags         []string `json:"hashtags"`
	CTA              string   `json:"cta"`
	VisualSuggestion string   `json:"visual_suggestion"`
	BestTime         string   `json:"best_time"`
	StrategyNotes    string   `json:"strategy_notes"`
}

// GenerationResult carries either the parsed structured content or, when the
// model reply does not parse as JSON, the raw text. Exactly one branch is set.
type GenerationResult struct {
	Content *GeneratedContent `json:"content,omitempty"`
	RawText string            `json:"raw_text,omitempty"`
}
