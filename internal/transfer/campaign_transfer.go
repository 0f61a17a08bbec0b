package transfer

import (
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
)

type CampaignCreateRequest struct {
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	Objective        string                 `json:"objective"`
	BudgetCents      int64                  `json:"budget_cents"`
	DailyBudgetCents int64                  `json:"daily_budget_cents"`
	TargetAudience   map[string]interface{} `json:"target_audience"`
	StartDate        *time.Time             `json:"start_date"`
	EndDate          *time.Time             `json:"end_date"`
}

func (r CampaignCreateRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Name, v.Required, v.Length(1, 255)),
		v.Field(&r.BudgetCents, v.Min(0)),
		v.Field(&r.DailyBudgetCents, v.Min(0)),
	)
}

type CampaignFilter struct {
	IsActive *bool `query:"is_active"`
}

type CampaignUpdateRequest struct {
	Name             *string                 `json:"name"`
	Description      *string                 `json:"description"`
	Objective        *string                 `json:"objective"`
	BudgetCents      *int64                  `json:"budget_cents"`
	DailyBudgetCents *int64                  `json:"daily_budget_cents"`
	TargetAudience   *map[string]interface{} `json:"target_audience"`
	StartDate        *time.Time              `json:"start_date"`
	EndDate          *time.Time              `json:"end_date"`
	IsActive         *bool                   `json:"is_active"`
	Vibe             *string                 `json:"vibe"`
}

type StrategyRequest struct {
	BusinessDescription string `json:"business_description"`
	Goals               string `json:"goals"`
	Budget              int64  `json:"budget"`
	DurationDays        int    `json:"duration_days"`
}

func (r StrategyRequest) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.BusinessDescription, v.Required),
		v.Field(&r.Goals, v.Required),
		v.Field(&r.DurationDays, v.Min(0), v.Max(365)),
	)
}
