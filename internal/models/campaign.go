package models

import "time"

type Campaign struct {
	ID               int64      `db:"id" json:"id"`
	UserID           int64      `db:"user_id" json:"user_id"`
	Name             string     `db:"name" json:"name"`
	Description      string     `db:"description" json:"description"`
	Objective        string     `db:"objective" json:"objective"`
	BudgetCents      int64      `db:"budget_cents" json:"budget_cents"`
	DailyBudgetCents int64      `db:"daily_budget_cents" json:"daily_budget_cents"`
	TargetAudience   JSONMap    `db:"target_audience" json:"target_audience"`
	StartDate        *time.Time `db:"start_date" json:"start_date"`
	EndDate          *time.Time `db:"end_date" json:"end_date"`
	IsActive         bool       `db:"is_active" json:"is_active"`
	Vibe             string     `db:"vibe" json:"vibe"`
	Strategy         JSONMap    `db:"strategy" json:"strategy"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`

	// Filled by queries, not a column.
	ContentCount int64 `db:"-" json:"content_count"`
}
