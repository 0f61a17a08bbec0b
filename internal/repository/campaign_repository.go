package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/transfer"
)

type CampaignRepository interface {
	Create(ctx context.Context, tx *sql.Tx, campaign *models.Campaign) (int64, error)
	GetByID(ctx context.Context, id, userID int64) (*models.Campaign, bool, error)
	List(ctx context.Context, userID int64, filter transfer.CampaignFilter) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	SetStrategy(ctx context.Context, id int64, strategy models.JSONMap, vibe string) error
	Remove(ctx context.Context, id int64) error
}

type campaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `id, user_id, name, description, objective, budget_cents,
	daily_budget_cents, target_audience, start_date, end_date, is_active,
	vibe, strategy, created_at, updated_at`

func scanCampaign(scan func(dest ...interface{}) error) (*models.Campaign, error) {
	var c models.Campaign
	err := scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Objective, &c.BudgetCents,
		&c.DailyBudgetCents, &c.TargetAudience, &c.StartDate, &c.EndDate, &c.IsActive,
		&c.Vibe, &c.Strategy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *campaignRepository) Create(ctx context.Context, tx *sql.Tx, campaign *models.Campaign) (int64, error) {
	query := `
		INSERT INTO campaigns (user_id, name, description, objective, budget_cents,
			daily_budget_cents, target_audience, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		campaign.UserID, campaign.Name, campaign.Description, campaign.Objective,
		campaign.BudgetCents, campaign.DailyBudgetCents, campaign.TargetAudience,
		campaign.StartDate, campaign.EndDate, campaign.IsActive,
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *campaignRepository) GetByID(ctx context.Context, id, userID int64) (*models.Campaign, bool, error) {
	query := "SELECT " + campaignColumns + " FROM campaigns WHERE id = $1 AND user_id = $2"
	campaign, err := scanCampaign(r.db.QueryRowContext(ctx, query, id, userID).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}
	return campaign, true, nil
}

func (r *campaignRepository) List(ctx context.Context, userID int64, filter transfer.CampaignFilter) ([]*models.Campaign, error) {
	query := `
		SELECT c.id, c.user_id, c.name, c.description, c.objective, c.budget_cents,
			c.daily_budget_cents, c.target_audience, c.start_date, c.end_date, c.is_active,
			c.vibe, c.strategy, c.created_at, c.updated_at,
			COUNT(ct.id) AS content_count
		FROM campaigns c
		LEFT JOIN contents ct ON ct.campaign_id = c.id
		WHERE c.user_id = $1
	`
	args := []interface{}{userID}

	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		query += fmt.Sprintf(" AND c.is_active = $%d", len(args))
	}
	query += " GROUP BY c.id ORDER BY c.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		var c models.Campaign
		err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Objective, &c.BudgetCents,
			&c.DailyBudgetCents, &c.TargetAudience, &c.StartDate, &c.EndDate, &c.IsActive,
			&c.Vibe, &c.Strategy, &c.CreatedAt, &c.UpdatedAt, &c.ContentCount)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		campaigns = append(campaigns, &c)
	}
	return campaigns, rows.Err()
}

func (r *campaignRepository) Update(ctx context.Context, campaign *models.Campaign) error {
	query := `
		UPDATE campaigns
		SET name = $1,
			description = $2,
			objective = $3,
			budget_cents = $4,
			daily_budget_cents = $5,
			target_audience = $6,
			start_date = $7,
			end_date = $8,
			is_active = $9,
			updated_at = $10
		WHERE id = $11
	`
	_, err := r.db.ExecContext(ctx, query,
		campaign.Name, campaign.Description, campaign.Objective, campaign.BudgetCents,
		campaign.DailyBudgetCents, campaign.TargetAudience, campaign.StartDate,
		campaign.EndDate, campaign.IsActive, time.Now(), campaign.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *campaignRepository) SetStrategy(ctx context.Context, id int64, strategy models.JSONMap, vibe string) error {
	query := `
		UPDATE campaigns
		SET strategy = $1,
			vibe = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, strategy, vibe, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *campaignRepository) Remove(ctx context.Context, id int64) error {
	query := "DELETE FROM campaigns WHERE id = $1"
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
