package service

import (
	"context"
	"errors"

	"github.com/w3art/marko/internal/models"
	"github.com/w3art/marko/internal/repository"
	"github.com/w3art/marko/internal/transfer"
)

var ErrCampaignNotFound = errors.New("campaign not found")

type CampaignService interface {
	Create(ctx context.Context, userID int64, req *transfer.CampaignCreateRequest) (*models.Campaign, error)
	List(ctx context.Context, userID int64, filter transfer.CampaignFilter) ([]*models.Campaign, error)
	Get(ctx context.Context, id, userID int64) (*models.Campaign, error)
	Update(ctx context.Context, id, userID int64, req *transfer.CampaignUpdateRequest) (*models.Campaign, error)
	Delete(ctx context.Context, id, userID int64) error
	GenerateStrategy(ctx context.Context, id, userID int64, req *transfer.StrategyRequest) (models.JSONMap, error)
	Content(ctx context.Context, id, userID int64) ([]*models.Content, error)
}

type campaignService struct {
	ai AIService
	ca repository.CampaignRepository
	c  repository.ContentRepository
}

func NewCampaignService(
	ai AIService,
	ca repository.CampaignRepository,
	c repository.ContentRepository) CampaignService {
	return &campaignService{
		ai: ai,
		ca: ca,
		c:  c,
	}
}

func (s *campaignService) Create(ctx context.Context, userID int64, req *transfer.CampaignCreateRequest) (*models.Campaign, error) {
	campaign := &models.Campaign{
		UserID:           userID,
		Name:             req.Name,
		Description:      req.Description,
		Objective:        req.Objective,
		BudgetCents:      req.BudgetCents,
		DailyBudgetCents: req.DailyBudgetCents,
		TargetAudience:   req.TargetAudience,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		IsActive:         true,
	}

	id, err := s.ca.Create(ctx, nil, campaign)
	if err != nil {
		return nil, err
	}
	campaign.ID = id

	return campaign, nil
}

func (s *campaignService) List(ctx context.Context, userID int64, filter transfer.CampaignFilter) ([]*models.Campaign, error) {
	return s.ca.List(ctx, userID, filter)
}

func (s *campaignService) Get(ctx context.Context, id, userID int64) (*models.Campaign, error) {
	campaign, isExist, err := s.ca.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrCampaignNotFound
	}

	count, err := s.c.CountByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	campaign.ContentCount = count

	return campaign, nil
}

func (s *campaignService) Update(ctx context.Context, id, userID int64, req *transfer.CampaignUpdateRequest) (*models.Campaign, error) {
	campaign, isExist, err := s.ca.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrCampaignNotFound
	}

	if req.Name != nil {
		campaign.Name = *req.Name
	}
	if req.Description != nil {
		campaign.Description = *req.Description
	}
	if req.Objective != nil {
		campaign.Objective = *req.Objective
	}
	if req.BudgetCents != nil {
		campaign.BudgetCents = *req.BudgetCents
	}
	if req.DailyBudgetCents != nil {
		campaign.DailyBudgetCents = *req.DailyBudgetCents
	}
	if req.TargetAudience != nil {
		campaign.TargetAudience = *req.TargetAudience
	}
	if req.StartDate != nil {
		campaign.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		campaign.EndDate = req.EndDate
	}
	if req.IsActive != nil {
		campaign.IsActive = *req.IsActive
	}
	if req.Vibe != nil {
		campaign.Vibe = *req.Vibe
	}

	if err := s.ca.Update(ctx, campaign); err != nil {
		return nil, err
	}

	count, err := s.c.CountByCampaign(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	campaign.ContentCount = count

	return campaign, nil
}

// Delete removes the campaign after detaching its content. The content rows
// themselves survive with a null campaign reference.
func (s *campaignService) Delete(ctx context.Context, id, userID int64) error {
	_, isExist, err := s.ca.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if !isExist {
		return ErrCampaignNotFound
	}

	if err := s.c.UnlinkCampaign(ctx, id); err != nil {
		return err
	}
	return s.ca.Remove(ctx, id)
}

func (s *campaignService) GenerateStrategy(ctx context.Context, id, userID int64, req *transfer.StrategyRequest) (models.JSONMap, error) {
	_, isExist, err := s.ca.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrCampaignNotFound
	}

	strategy, err := s.ai.GenerateStrategy(ctx, req)
	if err != nil {
		return nil, err
	}

	vibe, _ := strategy["vibe"].(string)
	if err := s.ca.SetStrategy(ctx, id, strategy, vibe); err != nil {
		return nil, err
	}

	return strategy, nil
}

func (s *campaignService) Content(ctx context.Context, id, userID int64) ([]*models.Content, error) {
	_, isExist, err := s.ca.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !isExist {
		return nil, ErrCampaignNotFound
	}
	return s.c.ListByCampaign(ctx, id)
}
