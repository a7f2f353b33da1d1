package service

import (
	"context"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- Writer profile DTOs ---

// Rates arrive as strings so decimals never round-trip through float64
type UpsertWriterProfileRequest struct {
	Bio             string   `json:"bio"`
	Specialties     []string `json:"specialties"`
	PortfolioURL    string   `json:"portfolio_url"`
	RatePerWord     string   `json:"rate_per_word"`
	MonthlyRetainer string   `json:"monthly_retainer"`
}

// --- Interface ---

type WriterProfileService interface {
	UpsertProfile(ctx context.Context, userID string, req UpsertWriterProfileRequest) (*model.WriterProfile, error)
	GetProfile(ctx context.Context, userID string) (*model.WriterProfile, error)
	DeleteProfile(ctx context.Context, userID string) error
}

type writerProfileService struct {
	db    *gorm.DB
	users repository.UserRepository
}

func NewWriterProfileService(db *gorm.DB, users repository.UserRepository) WriterProfileService {
	return &writerProfileService{db: db, users: users}
}

func parseRate(value, field string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, apperror.BadRequestf("invalid %s: must be a decimal number", field)
	}
	if rate.IsNegative() {
		return decimal.Zero, apperror.BadRequestf("%s cannot be negative", field)
	}
	return rate, nil
}

func (s *writerProfileService) UpsertProfile(ctx context.Context, userID string, req UpsertWriterProfileRequest) (*model.WriterProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.NotFound("user")
	}

	ratePerWord, err := parseRate(req.RatePerWord, "rate_per_word")
	if err != nil {
		return nil, err
	}
	monthlyRetainer, err := parseRate(req.MonthlyRetainer, "monthly_retainer")
	if err != nil {
		return nil, err
	}

	var profile model.WriterProfile
	findErr := s.db.WithContext(ctx).First(&profile, "user_id = ?", user.ID).Error
	if findErr != nil {
		profile = model.WriterProfile{UserID: user.ID}
	}

	profile.Bio = req.Bio
	profile.Specialties = req.Specialties
	profile.PortfolioURL = req.PortfolioURL
	profile.RatePerWord = ratePerWord
	profile.MonthlyRetainer = monthlyRetainer

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, err
	}

	return &profile, nil
}

func (s *writerProfileService) GetProfile(ctx context.Context, userID string) (*model.WriterProfile, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperror.BadRequest("invalid user id")
	}

	var profile model.WriterProfile
	if err := s.db.WithContext(ctx).Preload("User").First(&profile, "user_id = ?", uid).Error; err != nil {
		return nil, apperror.NotFound("writer profile")
	}
	return &profile, nil
}

func (s *writerProfileService) DeleteProfile(ctx context.Context, userID string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return apperror.BadRequest("invalid user id")
	}

	result := s.db.WithContext(ctx).Where("user_id = ?", uid).Delete(&model.WriterProfile{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("writer profile")
	}
	return nil
}
