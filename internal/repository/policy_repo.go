package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/correcteur-api/internal/models"
)

// PolicyRepository defines data operations for grading policies.
type PolicyRepository interface {
	List(ctx context.Context) ([]models.GradingPolicy, error)
	GetByID(ctx context.Context, id string) (models.GradingPolicy, error)
	Create(ctx context.Context, policy *models.GradingPolicy) error
	Update(ctx context.Context, policy *models.GradingPolicy) error
	Delete(ctx context.Context, id string) error
	CountSubjectsUsing(ctx context.Context, id string) (int64, error)
}

type policyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository instantiates the repository.
func NewPolicyRepository(db *gorm.DB) PolicyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) List(ctx context.Context) ([]models.GradingPolicy, error) {
	var policies []models.GradingPolicy
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *policyRepository) GetByID(ctx context.Context, id string) (models.GradingPolicy, error) {
	var policy models.GradingPolicy
	if err := r.db.WithContext(ctx).First(&policy, "id = ?", id).Error; err != nil {
		return models.GradingPolicy{}, err
	}
	return policy, nil
}

func (r *policyRepository) Create(ctx context.Context, policy *models.GradingPolicy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}

func (r *policyRepository) Update(ctx context.Context, policy *models.GradingPolicy) error {
	return r.db.WithContext(ctx).Save(policy).Error
}

func (r *policyRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&models.GradingPolicy{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *policyRepository) CountSubjectsUsing(ctx context.Context, id string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Subject{}).Where("prompt_id = ?", id).Count(&count).Error
	return count, err
}
