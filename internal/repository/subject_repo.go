package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/noah-isme/correcteur-api/internal/models"
)

// SubjectRepository defines data operations for subjects and their questions.
type SubjectRepository interface {
	List(ctx context.Context) ([]models.Subject, error)
	GetByID(ctx context.Context, id string) (models.Subject, error)
	GetByCode(ctx context.Context, code string) (models.Subject, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, subject *models.Subject) error
	Replace(ctx context.Context, subject *models.Subject) error
	Delete(ctx context.Context, id string) error
}

type subjectRepository struct {
	db *gorm.DB
}

// NewSubjectRepository instantiates the repository.
func NewSubjectRepository(db *gorm.DB) SubjectRepository {
	return &subjectRepository{db: db}
}

func (r *subjectRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Subject{}).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		})
}

func (r *subjectRepository) List(ctx context.Context) ([]models.Subject, error) {
	var subjects []models.Subject
	if err := r.baseQuery(ctx).Order("created_at DESC").Find(&subjects).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (models.Subject, error) {
	var subject models.Subject
	if err := r.baseQuery(ctx).First(&subject, "id = ?", id).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (r *subjectRepository) GetByCode(ctx context.Context, code string) (models.Subject, error) {
	var subject models.Subject
	if err := r.baseQuery(ctx).Where("code = ?", code).First(&subject).Error; err != nil {
		return models.Subject{}, err
	}
	return subject, nil
}

func (r *subjectRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Subject{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *subjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

// Replace updates the subject row and swaps its questions for subject.Questions.
func (r *subjectRepository) Replace(ctx context.Context, subject *models.Subject) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Subject{}).Where("id = ?", subject.ID).Updates(map[string]interface{}{
			"reference_text": subject.ReferenceText,
			"prompt_id":      subject.PromptID,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if err := tx.Where("subject_id = ?", subject.ID).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		for i := range subject.Questions {
			subject.Questions[i].ID = ""
			subject.Questions[i].SubjectID = subject.ID
		}
		if len(subject.Questions) == 0 {
			return nil
		}
		return tx.Create(&subject.Questions).Error
	})
}

// Delete removes the subject with its questions, submissions and answers.
func (r *subjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submissions := tx.Model(&models.Submission{}).Select("id").Where("subject_id = ?", id)
		if err := tx.Where("submission_id IN (?)", submissions).Delete(&models.Answer{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("subject_id = ?", id).Delete(&models.Question{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Subject{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
