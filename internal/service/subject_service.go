package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/models"
	"github.com/noah-isme/correcteur-api/internal/repository"
	"github.com/noah-isme/correcteur-api/pkg/codegen"
)

// SubjectService manages subjects and serves the student access page.
type SubjectService interface {
	List(ctx context.Context) ([]dto.SubjectResponse, error)
	Get(ctx context.Context, id string) (dto.SubjectResponse, error)
	GetByCode(ctx context.Context, code string) (dto.StudentSubjectResponse, error)
	Create(ctx context.Context, payload dto.SubjectRequest) (dto.SubjectResponse, error)
	Update(ctx context.Context, id string, payload dto.SubjectRequest) (dto.SubjectResponse, error)
	Delete(ctx context.Context, id string) error
}

// SubjectServiceConfig tunes code generation.
type SubjectServiceConfig struct {
	CodeAttempts int
}

type subjectService struct {
	subjects  repository.SubjectRepository
	policies  repository.PolicyRepository
	codes     *codegen.Generator
	cache     *SubjectCache
	validator *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
	config    SubjectServiceConfig
}

// NewSubjectService constructs the subject service.
func NewSubjectService(subjects repository.SubjectRepository, policies repository.PolicyRepository, codes *codegen.Generator, cache *SubjectCache, validate *validator.Validate, logger zerolog.Logger, cfg SubjectServiceConfig) SubjectService {
	if cfg.CodeAttempts <= 0 {
		cfg.CodeAttempts = codegen.DefaultMaxAttempts
	}
	if codes == nil {
		codes = codegen.New(nil)
	}

	return &subjectService{
		subjects:  subjects,
		policies:  policies,
		codes:     codes,
		cache:     cache,
		validator: validate,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger.With().Str("component", "subject_service").Logger(),
		config:    cfg,
	}
}

func (s *subjectService) List(ctx context.Context) ([]dto.SubjectResponse, error) {
	subjects, err := s.subjects.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewSubjectResponseSlice(subjects), nil
}

func (s *subjectService) Get(ctx context.Context, id string) (dto.SubjectResponse, error) {
	subject, err := s.find(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, err
	}
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) GetByCode(ctx context.Context, code string) (dto.StudentSubjectResponse, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return dto.StudentSubjectResponse{}, ErrSubjectNotFound
	}

	if cached, ok := s.cache.Get(ctx, code); ok {
		return cached, nil
	}

	subject, err := s.subjects.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.StudentSubjectResponse{}, ErrSubjectNotFound
		}
		return dto.StudentSubjectResponse{}, err
	}

	response := dto.NewStudentSubjectResponse(subject)
	s.cache.Set(ctx, code, response)
	return response, nil
}

func (s *subjectService) Create(ctx context.Context, payload dto.SubjectRequest) (dto.SubjectResponse, error) {
	subject, err := s.build(ctx, payload)
	if err != nil {
		return dto.SubjectResponse{}, err
	}

	code, err := s.codes.Unique(ctx, s.config.CodeAttempts, s.subjects.CodeExists)
	if err != nil {
		s.logger.Error().Err(err).Int("attempts", s.config.CodeAttempts).Msg("subject code generation failed")
		return dto.SubjectResponse{}, err
	}
	subject.Code = code

	if err := s.subjects.Create(ctx, &subject); err != nil {
		return dto.SubjectResponse{}, err
	}

	s.logger.Info().Str("subject_id", subject.ID).Str("code", subject.Code).Msg("subject created")
	return dto.NewSubjectResponse(subject), nil
}

func (s *subjectService) Update(ctx context.Context, id string, payload dto.SubjectRequest) (dto.SubjectResponse, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return dto.SubjectResponse{}, err
	}

	subject, err := s.build(ctx, payload)
	if err != nil {
		return dto.SubjectResponse{}, err
	}
	subject.ID = existing.ID

	if err := s.subjects.Replace(ctx, &subject); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubjectResponse{}, ErrSubjectNotFound
		}
		return dto.SubjectResponse{}, err
	}
	s.cache.Invalidate(ctx, existing.Code)

	return s.Get(ctx, existing.ID)
}

func (s *subjectService) Delete(ctx context.Context, id string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.subjects.Delete(ctx, existing.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubjectNotFound
		}
		return err
	}
	s.cache.Invalidate(ctx, existing.Code)

	s.logger.Info().Str("subject_id", existing.ID).Str("code", existing.Code).Msg("subject deleted")
	return nil
}

// build validates the payload and turns it into a subject without identifier or code.
func (s *subjectService) build(ctx context.Context, payload dto.SubjectRequest) (models.Subject, error) {
	if err := s.validator.Struct(payload); err != nil {
		return models.Subject{}, err
	}

	reference := strings.TrimSpace(s.sanitizer.Sanitize(payload.ReferenceText))
	if reference == "" {
		return models.Subject{}, ErrEmptyContent
	}

	var promptID *string
	if payload.PromptID != nil && strings.TrimSpace(*payload.PromptID) != "" {
		id := strings.TrimSpace(*payload.PromptID)
		if _, err := s.policies.GetByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.Subject{}, ErrPolicyNotFound
			}
			return models.Subject{}, err
		}
		promptID = &id
	}

	subject := models.Subject{ReferenceText: reference, PromptID: promptID}
	for i, question := range payload.Questions {
		text := strings.TrimSpace(question.QuestionText)
		guidelines := strings.TrimSpace(question.ExpectedAnswerGuidelines)
		if text == "" || guidelines == "" {
			return models.Subject{}, ErrEmptyContent
		}
		subject.Questions = append(subject.Questions, models.Question{
			QuestionText:             text,
			ExpectedAnswerGuidelines: guidelines,
			DisplayOrder:             i + 1,
		})
	}

	return subject, nil
}

func (s *subjectService) find(ctx context.Context, id string) (models.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Subject{}, ErrSubjectNotFound
		}
		return models.Subject{}, err
	}
	return subject, nil
}
