package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/models"
	"github.com/noah-isme/correcteur-api/internal/repository"
	"github.com/noah-isme/correcteur-api/pkg/ai"
	"github.com/noah-isme/correcteur-api/pkg/grading"
)

// Sample values used by the policy dry run when the caller leaves them blank.
const (
	sampleQuestionID    = "question-test"
	sampleReferenceText = "La photosynthese permet aux plantes de produire du glucose a partir de lumiere, d'eau et de dioxyde de carbone."
	sampleQuestionText  = "Quels sont les elements necessaires a la photosynthese ?"
	sampleGuidelines    = "Citer la lumiere, l'eau et le dioxyde de carbone."
	sampleStudentAnswer = "Il faut du soleil et de l'eau."
)

// PolicyService manages grading policies.
type PolicyService interface {
	List(ctx context.Context) ([]dto.PolicyResponse, error)
	Get(ctx context.Context, id string) (dto.PolicyResponse, error)
	Create(ctx context.Context, payload dto.PolicyRequest) (dto.PolicyResponse, error)
	Update(ctx context.Context, id string, payload dto.PolicyRequest) (dto.PolicyResponse, error)
	Delete(ctx context.Context, id string) error
	Test(ctx context.Context, payload dto.PolicyTestRequest) (dto.PolicyTestResponse, error)
}

type policyService struct {
	repo      repository.PolicyRepository
	invoker   ai.Invoker
	parser    *grading.VerdictParser
	threshold int
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewPolicyService constructs the policy service. invoker and parser are only used by Test.
func NewPolicyService(repo repository.PolicyRepository, invoker ai.Invoker, parser *grading.VerdictParser, threshold int, validate *validator.Validate, logger zerolog.Logger) PolicyService {
	return &policyService{
		repo:      repo,
		invoker:   invoker,
		parser:    parser,
		threshold: threshold,
		validator: validate,
		logger:    logger.With().Str("component", "policy_service").Logger(),
	}
}

func (s *policyService) List(ctx context.Context) ([]dto.PolicyResponse, error) {
	policies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewPolicyResponseSlice(policies), nil
}

func (s *policyService) Get(ctx context.Context, id string) (dto.PolicyResponse, error) {
	policy, err := s.find(ctx, id)
	if err != nil {
		return dto.PolicyResponse{}, err
	}
	return dto.NewPolicyResponse(policy), nil
}

func (s *policyService) Create(ctx context.Context, payload dto.PolicyRequest) (dto.PolicyResponse, error) {
	payload, err := s.normalize(payload)
	if err != nil {
		return dto.PolicyResponse{}, err
	}

	policy := models.GradingPolicy{Name: payload.Name, Template: payload.Template, Model: payload.Model}
	if err := s.repo.Create(ctx, &policy); err != nil {
		return dto.PolicyResponse{}, err
	}

	s.logger.Info().Str("policy_id", policy.ID).Str("model", policy.Model).Msg("grading policy created")
	return dto.NewPolicyResponse(policy), nil
}

func (s *policyService) Update(ctx context.Context, id string, payload dto.PolicyRequest) (dto.PolicyResponse, error) {
	payload, err := s.normalize(payload)
	if err != nil {
		return dto.PolicyResponse{}, err
	}

	policy, err := s.find(ctx, id)
	if err != nil {
		return dto.PolicyResponse{}, err
	}

	policy.Name = payload.Name
	policy.Template = payload.Template
	policy.Model = payload.Model
	if err := s.repo.Update(ctx, &policy); err != nil {
		return dto.PolicyResponse{}, err
	}

	return dto.NewPolicyResponse(policy), nil
}

func (s *policyService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	count, err := s.repo.CountSubjectsUsing(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: %d subject(s)", ErrPolicyInUse, count)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPolicyNotFound
		}
		return err
	}
	return nil
}

// Test compiles an unsaved template and runs it once through the model. Nothing is persisted.
func (s *policyService) Test(ctx context.Context, payload dto.PolicyTestRequest) (dto.PolicyTestResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.PolicyTestResponse{}, err
	}
	if strings.TrimSpace(payload.Template) == "" {
		return dto.PolicyTestResponse{}, ErrEmptyContent
	}

	prompt := grading.Compile(payload.Template, grading.Vars{
		QuestionID:               sampleQuestionID,
		ReferenceText:            orDefault(payload.ReferenceText, sampleReferenceText),
		QuestionText:             orDefault(payload.QuestionText, sampleQuestionText),
		ExpectedAnswerGuidelines: orDefault(payload.ExpectedAnswerGuidelines, sampleGuidelines),
		StudentAnswer:            orDefault(payload.StudentAnswer, sampleStudentAnswer),
	})

	raw, err := s.invoker.Invoke(ctx, ai.Request{Model: payload.Model, Prompt: prompt})
	if err != nil {
		s.logger.Warn().Err(err).Str("model", payload.Model).Msg("policy dry run invocation failed")
		return dto.PolicyTestResponse{}, err
	}

	verdict, err := s.parser.Parse(raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("model", payload.Model).Msg("policy dry run returned malformed verdict")
		return dto.PolicyTestResponse{}, err
	}

	return dto.PolicyTestResponse{
		Model:          payload.Model,
		CompiledPrompt: prompt,
		Score:          verdict.Score,
		Feedback:       verdict.Feedback,
		IsValid:        verdict.Accepted(s.threshold),
	}, nil
}

func (s *policyService) find(ctx context.Context, id string) (models.GradingPolicy, error) {
	policy, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.GradingPolicy{}, ErrPolicyNotFound
		}
		return models.GradingPolicy{}, err
	}
	return policy, nil
}

func (s *policyService) normalize(payload dto.PolicyRequest) (dto.PolicyRequest, error) {
	payload.Name = strings.TrimSpace(payload.Name)
	payload.Model = strings.TrimSpace(payload.Model)
	if err := s.validator.Struct(payload); err != nil {
		return payload, err
	}
	if strings.TrimSpace(payload.Template) == "" {
		return payload, ErrEmptyContent
	}
	return payload, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

// PolicySource adapts the policy repository to the grading resolver.
type PolicySource struct {
	repo repository.PolicyRepository
}

// NewPolicySource wraps repo.
func NewPolicySource(repo repository.PolicyRepository) *PolicySource {
	return &PolicySource{repo: repo}
}

// FindPolicy loads a stored policy, reporting a missing row as grading.ErrPolicyNotFound.
func (p *PolicySource) FindPolicy(ctx context.Context, id string) (grading.Policy, error) {
	policy, err := p.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return grading.Policy{}, grading.ErrPolicyNotFound
		}
		return grading.Policy{}, err
	}

	return grading.Policy{
		ID:       policy.ID,
		Name:     policy.Name,
		Template: policy.Template,
		Model:    policy.Model,
	}, nil
}
