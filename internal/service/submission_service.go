package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/models"
	"github.com/noah-isme/correcteur-api/internal/observability"
	"github.com/noah-isme/correcteur-api/internal/repository"
	"github.com/noah-isme/correcteur-api/pkg/ai"
	"github.com/noah-isme/correcteur-api/pkg/grading"
)

// DegradedFeedback replaces the model feedback when an answer could not be graded.
const DegradedFeedback = "L'analyse IA est temporairement indisponible."

// SubmissionService records student answers and grades them.
type SubmissionService interface {
	Submit(ctx context.Context, payload dto.SubmitAnswerRequest) (dto.SubmitAnswerResponse, error)
	Get(ctx context.Context, id string) (dto.SubmissionResponse, error)
}

// SubmissionServiceConfig tunes grading.
type SubmissionServiceConfig struct {
	AcceptanceThreshold int
}

type submissionService struct {
	subjects    repository.SubjectRepository
	submissions repository.SubmissionRepository
	resolver    *grading.Resolver
	invoker     ai.Invoker
	parser      *grading.VerdictParser
	events      AnswerEventPublisher
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	config      SubmissionServiceConfig
	now         func() time.Time
}

// NewSubmissionService wires the grading pipeline. events may be nil.
func NewSubmissionService(subjects repository.SubjectRepository, submissions repository.SubmissionRepository, resolver *grading.Resolver, invoker ai.Invoker, parser *grading.VerdictParser, events AnswerEventPublisher, validate *validator.Validate, logger zerolog.Logger, cfg SubmissionServiceConfig) SubmissionService {
	return &submissionService{
		subjects:    subjects,
		submissions: submissions,
		resolver:    resolver,
		invoker:     invoker,
		parser:      parser,
		events:      events,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/correcteur-api/internal/service/submission"),
		config:      cfg,
		now:         time.Now,
	}
}

// gradeOutcome is the result of running one answer through the model.
type gradeOutcome struct {
	verdict *grading.Verdict
	model   string
}

func (s *submissionService) Submit(ctx context.Context, payload dto.SubmitAnswerRequest) (dto.SubmitAnswerResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitAnswerResponse{}, err
	}
	studentName := strings.TrimSpace(payload.StudentName)
	if studentName == "" || strings.TrimSpace(payload.StudentAnswer) == "" {
		return dto.SubmitAnswerResponse{}, ErrEmptyContent
	}

	ctx, span := s.tracer.Start(ctx, "grading.submit", trace.WithAttributes(
		attribute.String("subject.id", payload.SubjectID),
		attribute.String("question.id", payload.QuestionID),
	))
	defer span.End()

	start := s.now()

	subject, err := s.subjects.GetByID(ctx, payload.SubjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitAnswerResponse{}, ErrSubjectNotFound
		}
		span.RecordError(err)
		return dto.SubmitAnswerResponse{}, err
	}

	question, ok := subject.QuestionByID(payload.QuestionID)
	if !ok {
		return dto.SubmitAnswerResponse{}, ErrQuestionNotFound
	}

	submissionID, err := s.openSubmission(ctx, subject.ID, studentName, payload.SubmissionID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmitAnswerResponse{}, err
	}
	span.SetAttributes(attribute.String("submission.id", submissionID))

	outcome := s.grade(ctx, subject, question, payload.StudentAnswer)

	answer := models.Answer{
		SubmissionID:  submissionID,
		QuestionID:    question.ID,
		StudentAnswer: payload.StudentAnswer,
		Model:         outcome.model,
	}

	response := dto.SubmitAnswerResponse{
		SubmissionID: submissionID,
		QuestionID:   question.ID,
	}

	if outcome.verdict != nil {
		score := outcome.verdict.Score
		feedback := outcome.verdict.Feedback
		accepted := outcome.verdict.Accepted(s.config.AcceptanceThreshold)

		answer.Status = models.AnswerStatusGraded
		answer.Score = &score
		answer.AIFeedback = &feedback
		answer.IsValid = &accepted
		if encoded, err := json.Marshal(outcome.verdict); err == nil {
			answer.Verdict = datatypes.JSON(encoded)
		}

		response.Score = &score
		response.Feedback = feedback
		response.IsValid = &accepted
	} else {
		feedback := DegradedFeedback
		answer.Status = models.AnswerStatusDegraded
		answer.AIFeedback = &feedback
		response.Feedback = feedback
	}
	response.Status = answer.Status

	if err := s.submissions.CreateAnswer(ctx, &answer); err != nil {
		s.logger.Error().Err(err).Str("submission_id", submissionID).Str("question_id", question.ID).Msg("failed to store answer")
		span.RecordError(err)
		span.SetStatus(codes.Error, "persistence failed")
		return dto.SubmitAnswerResponse{}, err
	}

	observability.GradingOutcomes().WithLabelValues(answer.Status, answer.Model).Inc()
	observability.GradingLatency().WithLabelValues(answer.Status).Observe(s.now().Sub(start).Seconds())
	span.SetAttributes(attribute.String("answer.status", answer.Status))
	span.SetStatus(codes.Ok, answer.Status)

	s.publish(ctx, subject.ID, answer)

	return response, nil
}

// openSubmission reuses the presented submission or creates one on the first answer of a session.
func (s *submissionService) openSubmission(ctx context.Context, subjectID, studentName string, presented *string) (string, error) {
	if presented != nil && strings.TrimSpace(*presented) != "" {
		existing, err := s.submissions.GetByID(ctx, strings.TrimSpace(*presented))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", ErrSubmissionMismatch
			}
			return "", err
		}
		if existing.SubjectID != subjectID {
			return "", ErrSubmissionMismatch
		}
		return existing.ID, nil
	}

	submission := models.Submission{SubjectID: subjectID, StudentName: studentName}
	if err := s.submissions.Create(ctx, &submission); err != nil {
		s.logger.Error().Err(err).Str("subject_id", subjectID).Msg("failed to open submission")
		return "", err
	}
	return submission.ID, nil
}

// grade runs resolve, compile, invoke and parse. A nil verdict means the answer is degraded.
func (s *submissionService) grade(ctx context.Context, subject models.Subject, question models.Question, studentAnswer string) gradeOutcome {
	resolution := s.resolver.Resolve(ctx, subject.PromptID)
	if resolution.Fallback {
		observability.PolicyFallbacks().Inc()
	}
	policy := resolution.Policy

	prompt := grading.Compile(policy.Template, grading.Vars{
		QuestionID:               question.ID,
		ReferenceText:            subject.ReferenceText,
		QuestionText:             question.QuestionText,
		ExpectedAnswerGuidelines: question.ExpectedAnswerGuidelines,
		StudentAnswer:            studentAnswer,
	})

	outcome := gradeOutcome{model: policy.Model}
	logger := s.logger.With().
		Str("subject_id", subject.ID).
		Str("question_id", question.ID).
		Str("model", policy.Model).
		Bool("default_policy", policy.IsDefault()).
		Logger()

	raw, err := s.invoker.Invoke(ctx, ai.Request{Model: policy.Model, Prompt: prompt})
	if err != nil {
		logger.Warn().Err(err).Msg("evaluation unavailable, storing degraded answer")
		return outcome
	}
	verdict, err := s.parser.Parse(raw)
	if err != nil {
		logger.Warn().Err(err).Msg("malformed verdict, storing degraded answer")
		return outcome
	}

	if verdict.QuestionID != question.ID {
		logger.Warn().Str("verdict_question_id", verdict.QuestionID).Msg("verdict question id mismatch, keeping requested id")
		verdict.QuestionID = question.ID
	}

	outcome.verdict = &verdict
	return outcome
}

func (s *submissionService) publish(ctx context.Context, subjectID string, answer models.Answer) {
	if s.events == nil {
		return
	}

	event := AnswerEvent{
		AnswerID:     answer.ID,
		SubmissionID: answer.SubmissionID,
		SubjectID:    subjectID,
		QuestionID:   answer.QuestionID,
		Status:       answer.Status,
		Score:        answer.Score,
		Model:        answer.Model,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.events.PublishAnswer(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("answer_id", answer.ID).Msg("failed to publish answer event")
	}
}

func (s *submissionService) Get(ctx context.Context, id string) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}
	return dto.NewSubmissionResponse(submission), nil
}
