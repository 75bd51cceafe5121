package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/repository"
	"github.com/noah-isme/correcteur-api/pkg/ai"
	"github.com/noah-isme/correcteur-api/pkg/grading"
)

func newPolicyService(t *testing.T, invoker ai.Invoker) PolicyService {
	t.Helper()
	repo := repository.NewPolicyRepository(setupTestDB(t))
	return NewPolicyService(repo, invoker, grading.NewVerdictParser(), grading.DefaultAcceptanceThreshold, dto.NewValidator(), zerolog.Nop())
}

func TestPolicyServiceCRUD(t *testing.T) {
	svc := newPolicyService(t, &stubInvoker{})
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.PolicyRequest{Name: "  Philosophie ", Template: "Evalue {{studentAnswer}}", Model: grading.ModelGemini25Pro})
	require.NoError(t, err)
	require.Equal(t, "Philosophie", created.Name)

	updated, err := svc.Update(ctx, created.ID, dto.PolicyRequest{Name: "Philo", Template: "Note {{studentAnswer}}", Model: grading.ModelGPT4o})
	require.NoError(t, err)
	require.Equal(t, grading.ModelGPT4o, updated.Model)

	fetched, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Note {{studentAnswer}}", fetched.Template)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrPolicyNotFound)
	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrPolicyNotFound)
}

func TestPolicyServiceRejectsInvalidPolicies(t *testing.T) {
	svc := newPolicyService(t, &stubInvoker{})
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.PolicyRequest{Name: "X", Template: "T", Model: "llama-3"})
	var validationErrs validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrs))

	_, err = svc.Create(ctx, dto.PolicyRequest{Name: "X", Template: "   ", Model: grading.ModelGPT4o})
	require.ErrorIs(t, err, ErrEmptyContent)

	_, err = svc.Update(ctx, uuid.NewString(), dto.PolicyRequest{Name: "X", Template: "T", Model: grading.ModelGPT4o})
	require.ErrorIs(t, err, ErrPolicyNotFound)
}

func TestPolicyServiceRefusesDeletingPolicyInUse(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewPolicyRepository(db)
	svc := NewPolicyService(repo, &stubInvoker{}, grading.NewVerdictParser(), 50, dto.NewValidator(), zerolog.Nop())

	created, err := svc.Create(context.Background(), dto.PolicyRequest{Name: "Maths", Template: "T", Model: grading.ModelGemini20Flash})
	require.NoError(t, err)
	seedSubject(t, db, "arbre-avion-12", &created.ID)

	err = svc.Delete(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrPolicyInUse)

	_, err = svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
}

func TestPolicyServiceDryRun(t *testing.T) {
	invoker := &stubInvoker{response: `{"question_id": "question-test", "score": 55, "feedback": "Il manque le CO2."}`}
	svc := newPolicyService(t, invoker)

	result, err := svc.Test(context.Background(), dto.PolicyTestRequest{
		Template:      "Ref: {{referenceText}} / Eleve: {{studentAnswer}}",
		Model:         grading.ModelGemini25Flash,
		StudentAnswer: "Du soleil",
	})
	require.NoError(t, err)
	require.Equal(t, 55, result.Score)
	require.True(t, result.IsValid)
	require.Contains(t, result.CompiledPrompt, "Eleve: Du soleil")
	require.Contains(t, result.CompiledPrompt, "Ref: La photosynthese")
	require.Equal(t, grading.ModelGemini25Flash, invoker.last(t).Model)
}

func TestPolicyServiceDryRunSurfacesFailures(t *testing.T) {
	invoker := &stubInvoker{err: ai.ErrEvaluationUnavailable}
	svc := newPolicyService(t, invoker)
	request := dto.PolicyTestRequest{Template: "{{studentAnswer}}", Model: grading.ModelGPT4oMini}

	_, err := svc.Test(context.Background(), request)
	require.ErrorIs(t, err, ai.ErrEvaluationUnavailable)

	invoker.err = nil
	invoker.response = "pas de json"
	_, err = svc.Test(context.Background(), request)
	require.ErrorIs(t, err, grading.ErrMalformedVerdict)
}

func TestPolicySourceMapsMissingRows(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewPolicyRepository(db)
	source := NewPolicySource(repo)

	_, err := source.FindPolicy(context.Background(), uuid.NewString())
	require.ErrorIs(t, err, grading.ErrPolicyNotFound)

	svc := NewPolicyService(repo, &stubInvoker{}, grading.NewVerdictParser(), 50, dto.NewValidator(), zerolog.Nop())
	created, err := svc.Create(context.Background(), dto.PolicyRequest{Name: "Eco", Template: "T {{questionText}}", Model: grading.ModelGPT4o})
	require.NoError(t, err)

	policy, err := source.FindPolicy(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "T {{questionText}}", policy.Template)
	require.Equal(t, grading.ModelGPT4o, policy.Model)
	require.False(t, policy.IsDefault())
}
