package service

import (
	"context"
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/models"
	"github.com/noah-isme/correcteur-api/internal/repository"
	"github.com/noah-isme/correcteur-api/pkg/codegen"
)

var codePattern = regexp.MustCompile(`^[a-z]+-[a-z]+-\d{2}$`)

type takenCodes struct {
	repository.SubjectRepository
}

func (takenCodes) CodeExists(context.Context, string) (bool, error) {
	return true, nil
}

func newSubjectService(t *testing.T, db *gorm.DB, subjects repository.SubjectRepository) (SubjectService, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewSubjectCache(client, time.Minute, zerolog.Nop())
	svc := NewSubjectService(subjects, repository.NewPolicyRepository(db), codegen.New(rand.NewPCG(7, 11)), cache, dto.NewValidator(), zerolog.Nop(), SubjectServiceConfig{CodeAttempts: 5})
	return svc, mini
}

func subjectPayload(reference string) dto.SubjectRequest {
	payload := dto.SubjectRequest{ReferenceText: reference}
	for i := 1; i <= models.QuestionsPerSubject; i++ {
		payload.Questions = append(payload.Questions, dto.QuestionRequest{
			QuestionText:             "  Question " + string(rune('0'+i)) + "  ",
			ExpectedAnswerGuidelines: "Guide",
		})
	}
	return payload
}

func TestSubjectServiceCreateGeneratesCodeAndOrdersQuestions(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newSubjectService(t, db, repository.NewSubjectRepository(db))

	created, err := svc.Create(context.Background(), subjectPayload(`<p>Texte <strong>important</strong></p><script>alert(1)</script>`))
	require.NoError(t, err)
	require.Regexp(t, codePattern, created.Code)
	require.Equal(t, `<p>Texte <strong>important</strong></p>`, created.ReferenceText)
	require.Nil(t, created.PromptID)
	require.Len(t, created.Questions, models.QuestionsPerSubject)
	for i, question := range created.Questions {
		require.Equal(t, i+1, question.DisplayOrder)
		require.Equal(t, "Question "+string(rune('1'+i)), question.QuestionText)
	}

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestSubjectServiceCreateValidatesPolicyAndContent(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newSubjectService(t, db, repository.NewSubjectRepository(db))

	payload := subjectPayload("<p>Texte</p>")
	missing := uuid.NewString()
	payload.PromptID = &missing
	_, err := svc.Create(context.Background(), payload)
	require.ErrorIs(t, err, ErrPolicyNotFound)

	_, err = svc.Create(context.Background(), subjectPayload("<script>only</script>"))
	require.ErrorIs(t, err, ErrEmptyContent)

	payload = subjectPayload("<p>Texte</p>")
	payload.Questions = payload.Questions[:2]
	_, err = svc.Create(context.Background(), payload)
	require.Error(t, err)

	policy := models.GradingPolicy{Name: "Lettres", Template: "{{studentAnswer}}", Model: "gemini-2.5-pro"}
	require.NoError(t, db.Create(&policy).Error)
	payload = subjectPayload("<p>Texte</p>")
	payload.PromptID = &policy.ID
	created, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)
	require.Equal(t, policy.ID, *created.PromptID)
}

func TestSubjectServiceCreateFailsWhenCodesExhausted(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newSubjectService(t, db, takenCodes{SubjectRepository: repository.NewSubjectRepository(db)})

	_, err := svc.Create(context.Background(), subjectPayload("<p>Texte</p>"))
	require.ErrorIs(t, err, codegen.ErrAttemptsExhausted)

	var count int64
	require.NoError(t, db.Model(&models.Subject{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestSubjectServiceGetByCodeCachesStudentView(t *testing.T) {
	db := setupTestDB(t)
	svc, mini := newSubjectService(t, db, repository.NewSubjectRepository(db))

	created, err := svc.Create(context.Background(), subjectPayload("<p>Texte</p>"))
	require.NoError(t, err)

	view, err := svc.GetByCode(context.Background(), "  "+created.Code+" ")
	require.NoError(t, err)
	require.Equal(t, created.ID, view.ID)
	require.Len(t, view.Questions, models.QuestionsPerSubject)
	require.True(t, mini.Exists("subject:code:"+created.Code))

	require.NoError(t, db.Exec("UPDATE subjects SET reference_text = ? WHERE id = ?", "<p>Direct</p>", created.ID).Error)
	cached, err := svc.GetByCode(context.Background(), created.Code)
	require.NoError(t, err)
	require.Equal(t, "<p>Texte</p>", cached.ReferenceText)

	_, err = svc.Update(context.Background(), created.ID, subjectPayload("<p>Nouveau</p>"))
	require.NoError(t, err)
	require.False(t, mini.Exists("subject:code:"+created.Code))

	fresh, err := svc.GetByCode(context.Background(), created.Code)
	require.NoError(t, err)
	require.Equal(t, "<p>Nouveau</p>", fresh.ReferenceText)

	_, err = svc.GetByCode(context.Background(), "inconnu-code-00")
	require.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestSubjectServiceUpdateReplacesQuestions(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newSubjectService(t, db, repository.NewSubjectRepository(db))

	created, err := svc.Create(context.Background(), subjectPayload("<p>Texte</p>"))
	require.NoError(t, err)

	payload := subjectPayload("<p>Autre</p>")
	payload.Questions[0].QuestionText = "Premiere"
	updated, err := svc.Update(context.Background(), created.ID, payload)
	require.NoError(t, err)
	require.Equal(t, created.Code, updated.Code)
	require.Equal(t, "Premiere", updated.Questions[0].QuestionText)
	require.NotEqual(t, created.Questions[0].ID, updated.Questions[0].ID)

	_, err = svc.Update(context.Background(), uuid.NewString(), payload)
	require.ErrorIs(t, err, ErrSubjectNotFound)
}

func TestSubjectServiceDeleteInvalidatesCache(t *testing.T) {
	db := setupTestDB(t)
	svc, mini := newSubjectService(t, db, repository.NewSubjectRepository(db))

	created, err := svc.Create(context.Background(), subjectPayload("<p>Texte</p>"))
	require.NoError(t, err)
	_, err = svc.GetByCode(context.Background(), created.Code)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	require.False(t, mini.Exists("subject:code:"+created.Code))

	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrSubjectNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrSubjectNotFound)
}

func TestSubjectCacheWithoutClientIsNoop(t *testing.T) {
	cache := NewSubjectCache(nil, 0, zerolog.Nop())
	cache.Set(context.Background(), "a-b-10", dto.StudentSubjectResponse{ID: "x"})
	_, ok := cache.Get(context.Background(), "a-b-10")
	require.False(t, ok)
	cache.Invalidate(context.Background(), "a-b-10")
}
