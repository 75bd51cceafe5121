package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/correcteur-api/internal/models"
	"github.com/noah-isme/correcteur-api/pkg/ai"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.GradingPolicy{}, &models.Subject{}, &models.Question{}, &models.Submission{}, &models.Answer{}))
	return db
}

func seedSubject(t *testing.T, db *gorm.DB, code string, promptID *string) models.Subject {
	t.Helper()
	subject := models.Subject{Code: code, ReferenceText: "Le texte de reference.", PromptID: promptID}
	for i := 1; i <= models.QuestionsPerSubject; i++ {
		subject.Questions = append(subject.Questions, models.Question{
			QuestionText:             "Question " + string(rune('0'+i)),
			ExpectedAnswerGuidelines: "Guide " + string(rune('0'+i)),
			DisplayOrder:             i,
		})
	}
	require.NoError(t, db.Create(&subject).Error)
	subject.SortQuestions()
	return subject
}

type stubInvoker struct {
	mu       sync.Mutex
	response string
	err      error
	requests []ai.Request
}

func (s *stubInvoker) Invoke(_ context.Context, req ai.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.response, s.err
}

func (s *stubInvoker) last(t *testing.T) ai.Request {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []AnswerEvent
	err    error
}

func (p *recordingPublisher) PublishAnswer(_ context.Context, event AnswerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}
