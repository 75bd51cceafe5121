package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/noah-isme/correcteur-api/internal/config"
	"github.com/noah-isme/correcteur-api/internal/database"
	"github.com/noah-isme/correcteur-api/internal/dto"
	"github.com/noah-isme/correcteur-api/internal/handler"
	"github.com/noah-isme/correcteur-api/internal/middleware"
	"github.com/noah-isme/correcteur-api/internal/repository"
	"github.com/noah-isme/correcteur-api/internal/router"
	"github.com/noah-isme/correcteur-api/internal/service"
	"github.com/noah-isme/correcteur-api/pkg/ai"
	"github.com/noah-isme/correcteur-api/pkg/codegen"
	"github.com/noah-isme/correcteur-api/pkg/grading"
)

type scriptedInvoker struct {
	mu      sync.Mutex
	respond func(req ai.Request) (string, error)
	calls   int
}

func (s *scriptedInvoker) Invoke(_ context.Context, req ai.Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.respond == nil {
		return "", ai.ErrEvaluationUnavailable
	}
	return s.respond(req)
}

func (s *scriptedInvoker) set(respond func(req ai.Request) (string, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond = respond
}

type stubExtractor struct {
	html string
	err  error
}

func (s stubExtractor) Extract(context.Context, []byte, string) (string, error) {
	return s.html, s.err
}

type testApp struct {
	app     *fiber.App
	db      *gorm.DB
	invoker *scriptedInvoker
}

type appOptions struct {
	realAuth  bool
	submitMax int
	extractor service.ReferenceExtractor
	uploadMax int64
}

const testJWTSecret = "handler-test-secret"

func setupApp(t *testing.T, opts appOptions) testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	logger := zerolog.Nop()
	validate := dto.NewValidator()
	invoker := &scriptedInvoker{}
	parser := grading.NewVerdictParser()

	policyRepo := repository.NewPolicyRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)

	resolver := grading.NewResolver(service.NewPolicySource(policyRepo), grading.DefaultPolicy(), logger)

	policyService := service.NewPolicyService(policyRepo, invoker, parser, grading.DefaultAcceptanceThreshold, validate, logger)
	subjectService := service.NewSubjectService(subjectRepo, policyRepo, codegen.New(nil), service.NewSubjectCache(nil, time.Minute, logger), validate, logger, service.SubjectServiceConfig{})
	submissionService := service.NewSubmissionService(subjectRepo, submissionRepo, resolver, invoker, parser, nil, validate, logger, service.SubmissionServiceConfig{AcceptanceThreshold: grading.DefaultAcceptanceThreshold})
	extractionService := service.NewExtractionService(opts.extractor, opts.uploadMax, logger)

	cfg := config.Config{AppName: "Correcteur Test", AppEnv: "test", JWTSecret: testJWTSecret, AIProvider: "gemini"}

	deps := router.Dependencies{
		PolicyHandler:     handler.NewPolicyHandler(policyService, logger),
		SubjectHandler:    handler.NewSubjectHandler(subjectService, logger),
		StudentHandler:    handler.NewStudentHandler(subjectService, submissionService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		ReferenceHandler:  handler.NewReferenceHandler(extractionService, logger),
	}
	if !opts.realAuth {
		deps.JWTMiddleware = func(c *fiber.Ctx) error {
			c.Locals(middleware.LocalUserID, "teacher-1")
			c.Locals(middleware.LocalUserRole, middleware.RoleTeacher)
			return c.Next()
		}
	}
	if opts.submitMax > 0 {
		deps.SubmitLimiter = middleware.RateLimit("submit", opts.submitMax, time.Minute)
	}

	app := fiber.New()
	middleware.Register(app, middleware.Config{Logger: logger})
	router.Register(app, cfg, deps)

	return testApp{app: app, db: db, invoker: invoker}
}

func (a testApp) do(t *testing.T, method, path string, payload interface{}) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

type envelope[T any] struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    T               `json:"data"`
	Details json.RawMessage `json:"details"`
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, json.Unmarshal(body, target))
}

func subjectBody(reference string) map[string]interface{} {
	questions := make([]map[string]string, 0, 4)
	for _, text := range []string{"Qui ?", "Quoi ?", "Ou ?", "Quand ?"} {
		questions = append(questions, map[string]string{
			"question_text":              text,
			"expected_answer_guidelines": "Reponse attendue pour " + text,
		})
	}
	return map[string]interface{}{
		"reference_text": reference,
		"questions":      questions,
	}
}

func createSubject(t *testing.T, a testApp) dto.SubjectResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/admin/subjects", subjectBody("<p>Le texte de reference</p>"))
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created envelope[dto.SubjectResponse]
	decodeResponse(t, resp, &created)
	require.True(t, created.Success)
	return created.Data
}
