package handler_test

import (
	"io"
	"math"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func p95(durations []time.Duration) time.Duration {
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	index := int(math.Ceil(0.95*float64(len(durations)))) - 1
	if index < 0 {
		index = 0
	}
	return durations[index]
}

func TestStudentSubjectLookupP95LatencyBelow250ms(t *testing.T) {
	if testing.Short() {
		t.Skip("latency check skipped in short mode")
	}

	a := setupApp(t, appOptions{})
	subject := createSubject(t, a)

	runs := 40
	durations := make([]time.Duration, 0, runs)
	for i := 0; i < runs; i++ {
		start := time.Now()
		resp := a.do(t, http.MethodGet, "/api/subjects/code/"+subject.Code, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	require.LessOrEqual(t, p95(durations), 250*time.Millisecond)
}

func TestDegradedSubmitP95LatencyBelow250ms(t *testing.T) {
	if testing.Short() {
		t.Skip("latency check skipped in short mode")
	}

	a := setupApp(t, appOptions{})
	subject := createSubject(t, a)
	body := map[string]interface{}{
		"subject_id":     subject.ID,
		"student_name":   "Lea",
		"question_id":    subject.Questions[0].ID,
		"student_answer": "Reponse",
	}

	runs := 40
	durations := make([]time.Duration, 0, runs)
	for i := 0; i < runs; i++ {
		start := time.Now()
		resp := a.do(t, http.MethodPost, "/api/submit", body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	require.LessOrEqual(t, p95(durations), 250*time.Millisecond)
}
