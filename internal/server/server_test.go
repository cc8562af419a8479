package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laknarayana9/AgenticUnderwriting/internal/model"
	"github.com/laknarayana9/AgenticUnderwriting/internal/retrieval"
	"github.com/laknarayana9/AgenticUnderwriting/internal/store"
	"github.com/laknarayana9/AgenticUnderwriting/internal/tools"
	"github.com/laknarayana9/AgenticUnderwriting/internal/workflow"
)

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	docs, err := retrieval.DefaultDocuments()
	require.NoError(t, err)
	guidelines := retrieval.NewEngine()
	_, err = guidelines.Ingest(docs)
	require.NoError(t, err)

	normalize := tools.NewAddressNormalizer()
	hazard := tools.NewHazardScorer()
	rater := tools.NewRatingTool()

	basic := workflow.New(workflow.ModeBasic, normalize, hazard, guidelines, rater)
	interactive := workflow.New(workflow.ModeInteractive, normalize, hazard, guidelines, rater)

	return New(st, basic, interactive, workflow.ModeInteractive, guidelines), st
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func getPath(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeRecord(t *testing.T, rr *httptest.ResponseRecorder) model.RunRecord {
	t.Helper()
	var rec model.RunRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	return rec
}

func completeSubmission() model.QuoteSubmission {
	year := 2015
	sqft := 2200.0
	return model.QuoteSubmission{
		ApplicantName:    "Jane Doe",
		Address:          "1200 J Street, Sacramento, CA 95814",
		PropertyType:     "single_family",
		CoverageAmount:   300000,
		ConstructionYear: &year,
		SquareFootage:    &sqft,
		RoofType:         "composite shingle",
		FoundationType:   "slab",
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rr := getPath(t, s.Router(), "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"ok"`)
}

func TestSubmitQuoteComplete(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	rr := postJSON(t, router, "/api/v1/quotes", quoteRequest{Submission: completeSubmission()})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rec := decodeRecord(t, rr)
	assert.NotEmpty(t, rec.RunID)
	assert.Equal(t, model.RunStatusCompleted, rec.Status)
	require.NotNil(t, rec.WorkflowState.Decision)
	assert.Equal(t, model.DecisionAccept, rec.WorkflowState.Decision.Decision)
	require.NotNil(t, rec.WorkflowState.PremiumBreakdown)
	assert.Greater(t, rec.WorkflowState.PremiumBreakdown.TotalPremium, 0.0)

	// Run is persisted and retrievable.
	rr = getPath(t, router, "/api/v1/runs/"+rec.RunID)
	assert.Equal(t, http.StatusOK, rr.Code)
	fetched := decodeRecord(t, rr)
	assert.Equal(t, rec.RunID, fetched.RunID)
}

func TestSubmitQuoteInvalidBody(t *testing.T) {
	s, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSubmitQuoteBadMode(t *testing.T) {
	s, _ := newTestServer(t)
	rr := postJSON(t, s.Router(), "/api/v1/quotes", quoteRequest{
		Submission: completeSubmission(),
		Mode:       "autonomous",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "mode must be")
}

func TestSubmitQuoteIncompleteBasicMode(t *testing.T) {
	s, _ := newTestServer(t)

	sub := model.QuoteSubmission{
		ApplicantName: "John Smith",
		Address:       "500 Main St, Fresno, CA 93721",
		PropertyType:  "single_family",
		// coverage, construction year and square footage missing
	}

	rr := postJSON(t, s.Router(), "/api/v1/quotes", quoteRequest{Submission: sub, Mode: "basic"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rec := decodeRecord(t, rr)
	assert.Equal(t, model.RunStatusWaitingForInfo, rec.Status)
	require.NotNil(t, rec.WorkflowState.Decision)
	assert.Equal(t, model.DecisionRefer, rec.WorkflowState.Decision.Decision)
	assert.NotEmpty(t, rec.WorkflowState.Decision.RequiredQuestions)
}

func TestAnswersRoundTrip(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	sub := completeSubmission()
	sub.ConstructionYear = nil

	rr := postJSON(t, router, "/api/v1/quotes", quoteRequest{Submission: sub})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rec := decodeRecord(t, rr)
	require.Equal(t, model.RunStatusWaitingForInfo, rec.Status)

	rr = postJSON(t, router, fmt.Sprintf("/api/v1/quotes/%s/answers", rec.RunID), answersRequest{
		Answers: map[string]any{"construction_year": 1995},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resumed := decodeRecord(t, rr)
	assert.Equal(t, rec.RunID, resumed.RunID)
	assert.Equal(t, model.RunStatusCompleted, resumed.Status)
	require.NotNil(t, resumed.WorkflowState.QuoteSubmission.ConstructionYear)
	assert.Equal(t, 1995, *resumed.WorkflowState.QuoteSubmission.ConstructionYear)

	// A completed run cannot take further answers.
	rr = postJSON(t, router, fmt.Sprintf("/api/v1/quotes/%s/answers", rec.RunID), answersRequest{
		Answers: map[string]any{"construction_year": 2000},
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestAnswersUnknownRun(t *testing.T) {
	s, _ := newTestServer(t)
	rr := postJSON(t, s.Router(), "/api/v1/quotes/does-not-exist/answers", answersRequest{
		Answers: map[string]any{"construction_year": 1995},
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAnswersEmptyBody(t *testing.T) {
	s, _ := newTestServer(t)
	rr := postJSON(t, s.Router(), "/api/v1/quotes/some-run/answers", answersRequest{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "answers are required")
}

func TestListRuns(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	for i := 0; i < 3; i++ {
		sub := completeSubmission()
		sub.ApplicantName = fmt.Sprintf("Applicant %d", i)
		rr := postJSON(t, router, "/api/v1/quotes", quoteRequest{Submission: sub})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := getPath(t, router, "/api/v1/runs")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Runs  []model.RunRecord `json:"runs"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Count)

	// Status filter excludes completed runs.
	rr = getPath(t, router, "/api/v1/runs?status=failed")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)

	// Limit caps the page.
	rr = getPath(t, router, "/api/v1/runs?limit=2")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestListRunsBadParams(t *testing.T) {
	s, _ := newTestServer(t)
	router := s.Router()

	rr := getPath(t, router, "/api/v1/runs?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = getPath(t, router, "/api/v1/runs?offset=-1")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetRunNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	rr := getPath(t, s.Router(), "/api/v1/runs/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGuidelines(t *testing.T) {
	s, _ := newTestServer(t)
	rr := getPath(t, s.Router(), "/api/v1/guidelines")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Documents   map[string]retrieval.DocSummary `json:"documents"`
		TotalChunks int                             `json:"total_chunks"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Documents)
	assert.Greater(t, resp.TotalChunks, 0)
	assert.Contains(t, resp.Documents, "property_eligibility")
}
