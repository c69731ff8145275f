package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/manavgup/ragcore/internal/pipeline"
	"github.com/manavgup/ragcore/internal/types"
)

type stubStage struct {
	name string
	run  func(ctx context.Context, sc *types.SearchContext) error
}

func (s *stubStage) Name() string { return s.name }

func (s *stubStage) Run(ctx context.Context, sc *types.SearchContext, next func() error) error {
	if s.run != nil {
		if err := s.run(ctx, sc); err != nil {
			return &pipeline.StageError{Stage: s.name, Err: err, Fatal: true}
		}
	}
	return next()
}

func init() { gin.SetMode(gin.TestMode) }

func TestSearchHandlerReturnsAnswer(t *testing.T) {
	answering := &stubStage{name: "answer", run: func(ctx context.Context, sc *types.SearchContext) error {
		sc.Answer = &types.StructuredAnswer{Answer: "the answer", Confidence: 0.9}
		return nil
	}}
	h := NewSearchHandler(pipeline.NewOrchestrator(answering))

	body, _ := json.Marshal(SearchRequest{CollectionID: "col-1", Query: "what is x"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Set(types.TenantIDContextKey.String(), uint(7))

	h.Search(c)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    SearchResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success || resp.Data.Answer == nil || resp.Data.Answer.Answer != "the answer" {
		t.Fatalf("response = %+v, want success with answer", resp)
	}
}

func TestSearchHandlerRejectsMissingTenant(t *testing.T) {
	h := NewSearchHandler(pipeline.NewOrchestrator())

	body, _ := json.Marshal(SearchRequest{CollectionID: "col-1", Query: "q"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	h.Search(c)

	if len(c.Errors) == 0 {
		t.Fatal("expected an unauthorized error to be attached when tenant id is missing")
	}
}

func TestSearchHandlerRejectsMalformedBody(t *testing.T) {
	h := NewSearchHandler(pipeline.NewOrchestrator())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(rec)
	c.Request = req

	h.Search(c)

	if len(c.Errors) == 0 {
		t.Fatal("expected a bad-request error for malformed JSON")
	}
}

func TestSearchHandlerPropagatesFatalStageError(t *testing.T) {
	failing := &stubStage{name: "boom", run: func(ctx context.Context, sc *types.SearchContext) error {
		return errAny
	}}
	h := NewSearchHandler(pipeline.NewOrchestrator(failing))

	body, _ := json.Marshal(SearchRequest{CollectionID: "col-1", Query: "q"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(rec)
	c.Request = req
	c.Set(types.TenantIDContextKey.String(), uint(1))

	h.Search(c)

	if len(c.Errors) == 0 {
		t.Fatal("expected the pipeline's fatal stage error to propagate to gin")
	}
}

var errAny = &stubErr{"stage exploded"}

type stubErr struct{ msg string }

func (e *stubErr) Error() string { return e.msg }
