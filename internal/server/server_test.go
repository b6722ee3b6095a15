package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/huangsam/debtlens/core"
	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/iocache"
	"github.com/huangsam/debtlens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testConfig() *contract.Config {
	return &contract.Config{
		Commits:      contract.DefaultCommits,
		StoreBackend: schema.NoneBackend,
		Addr:         "127.0.0.1:0",
	}
}

func sampleReport(repo string) *schema.SnapshotReport {
	return &schema.SnapshotReport{
		Repo: repo,
		Summary: schema.SnapshotSummary{
			FileCount:        2,
			AvgTechnicalDebt: 0.3,
			HighRiskCount:    1,
			TopFiles:         []string{"a.go", "b.go"},
		},
	}
}

func do(t *testing.T, s *Server, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	s := New(testConfig(), nil, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestSnapshot(t *testing.T) {
	s := New(testConfig(), nil, nil)
	s.snapshot = func(_ context.Context, _ *contract.Config, _ contract.CacheManager, repo string) (*schema.SnapshotReport, error) {
		return sampleReport(repo), nil
	}

	rec := do(t, s, http.MethodPost, "/api/v1/snapshot", `{"repo":"acme/widgets"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var report schema.SnapshotReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "acme/widgets", report.Repo)
	assert.Equal(t, 2, report.Summary.FileCount)
}

func TestSnapshotErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", fmt.Errorf("%w: bad repo", contract.ErrInvalidInput), http.StatusBadRequest, contract.CodeInvalidInput},
		{"empty", contract.ErrEmptyResult, http.StatusNotFound, contract.CodeEmptyResult},
		{"upstream", fmt.Errorf("%w: boom", contract.ErrUpstreamUnavailable), http.StatusBadGateway, contract.CodeUpstreamUnavailable},
		{"internal", fmt.Errorf("unexpected"), http.StatusInternalServerError, contract.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(testConfig(), nil, nil)
			s.snapshot = func(context.Context, *contract.Config, contract.CacheManager, string) (*schema.SnapshotReport, error) {
				return nil, tt.err
			}
			rec := do(t, s, http.MethodPost, "/api/v1/snapshot", `{"repo":"x"}`, nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Code)
		})
	}
}

func TestMalformedBody(t *testing.T) {
	s := New(testConfig(), nil, nil)
	rec := do(t, s, http.MethodPost, "/api/v1/snapshot", `{"repo":`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, contract.CodeInvalidInput, decodeError(t, rec).Code)
}

func TestSnapshotSavesRollup(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = schema.SQLiteBackend

	store := &contract.MockRollupStore{}
	store.On("SaveRollup", mock.Anything, mock.MatchedBy(func(r schema.RollupRecord) bool {
		return r.Actor == "alice" && r.Repo == "acme/widgets" && r.FileCount == 2
	})).Return(int64(7), nil)
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRollupStore").Return(store)

	s := New(cfg, mgr, nil)
	s.snapshot = func(ctx context.Context, _ *contract.Config, _ contract.CacheManager, repo string) (*schema.SnapshotReport, error) {
		actor, ok := core.ActorFromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "alice", actor)
		return sampleReport(repo), nil
	}

	rec := do(t, s, http.MethodPost, "/api/v1/snapshot", `{"repo":"acme/widgets"}`, map[string]string{ActorHeader: "alice"})
	assert.Equal(t, http.StatusOK, rec.Code)
	store.AssertExpectations(t)
}

func TestSnapshotWithoutActorIsNotRecorded(t *testing.T) {
	cfg := testConfig()
	cfg.StoreBackend = schema.SQLiteBackend
	cfg.Actor = "operator"

	store := &contract.MockRollupStore{}
	mgr := &iocache.MockCacheManager{}
	mgr.On("GetRollupStore").Return(store)

	s := New(cfg, mgr, nil)
	s.snapshot = func(_ context.Context, _ *contract.Config, _ contract.CacheManager, repo string) (*schema.SnapshotReport, error) {
		return sampleReport(repo), nil
	}

	rec := do(t, s, http.MethodPost, "/api/v1/snapshot", `{"repo":"acme/widgets"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	store.AssertNotCalled(t, "SaveRollup", mock.Anything, mock.Anything)
}

func TestLocalRepositoriesRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Source = schema.AutoSource
	s := New(cfg, nil, nil)
	assert.Equal(t, schema.GitHubSource, s.cfg.Source)
	assert.Equal(t, schema.AutoSource, cfg.Source, "the caller's config is left alone")

	dir, err := json.Marshal(t.TempDir())
	require.NoError(t, err)
	for _, target := range []string{"/api/v1/snapshot", "/api/v1/history"} {
		t.Run(target, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, target, `{"repo":`+string(dir)+`}`, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, contract.CodeInvalidInput, decodeError(t, rec).Code)
		})
	}
}

func TestHistoryDefaultsCommits(t *testing.T) {
	s := New(testConfig(), nil, nil)
	var got int
	s.history = func(_ context.Context, _ *contract.Config, _ contract.CacheManager, repo string, n int) (*schema.HistoryReport, error) {
		got = n
		return &schema.HistoryReport{Repo: repo}, nil
	}

	rec := do(t, s, http.MethodPost, "/api/v1/history", `{"repo":"acme/widgets"}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contract.DefaultCommits, got)

	rec = do(t, s, http.MethodPost, "/api/v1/history", `{"repo":"acme/widgets","commits":5}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, got)
}

func TestOpinion(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := New(testConfig(), nil, nil)
		rec := do(t, s, http.MethodPost, "/api/v1/opinion", `{"filename":"a.go","content":"x"}`, nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, contract.CodeSecondaryDegraded, decodeError(t, rec).Code)
	})

	t.Run("verdict", func(t *testing.T) {
		provider := &contract.MockOpinionProvider{}
		provider.On("Opinion", mock.Anything, "a.go", "package a").Return(schema.OpinionVerdict{
			Filename:      "a.go",
			AIProbability: 0.8,
			Verdict:       schema.AIGeneratedVerdict,
		}, nil)
		s := New(testConfig(), nil, provider)

		rec := do(t, s, http.MethodPost, "/api/v1/opinion", `{"filename":"a.go","content":"package a"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var verdict schema.OpinionVerdict
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verdict))
		assert.Equal(t, schema.AIGeneratedVerdict, verdict.Verdict)
		provider.AssertExpectations(t)
	})

	t.Run("rate limited", func(t *testing.T) {
		provider := &contract.MockOpinionProvider{}
		provider.On("Opinion", mock.Anything, mock.Anything, mock.Anything).Return(schema.OpinionVerdict{}, contract.ErrRateLimited)
		s := New(testConfig(), nil, provider)

		rec := do(t, s, http.MethodPost, "/api/v1/opinion", `{"filename":"a.go","content":"x"}`, nil)
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, contract.CodeRateLimited, decodeError(t, rec).Code)
	})
}

func TestRollups(t *testing.T) {
	t.Run("missing actor", func(t *testing.T) {
		s := New(testConfig(), nil, nil)
		rec := do(t, s, http.MethodGet, "/api/v1/rollups", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, contract.CodeUnauthorized, decodeError(t, rec).Code)
	})

	t.Run("bad limit", func(t *testing.T) {
		s := New(testConfig(), nil, nil)
		rec := do(t, s, http.MethodGet, "/api/v1/rollups?limit=abc", "", map[string]string{ActorHeader: "alice"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no store", func(t *testing.T) {
		s := New(testConfig(), nil, nil)
		rec := do(t, s, http.MethodGet, "/api/v1/rollups", "", map[string]string{ActorHeader: "alice"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("scoped to actor", func(t *testing.T) {
		store := &contract.MockRollupStore{}
		store.On("ListRollups", mock.Anything, "alice", 5).Return([]schema.RollupRecord{
			{ID: 1, Actor: "alice", Repo: "acme/widgets"},
		}, nil)
		mgr := &iocache.MockCacheManager{}
		mgr.On("GetRollupStore").Return(store)
		s := New(testConfig(), mgr, nil)

		rec := do(t, s, http.MethodGet, "/api/v1/rollups?limit=5", "", map[string]string{ActorHeader: "alice"})
		require.Equal(t, http.StatusOK, rec.Code)
		var records []schema.RollupRecord
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
		require.Len(t, records, 1)
		assert.Equal(t, "alice", records[0].Actor)
		store.AssertExpectations(t)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(testConfig(), nil, nil)
	s.snapshot = func(context.Context, *contract.Config, contract.CacheManager, string) (*schema.SnapshotReport, error) {
		return nil, contract.ErrEmptyResult
	}
	do(t, s, http.MethodPost, "/api/v1/snapshot", `{"repo":"x"}`, nil)

	rec := do(t, s, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `debtlens_analyses_total{kind="snapshot",outcome="empty_result"} 1`)
	assert.Contains(t, body, "debtlens_analysis_duration_seconds_count")
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{contract.CodeInvalidInput, http.StatusBadRequest},
		{contract.CodeUnauthorized, http.StatusUnauthorized},
		{contract.CodeEmptyResult, http.StatusNotFound},
		{contract.CodeRateLimited, http.StatusTooManyRequests},
		{contract.CodeQuotaExhausted, http.StatusTooManyRequests},
		{contract.CodeUpstreamUnavailable, http.StatusBadGateway},
		{contract.CodeSecondaryDegraded, http.StatusServiceUnavailable},
		{contract.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.code), tt.code)
	}
}

func TestRunShutsDown(t *testing.T) {
	s := New(testConfig(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
