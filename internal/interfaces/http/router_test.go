package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qaioz/molstore/internal/application/drug"
	"github.com/qaioz/molstore/internal/application/molecule"
	"github.com/qaioz/molstore/internal/config"
	domainDrug "github.com/qaioz/molstore/internal/domain/drug"
	domainMol "github.com/qaioz/molstore/internal/domain/molecule"
	domainTask "github.com/qaioz/molstore/internal/domain/task"
	"github.com/qaioz/molstore/internal/infrastructure/database/redis"
	"github.com/qaioz/molstore/internal/infrastructure/monitoring/prometheus"
	"github.com/qaioz/molstore/internal/interfaces/http/handlers"
	"github.com/qaioz/molstore/internal/interfaces/http/middleware"
	"github.com/qaioz/molstore/internal/testutil"
)

// stubMoleculeService answers reads from a fixed molecule and counts calls.
// Unimplemented methods panic through the nil embedded interface.
type stubMoleculeService struct {
	molecule.Service
	calls int
}

func (s *stubMoleculeService) GetByID(_ context.Context, id int64) (*domainMol.Molecule, error) {
	s.calls++
	if id != 1 {
		return nil, domainMol.NotFound(id)
	}
	return &domainMol.Molecule{ID: 1, SMILES: "CCO", Mass: 46.07}, nil
}

func (s *stubMoleculeService) Superstructures(_ context.Context, smiles string, _ *int) ([]*domainMol.Molecule, error) {
	s.calls++
	return []*domainMol.Molecule{{ID: 1, SMILES: "CCO"}}, nil
}

type stubDrugService struct {
	drug.Service
}

func (s *stubDrugService) List(_ context.Context, page, pageSize int) (*drug.ListResult, error) {
	return &drug.ListResult{Drugs: []*domainDrug.Drug{}, Page: page, PageSize: pageSize}, nil
}

type stubTasks struct{}

func (stubTasks) DispatchSubstructureSearch(_ context.Context, _ string, _ *int) (*domainTask.Record, error) {
	return &domainTask.Record{ID: "t-1", Status: domainTask.StatusPending}, nil
}

func (stubTasks) Status(_ context.Context, id string) (*domainTask.Record, error) {
	return &domainTask.Record{ID: id, Status: domainTask.StatusPending}, nil
}

func newTestRouter(t *testing.T, mols *stubMoleculeService, respCache func(http.Handler) http.Handler) (http.Handler, *testutil.MockLogger) {
	t.Helper()
	log := testutil.NewMockLogger()
	return NewRouter(RouterConfig{
		MoleculeHandler:  handlers.NewMoleculeHandler(mols, stubTasks{}, 0, log),
		DrugHandler:      handlers.NewDrugHandler(&stubDrugService{}, log),
		TaskHandler:      handlers.NewTaskHandler(stubTasks{}, log),
		HealthHandler:    handlers.NewHealthHandler("test", "srv-1"),
		ResponseCache:    respCache,
		Logging:          middleware.DefaultLoggingConfig(),
		Logger:           log,
		Metrics:          prometheus.NewNopAppMetrics(),
		MetricsCollector: prometheus.NewNopCollector(),
	}), log
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter_RoutesRegistered(t *testing.T) {
	router, _ := newTestRouter(t, &stubMoleculeService{}, nil)

	tests := []struct {
		method string
		target string
		status int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/molecules/1", http.StatusOK},
		{http.MethodGet, "/molecules/1/", http.StatusOK},
		{http.MethodGet, "/molecules/2", http.StatusNotFound},
		{http.MethodGet, "/molecules/search/superstructures?smiles=C", http.StatusOK},
		{http.MethodGet, "/molecules/search/substructures?smiles=C", http.StatusAccepted},
		{http.MethodGet, "/drugs", http.StatusOK},
		{http.MethodGet, "/tasks/t-9", http.StatusOK},
		{http.MethodGet, "/patents", http.StatusNotFound},
		{http.MethodPut, "/molecules/1", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			assert.Equal(t, tt.status, serve(router, tt.method, tt.target).Code)
		})
	}
}

func TestNewRouter_RootIdentifiesServer(t *testing.T) {
	router, _ := newTestRouter(t, &stubMoleculeService{}, nil)
	w := serve(router, http.MethodGet, "/")

	var msg string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	assert.Equal(t, "Hello from server srv-1", msg)
}

func TestNewRouter_GlobalMiddleware(t *testing.T) {
	router, log := newTestRouter(t, &stubMoleculeService{}, nil)

	w := serve(router, http.MethodGet, "/molecules/1")
	assert.NotEmpty(t, w.Header().Get(chimw.RequestIDHeader))
	assert.Equal(t, 1, log.Count("info", "HTTP request completed"))

	var timed bool
	for _, m := range log.GetMessages() {
		if strings.HasPrefix(m.Message, "Request GET /molecules/1 ") {
			timed = true
		}
	}
	assert.True(t, timed)
}

func TestNewRouter_RecoversFromPanics(t *testing.T) {
	router, _ := newTestRouter(t, &stubMoleculeService{}, nil)
	// Delete is not implemented by the stub and panics.
	w := serve(router, http.MethodDelete, "/molecules/1")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNewRouter_NilHandlers_NoPanic(t *testing.T) {
	router := NewRouter(RouterConfig{})
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/molecules/1").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/metrics").Code)
}

func TestNewRouter_ResponseCacheInstalled(t *testing.T) {
	mr := miniredis.RunT(t)
	log := testutil.NewMockLogger()
	client, err := redis.NewClient(config.RedisConfig{Addr: mr.Addr()}, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	respCache, err := middleware.ResponseCache(redis.NewRedisCache(client, log), middleware.ResponseCacheConfig{TTL: time.Hour}, log, nil)
	require.NoError(t, err)

	mols := &stubMoleculeService{}
	router, _ := newTestRouter(t, mols, respCache)

	first := serve(router, http.MethodGet, "/molecules/search/superstructures?smiles=C")
	second := serve(router, http.MethodGet, "/molecules/search/superstructures?smiles=C")
	require.Equal(t, http.StatusOK, first.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, mols.calls)
	assert.True(t, mr.Exists("/molecules/search/superstructures?smiles=C"))
}

//Personal.AI order the ending
