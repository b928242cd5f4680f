package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/lead-dashboard/internal/entity"
	"github.com/xavierca1/lead-dashboard/internal/infra/http/middleware"
	"github.com/xavierca1/lead-dashboard/internal/infra/mail"
	"github.com/xavierca1/lead-dashboard/internal/usecase"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Get(ctx context.Context, collection, id string) (*entity.LeadDocument, error) {
	args := m.Called(ctx, collection, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LeadDocument), args.Error(1)
}

func (m *MockLeadRepository) UpdateFields(ctx context.Context, collection, id string, readAt time.Time, fields map[string]any) error {
	args := m.Called(ctx, collection, id, readAt, fields)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendExport(to []string, data mail.ExportEmailData, content []byte) error {
	args := m.Called(to, data, content)
	return args.Error(0)
}

// csvEncoder keeps export assertions readable.
type csvEncoder struct{}

func (csvEncoder) ContentType() string { return "text/csv" }

func (csvEncoder) Encode(w io.Writer, t usecase.ExportTable) error {
	io.WriteString(w, strings.Join(t.Columns, ",")+"\n")
	for _, row := range t.Rows {
		io.WriteString(w, strings.Join(row, ",")+"\n")
	}
	return nil
}

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func testCollection() entity.Collection {
	for _, c := range entity.DefaultCollections() {
		if c.Name == "nri-1504" {
			return c
		}
	}
	panic("nri-1504 missing")
}

type fixture struct {
	router *chi.Mux
	cache  *usecase.SnapshotCache
	repo   *MockLeadRepository
	mailer *MockMailer
}

func newFixture(t *testing.T, withSnapshot bool) *fixture {
	t.Helper()
	c := testCollection()
	cache := usecase.NewSnapshotCache()
	if withSnapshot {
		cache.Apply(c, entity.Snapshot{
			Collection: c.Name,
			ReadTime:   fixedNow,
			Records: []entity.RawRecord{
				{ID: "a1", Fields: map[string]any{"name": "Priya Shah", "phone": "9876543210", "status": "new", "timestamp": "2025-03-10T06:00:00.000Z"}},
				{ID: "b2", Fields: map[string]any{"name": "Rahul Mehta", "phone": "9123456780", "status": "pushed", "timestamp": "2025-03-09T06:00:00.000Z"}},
				{ID: "c3", Fields: map[string]any{"name": "Anita Rao", "phone": "9000000000", "status": "duplicate"}},
			},
		})
	}

	repo := new(MockLeadRepository)
	list := usecase.NewListLeadsUseCase(cache)
	list.Now = func() time.Time { return fixedNow }
	transitions := usecase.NewStatusTransitionUseCase(repo, nil)
	transitions.Now = func() time.Time { return fixedNow }

	mailer := new(MockMailer)
	h := NewLeadHandler([]entity.Collection{c}, list, transitions, csvEncoder{}, mailer, nil)
	h.Now = func() time.Time { return fixedNow }

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(middleware.WithActor(r.Context(), "ops@example.com")))
			})
		})
		h.Routes(r)
	})
	return &fixture{router: r, cache: cache, repo: repo, mailer: mailer}
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(method, target, rd))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestListLeadsFiltersAndPages(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/collections/nri-1504/leads?search=priya", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "a1", items[0].(map[string]any)["id"])
	assert.Equal(t, float64(1), body["total_items"])
	assert.Equal(t, float64(3), body["stats"].(map[string]any)["total"])
}

func TestListLeadsDefaultOrderNewestFirstMissingLast(t *testing.T) {
	f := newFixture(t, true)

	body := decode(t, f.do(http.MethodGet, "/api/collections/nri-1504/leads", ""))
	items := body["items"].([]any)
	require.Len(t, items, 3)
	var ids []string
	for _, it := range items {
		ids = append(ids, it.(map[string]any)["id"].(string))
	}
	assert.Equal(t, []string{"a1", "b2", "c3"}, ids)
}

func TestListLeadsEmptyResultHasMessage(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/collections/nri-1504/leads?search=nobody", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, []any{}, body["items"])
	assert.Equal(t, "No leads match the current filters.", body["message"])
}

func TestListLeadsClampsPage(t *testing.T) {
	f := newFixture(t, true)

	body := decode(t, f.do(http.MethodGet, "/api/collections/nri-1504/leads?page=9", ""))
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(1), body["state"].(map[string]any)["page"])
}

func TestListLeadsValidation(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/collections/nri-1504/leads?status=bogus&page=0&date=2025-13-40", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "INVALID_QUERY", body["code"])
	assert.Len(t, body["errors"], 3)
}

func TestListLeadsNotReadyAndUnknownCollection(t *testing.T) {
	f := newFixture(t, false)

	rec := f.do(http.MethodGet, "/api/collections/nri-1504/leads", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, usecase.CodeSnapshotNotReady, decode(t, rec)["code"])

	rec = f.do(http.MethodGet, "/api/collections/nope/leads", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetLead(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/collections/nri-1504/leads/b2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	lead := decode(t, rec)["lead"].(map[string]any)
	assert.Equal(t, "Rahul Mehta", lead["name"])

	rec = f.do(http.MethodGet, "/api/collections/nri-1504/leads/zzz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListCollectionsReportsReadiness(t *testing.T) {
	f := newFixture(t, true)

	body := decode(t, f.do(http.MethodGet, "/api/collections", ""))
	cols := body["collections"].([]any)
	require.Len(t, cols, 1)
	assert.Equal(t, "nri-1504", cols[0].(map[string]any)["slug"])
	assert.Equal(t, true, cols[0].(map[string]any)["ready"])
}

func TestStats(t *testing.T) {
	f := newFixture(t, true)

	body := decode(t, f.do(http.MethodGet, "/api/collections/nri-1504/stats", ""))
	stats := body["stats"].(map[string]any)
	byStatus := stats["by_status"].(map[string]any)
	assert.Equal(t, float64(3), stats["total"])
	assert.Equal(t, float64(1), byStatus["duplicate"])
}

func TestExportIgnoresPagination(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/collections/nri-1504/export?status=pushed&page=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="NRI-1504-Leads-2025-03-10.xlsx"`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "b2,"))
}

func TestMailExport(t *testing.T) {
	f := newFixture(t, true)
	f.mailer.On("SendExport", []string{"sales@example.com"}, mock.MatchedBy(func(d mail.ExportEmailData) bool {
		return d.LeadCount == 3 && d.Filename == "NRI-1504-Leads-2025-03-10.xlsx"
	}), mock.Anything).Return(nil).Once()

	rec := f.do(http.MethodPost, "/api/collections/nri-1504/export/mail", `{"to":[" sales@example.com ",""]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	f.mailer.AssertExpectations(t)
}

func TestMailExportErrors(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodPost, "/api/collections/nri-1504/export/mail", `{"to":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.mailer.On("SendExport", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	rec = f.do(http.MethodPost, "/api/collections/nri-1504/export/mail", `{"to":["a@example.com"]}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMailExportRejectsMalformedRecipients(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodPost, "/api/collections/nri-1504/export/mail", `{"to":["not-an-address","ok@example.com"]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "INVALID_RECIPIENTS", body["code"])
	errs, ok := body["errors"].([]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "to[0]", errs[0].(map[string]any)["field"])
	f.mailer.AssertNotCalled(t, "SendExport", mock.Anything, mock.Anything, mock.Anything)

	to, fieldErrs := cleanRecipients([]string{" Ops <ops@example.com> ", "", "a@b@c", "sales@example.com"})
	assert.Equal(t, []string{"ops@example.com", "sales@example.com"}, to)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "to[2]", fieldErrs[0].Field)
}

func TestPushWritesOnce(t *testing.T) {
	f := newFixture(t, true)
	readAt := fixedNow.Add(-time.Minute)

	f.repo.On("Get", mock.Anything, "nri-1504", "a1").Return(&entity.LeadDocument{ID: "a1", Status: entity.StatusNew, UpdateTime: readAt}, nil).Once()
	f.repo.On("UpdateFields", mock.Anything, "nri-1504", "a1", readAt, map[string]any{
		"status":   "pushed",
		"pushedAt": "2025-03-10T12:00:00.000Z",
	}).Return(nil).Once()
	f.repo.On("Get", mock.Anything, "nri-1504", "a1").Return(&entity.LeadDocument{ID: "a1", Status: entity.StatusPushed, UpdateTime: fixedNow}, nil).Once()

	rec := f.do(http.MethodPost, "/api/collections/nri-1504/leads/a1/push", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["transition"].(map[string]any)["applied"])

	rec = f.do(http.MethodPost, "/api/collections/nri-1504/leads/a1/push", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["transition"].(map[string]any)["applied"])

	f.repo.AssertNumberOfCalls(t, "UpdateFields", 1)
}

func TestPushConflictsAndFailures(t *testing.T) {
	f := newFixture(t, true)

	f.repo.On("Get", mock.Anything, "nri-1504", "c3").Return(&entity.LeadDocument{ID: "c3", Status: entity.StatusDuplicate}, nil)
	rec := f.do(http.MethodPost, "/api/collections/nri-1504/leads/c3/push", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, usecase.CodeInvalidTransition, decode(t, rec)["code"])

	f.repo.On("Get", mock.Anything, "nri-1504", "gone").Return(nil, entity.ErrLeadNotFound)
	rec = f.do(http.MethodPost, "/api/collections/nri-1504/leads/gone/push", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	f.repo.On("Get", mock.Anything, "nri-1504", "b2").Return(nil, errors.New("deadline exceeded"))
	rec = f.do(http.MethodPost, "/api/collections/nri-1504/leads/b2/push", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])
}

func TestMarkDuplicateRequiresConfirmation(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodPost, "/api/collections/nri-1504/leads/a1/duplicate", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, usecase.CodeConfirmationRequired, decode(t, rec)["code"])
	f.repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkDuplicateUsesSessionActor(t *testing.T) {
	f := newFixture(t, true)

	f.repo.On("Get", mock.Anything, "nri-1504", "a1").Return(&entity.LeadDocument{ID: "a1", Status: entity.StatusNew}, nil)
	f.repo.On("UpdateFields", mock.Anything, "nri-1504", "a1", time.Time{}, map[string]any{
		"status":            "duplicate",
		"duplicateMarkedAt": "2025-03-10T12:00:00.000Z",
		"duplicateMarkedBy": "ops@example.com",
	}).Return(nil)

	rec := f.do(http.MethodPost, "/api/collections/nri-1504/leads/a1/duplicate", `{"confirm":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	f.repo.AssertExpectations(t)
}

func TestRateLimiterOnMutations(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	now := fixedNow
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	now = now.Add(2 * time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	defer rl.Stop()
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow("1.1.1.1"))
	}
}
