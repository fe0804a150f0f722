package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/stall-admin/internal/daterange"
	"github.com/spec-kit/stall-admin/internal/domain"
)

func newStore(t *testing.T, handler http.HandlerFunc) *RESTStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewRESTStore(srv.URL, "service-key", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestRESTProfileRepository_GetByID(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/profiles", r.URL.Path)
		assert.Equal(t, "eq.p-1", r.URL.Query().Get("id"))
		assert.Equal(t, singleObject, r.Header.Get("Accept"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, `{"id":"p-1","full_name":"Ana","email":"ana@stall.ph","role":"staff","status":"inactive","stall_id":4}`)
	})

	got, err := NewRESTProfileRepository(store).GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, got.Role)
	require.NotNil(t, got.StallID)
	assert.Equal(t, "4", *got.StallID)
}

func TestRESTProfileRepository_NoRowIsNotFound(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotAcceptable, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`)
	})

	_, err := NewRESTProfileRepository(store).GetByEmail(context.Background(), "ghost@stall.ph")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRESTProfileRepository_CreateAndDelete(t *testing.T) {
	var calls []string
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method)
		switch r.Method {
		case http.MethodPost:
			assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "staff", body["role"])
			assert.Equal(t, "inactive", body["status"])
			assert.Equal(t, "7", body["stall_id"])
			w.WriteHeader(http.StatusCreated)
		case http.MethodDelete:
			assert.Equal(t, "eq.p-2", r.URL.Query().Get("id"))
			w.WriteHeader(http.StatusNoContent)
		}
	})

	repo := NewRESTProfileRepository(store)
	stall := "7"
	require.NoError(t, repo.Create(context.Background(), &domain.Profile{
		ID: "p-2", FullName: "Ben", Email: "ben@stall.ph",
		Role: domain.RoleStaff, Status: domain.ProfileStatusInactive, StallID: &stall,
	}))
	require.NoError(t, repo.Delete(context.Background(), "p-2"))
	assert.Equal(t, []string{http.MethodPost, http.MethodDelete}, calls)
}

func TestRESTAuditRepository_ListQuery(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/rest/v1/audit_logs", r.URL.Path)
		assert.Equal(t, "timestamp.desc", q.Get("order"))
		assert.Equal(t, "1000", q.Get("limit"))
		assert.Equal(t, []string{"gte.2024-03-09T16:00:00.000Z", "lte.2024-03-10T15:59:59.999Z"}, q["timestamp"])
		assert.Equal(t, "eq.DELETE", q.Get("action"))
		writeJSON(w, http.StatusOK, `[{"id":"a-1","action":"DELETE","entity":"STAFF","user_id":"u-1","user_name":"Admin","details":"x","stall_id":null,"timestamp":"2024-03-10T01:00:00Z"}]`)
	})

	action := domain.AuditActionDelete
	entries, err := NewRESTAuditRepository(store, civil).List(context.Background(), AuditFilter{
		Range:  daterange.Range{StartDate: "2024-03-10", EndDate: "2024-03-10"},
		Action: &action,
		Limit:  5000,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].StallID)
	assert.Equal(t, domain.AuditEntityStaff, entries[0].Entity)
}

func TestRESTAuditRepository_MissingTable(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"code":"PGRST205","message":"Could not find the table 'public.audit_logs' in the schema cache"}`)
	})

	err := NewRESTAuditRepository(store, civil).Create(context.Background(), &domain.AuditEntry{
		Action: domain.AuditActionCreate, Entity: domain.AuditEntityStaff, Timestamp: time.Now(),
	})
	require.Error(t, err)
	assert.True(t, IsMissingRelation(err))
}

func TestRESTReportRepository_Sums(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.3", q.Get("stall_id"))
		switch r.URL.Path {
		case "/rest/v1/sales":
			assert.Equal(t, "total_amount", q.Get("select"))
			assert.Equal(t, []string{"gte.2024-03-01", "lte.2024-03-31"}, q["sale_date"])
			writeJSON(w, http.StatusOK, `[{"total_amount":120.5},{"total_amount":79.5},{"total_amount":null}]`)
		case "/rest/v1/expenses":
			assert.Equal(t, []string{"gte.2024-03-01", "lte.2024-03-31"}, q["date"])
			writeJSON(w, http.StatusOK, `[{"cost":40}]`)
		}
	})

	repo := NewRESTReportRepository(store, civil)
	stall := "3"
	filter := ReportFilter{Range: daterange.Range{StartDate: "2024-03-01", EndDate: "2024-03-31"}, StallID: &stall}

	sales, err := repo.SumSales(context.Background(), filter)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, sales, 0.001)

	expenses, err := repo.SumExpenses(context.Background(), filter)
	require.NoError(t, err)
	assert.InDelta(t, 40.0, expenses, 0.001)
}

func TestRESTReportRepository_SumFollowsContentRange(t *testing.T) {
	var offsets []string
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "count=exact", r.Header.Get("Prefer"))
		assert.Equal(t, "sale_id", q.Get("order"))
		assert.Equal(t, "1000", q.Get("limit"))
		offsets = append(offsets, q.Get("offset"))

		rows, header := 1000, "0-999/1500"
		if q.Get("offset") == "1000" {
			rows, header = 500, "1000-1499/1500"
		}
		body := "[" + strings.TrimSuffix(strings.Repeat(`{"total_amount":1},`, rows), ",") + "]"
		w.Header().Set("Content-Range", header)
		writeJSON(w, http.StatusPartialContent, body)
	})

	sales, err := NewRESTReportRepository(store, civil).SumSales(context.Background(), ReportFilter{
		Range: daterange.Range{StartDate: "2024-01-01", EndDate: "2024-12-31"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, sales, 0.001)
	assert.Equal(t, []string{"0", "1000"}, offsets)
}

func TestContentRangeTotal(t *testing.T) {
	cases := []struct {
		header string
		total  int
		known  bool
	}{
		{"0-999/1500", 1500, true},
		{"*/0", 0, true},
		{"0-2/*", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		total, known := contentRangeTotal(tc.header)
		assert.Equal(t, tc.known, known, tc.header)
		assert.Equal(t, tc.total, total, tc.header)
	}
}

func TestRESTReportRepository_MalformedRange(t *testing.T) {
	store := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := NewRESTReportRepository(store, civil).SumSales(context.Background(), ReportFilter{
		Range: daterange.Range{StartDate: "03/01/2024"},
	})
	assert.ErrorIs(t, err, daterange.ErrInvalidDate)
}
