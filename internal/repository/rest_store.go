package repository

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/spec-kit/stall-admin/internal/daterange"
	"github.com/spec-kit/stall-admin/internal/domain"
)

const singleObject = "application/vnd.pgrst.object+json"

// RESTStore is a PostgREST client authenticated with the service-role key.
// It backs the repositories when no direct database DSN is configured.
type RESTStore struct {
	http *resty.Client
}

// NewRESTStore builds a store for the project rooted at baseURL.
func NewRESTStore(baseURL, serviceKey string, timeout time.Duration) *RESTStore {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetHeader("apikey", serviceKey).
		SetAuthToken(serviceKey).
		SetHeader("Content-Type", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &RESTStore{http: rc}
}

// Ping checks that the REST endpoint answers.
func (s *RESTStore) Ping(ctx context.Context) error {
	resp, err := s.http.R().SetContext(ctx).Get("/")
	if err != nil {
		return errors.Wrap(err, "store: ping")
	}
	if resp.StatusCode() >= http.StatusInternalServerError {
		return &StoreError{Status: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	}
	return nil
}

func (s *RESTStore) request(ctx context.Context) *resty.Request {
	return s.http.R().SetContext(ctx).SetError(&restError{})
}

type restError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func checkREST(resp *resty.Response, err error, op string) error {
	if err != nil {
		return errors.Wrapf(err, "store: %s", op)
	}
	if !resp.IsError() {
		return nil
	}
	out := &StoreError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*restError); ok && body != nil {
		out.Code = body.Code
		out.Message = body.Message
		if out.Message == "" {
			out.Message = body.Details
		}
	}
	if out.Message == "" {
		out.Message = strings.TrimSpace(resp.String())
	}
	if out.Message == "" {
		out.Message = http.StatusText(resp.StatusCode())
	}
	return out
}

type profileRow struct {
	ID            string               `json:"id"`
	FullName      string               `json:"full_name"`
	Email         string               `json:"email"`
	ContactNumber *string              `json:"contact_number"`
	Role          domain.Role          `json:"role"`
	Status        domain.ProfileStatus `json:"status"`
	StallID       flexString           `json:"stall_id"`
	CreatedAt     *time.Time           `json:"created_at,omitempty"`
}

func (r profileRow) toDomain() *domain.Profile {
	p := &domain.Profile{
		ID:            r.ID,
		FullName:      r.FullName,
		Email:         r.Email,
		ContactNumber: r.ContactNumber,
		Role:          r.Role,
		Status:        r.Status,
		StallID:       r.StallID.ptr(),
	}
	if r.CreatedAt != nil {
		p.CreatedAt = *r.CreatedAt
	}
	return p
}

// flexString accepts a JSON string or number. Stall ids are numeric in some
// deployments and text in others.
type flexString struct {
	value string
	set   bool
}

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*f = flexString{}
		return nil
	}
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	*f = flexString{value: s, set: true}
	return nil
}

func (f flexString) MarshalJSON() ([]byte, error) {
	if !f.set {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(f.value)), nil
}

func (f flexString) ptr() *string {
	if !f.set {
		return nil
	}
	v := f.value
	return &v
}

func flexFrom(p *string) flexString {
	if p == nil {
		return flexString{}
	}
	return flexString{value: *p, set: true}
}

type restProfileRepository struct {
	store *RESTStore
}

// NewRESTProfileRepository returns a ProfileRepository over PostgREST.
func NewRESTProfileRepository(store *RESTStore) ProfileRepository {
	return &restProfileRepository{store: store}
}

func (r *restProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	row := profileRow{
		ID:            profile.ID,
		FullName:      profile.FullName,
		Email:         profile.Email,
		ContactNumber: profile.ContactNumber,
		Role:          profile.Role,
		Status:        profile.Status,
		StallID:       flexFrom(profile.StallID),
	}
	resp, err := r.store.request(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post("/profiles")
	return checkREST(resp, err, "insert profile")
}

func (r *restProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.getOne(ctx, "id", id)
}

func (r *restProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.getOne(ctx, "email", email)
}

func (r *restProfileRepository) getOne(ctx context.Context, column, value string) (*domain.Profile, error) {
	q := NewRESTFilter()
	q.Eq(column, value)
	q.Set("select", "*")
	q.Set("limit", "1")

	var row profileRow
	resp, err := r.store.request(ctx).
		SetHeader("Accept", singleObject).
		SetQueryParamsFromValues(q.Values()).
		SetResult(&row).
		Get("/profiles")
	if err := checkREST(resp, err, "get profile"); err != nil {
		var storeErr *StoreError
		if errors.As(err, &storeErr) && storeErr.Code == "PGRST116" {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.toDomain(), nil
}

func (r *restProfileRepository) Delete(ctx context.Context, id string) error {
	q := NewRESTFilter()
	q.Eq("id", id)
	resp, err := r.store.request(ctx).
		SetQueryParamsFromValues(q.Values()).
		Delete("/profiles")
	return checkREST(resp, err, "delete profile")
}

type auditRow struct {
	ID        string             `json:"id,omitempty"`
	Action    domain.AuditAction `json:"action"`
	Entity    domain.AuditEntity `json:"entity"`
	EntityID  *string            `json:"entity_id"`
	UserID    string             `json:"user_id"`
	UserName  string             `json:"user_name"`
	Details   string             `json:"details"`
	IPAddress *string            `json:"ip_address"`
	UserAgent *string            `json:"user_agent"`
	OldValue  *string            `json:"old_value"`
	NewValue  *string            `json:"new_value"`
	StallID   flexString         `json:"stall_id"`
	Timestamp time.Time          `json:"timestamp"`
}

type restAuditRepository struct {
	store    *RESTStore
	calendar *daterange.Calendar
}

// NewRESTAuditRepository returns an AuditRepository over PostgREST.
func NewRESTAuditRepository(store *RESTStore, calendar *daterange.Calendar) AuditRepository {
	return &restAuditRepository{store: store, calendar: calendar}
}

func (r *restAuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	row := auditRow{
		ID:        entry.ID,
		Action:    entry.Action,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
		UserID:    entry.UserID,
		UserName:  entry.UserName,
		Details:   entry.Details,
		IPAddress: entry.IPAddress,
		UserAgent: entry.UserAgent,
		OldValue:  entry.OldValue,
		NewValue:  entry.NewValue,
		StallID:   flexFrom(entry.StallID),
		Timestamp: entry.Timestamp.UTC(),
	}
	resp, err := r.store.request(ctx).
		SetHeader("Prefer", "return=minimal").
		SetBody(row).
		Post("/audit_logs")
	return checkREST(resp, err, "insert audit entry")
}

func (r *restAuditRepository) List(ctx context.Context, filter AuditFilter) ([]domain.AuditEntry, error) {
	q := NewRESTFilter()
	q.Set("select", "*")
	q.Set("order", "timestamp.desc")
	q.Set("limit", strconv.Itoa(filter.EffectiveLimit()))
	if err := r.calendar.Apply(q, "timestamp", filter.Range, daterange.TimestampColumn); err != nil {
		return nil, err
	}
	if filter.Action != nil {
		q.Eq("action", string(*filter.Action))
	}
	if filter.Entity != nil {
		q.Eq("entity", string(*filter.Entity))
	}
	if filter.UserID != nil {
		q.Eq("user_id", *filter.UserID)
	}

	var rows []auditRow
	resp, err := r.store.request(ctx).
		SetQueryParamsFromValues(q.Values()).
		SetResult(&rows).
		Get("/audit_logs")
	if err := checkREST(resp, err, "list audit entries"); err != nil {
		return nil, err
	}

	result := make([]domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.AuditEntry{
			ID:        row.ID,
			Action:    row.Action,
			Entity:    row.Entity,
			EntityID:  row.EntityID,
			UserID:    row.UserID,
			UserName:  row.UserName,
			Details:   row.Details,
			IPAddress: row.IPAddress,
			UserAgent: row.UserAgent,
			OldValue:  row.OldValue,
			NewValue:  row.NewValue,
			StallID:   row.StallID.ptr(),
			Timestamp: row.Timestamp,
		})
	}
	return result, nil
}

type restReportRepository struct {
	store    *RESTStore
	calendar *daterange.Calendar
}

// NewRESTReportRepository returns a ReportRepository over PostgREST. Sums
// are computed client side from the selected amount column.
func NewRESTReportRepository(store *RESTStore, calendar *daterange.Calendar) ReportRepository {
	return &restReportRepository{store: store, calendar: calendar}
}

func (r *restReportRepository) SumSales(ctx context.Context, filter ReportFilter) (float64, error) {
	return r.sum(ctx, "/sales", "sale_id", "total_amount", "sale_date", filter)
}

func (r *restReportRepository) SumExpenses(ctx context.Context, filter ReportFilter) (float64, error) {
	return r.sum(ctx, "/expenses", "expense_id", "cost", "date", filter)
}

// reportPageSize matches the default max-rows of hosted PostgREST.
const reportPageSize = 1000

// sum pages through the matching rows ordered by key. PostgREST caps each
// response at max-rows, so the loop follows Content-Range until the exact
// count has been read.
func (r *restReportRepository) sum(ctx context.Context, table, keyColumn, amountColumn, dateColumn string, filter ReportFilter) (float64, error) {
	q := NewRESTFilter()
	q.Set("select", amountColumn)
	q.Set("order", keyColumn)
	if err := r.calendar.Apply(q, dateColumn, filter.Range, daterange.DateColumn); err != nil {
		return 0, err
	}
	if filter.StallID != nil {
		q.Eq("stall_id", *filter.StallID)
	}

	var total float64
	offset := 0
	for {
		var rows []map[string]*float64
		resp, err := r.store.request(ctx).
			SetQueryParamsFromValues(q.Values()).
			SetQueryParam("offset", strconv.Itoa(offset)).
			SetQueryParam("limit", strconv.Itoa(reportPageSize)).
			SetHeader("Prefer", "count=exact").
			SetResult(&rows).
			Get(table)
		if err := checkREST(resp, err, "sum "+strings.TrimPrefix(table, "/")); err != nil {
			return 0, err
		}

		for _, row := range rows {
			if v := row[amountColumn]; v != nil {
				total += *v
			}
		}
		if len(rows) == 0 {
			return total, nil
		}
		offset += len(rows)

		count, known := contentRangeTotal(resp.Header().Get("Content-Range"))
		if known {
			if offset >= count {
				return total, nil
			}
			continue
		}
		if len(rows) < reportPageSize {
			return total, nil
		}
	}
}

// contentRangeTotal reads the total from a "0-999/1500" header. The total is
// unknown when the header is missing or reports "*".
func contentRangeTotal(header string) (int, bool) {
	i := strings.LastIndexByte(header, '/')
	if i < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(header[i+1:]))
	if err != nil {
		return 0, false
	}
	return n, true
}
