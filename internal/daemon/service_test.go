package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/store"
)

var refDate = time.Date(2026, time.March, 20, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.Open(filepath.Join(t.TempDir(), "danak.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := New(Config{
		App:      config.DefaultConfig(),
		DBPath:   "test.db",
		Interval: 10 * time.Second,
		Now:      func() time.Time { return refDate },
	}, st)
	return svc, st
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestDiffSummaries(t *testing.T) {
	prev := SummaryView{
		TotalRecords:   3,
		TotalIncome:    decimal.NewFromInt(1000),
		SocialSecurity: decimal.RequireFromString("208.5"),
		IncomeTax:      decimal.RequireFromString("54.15"),
		NetIncome:      decimal.RequireFromString("737.35"),
		YearlyTurnover: decimal.NewFromInt(1000),
	}
	curr := SummaryView{
		TotalRecords:   4,
		TotalIncome:    decimal.NewFromInt(3000),
		SocialSecurity: decimal.RequireFromString("587.03592"),
		IncomeTax:      decimal.RequireFromString("166.296408"),
		NetIncome:      decimal.RequireFromString("2246.667672"),
		YearlyTurnover: decimal.NewFromInt(3000),
	}

	delta := diffSummaries(prev, curr)
	assert.Equal(t, 1, delta.Records)
	assert.True(t, delta.TotalIncome.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, "378.53592", delta.SocialSecurity.String())
	assert.Equal(t, "1509.317672", delta.NetIncome.String())
	assert.False(t, delta.isZero())
	assert.True(t, diffSummaries(curr, curr).isZero())
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Interval: 10 * time.Second, EventsBuffer: 2}, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	events := s.eventsCopy()
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), events[0].ID)
	assert.Equal(t, int64(3), events[1].ID)
}

func TestPollEmitsSnapshotThenDeltas(t *testing.T) {
	svc, st := newTestService(t)

	svc.pollOnce()
	svc.pollOnce()
	events := svc.eventsCopy()
	require.Len(t, events, 1, "unchanged poll emits nothing")
	assert.Equal(t, "snapshot", events[0].Type)

	_, err := st.Add(newRec(t, "2026-03-05", "1000"))
	require.NoError(t, err)
	svc.pollOnce()

	events = svc.eventsCopy()
	require.Len(t, events, 2)
	assert.Equal(t, "summary_delta", events[1].Type)
	assert.Equal(t, 1, events[1].Delta.Records)
	assert.Equal(t, "737.35", events[1].Summary.NetIncome.String())

	status := svc.snapshotStatus()
	assert.Equal(t, int64(3), status.PollCount)
	assert.Empty(t, status.LastError)
	assert.Equal(t, "actual", status.BaseMode)
}

func TestHealthAndMetrics(t *testing.T) {
	svc, _ := newTestService(t)
	h := svc.Router()

	w := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())

	svc.pollOnce()
	w = do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "danak_net_income")
	assert.Contains(t, w.Body.String(), `danak_http_requests_total{method="GET",route="/healthz",status="200"}`)
}

func TestRecordLifecycleOverHTTP(t *testing.T) {
	svc, _ := newTestService(t)
	h := svc.Router()

	w := do(t, h, http.MethodPost, "/v1/records", `{"date":"2026-03-05","amount":"1000","description":"Guitar lessons"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created RecordView
	decode(t, w, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "income", created.Kind)

	w = do(t, h, http.MethodPost, "/v1/records", `{"date":"2026-02-10","amount":"1955.83","description":"Lev invoice","currency":"BGN"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var bgn RecordView
	decode(t, w, &bgn)
	assert.Equal(t, "1000.00", bgn.Amount.StringFixed(2))

	w = do(t, h, http.MethodGet, "/v1/records?period=2026-03", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Records []RecordView    `json:"records"`
		Total   decimal.Decimal `json:"total"`
	}
	decode(t, w, &list)
	require.Len(t, list.Records, 1)
	assert.Equal(t, created.ID, list.Records[0].ID)
	assert.True(t, list.Total.Equal(decimal.NewFromInt(1000)))

	w = do(t, h, http.MethodGet, "/v1/summary", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum SummaryView
	decode(t, w, &sum)
	assert.Equal(t, 3, sum.Month)
	assert.Equal(t, "737.35", sum.NetIncome.String())
	assert.Equal(t, 2, sum.TotalRecords)

	w = do(t, h, http.MethodDelete, "/v1/records/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, h, http.MethodDelete, "/v1/records/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, h, http.MethodGet, "/v1/events", "")
	var events []Event
	decode(t, w, &events)
	assert.GreaterOrEqual(t, len(events), 3, "every mutation triggers a poll")
}

func TestCreateRecordRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	h := svc.Router()

	bodies := []string{
		`{"date":"2026-03-05","amount":"10"}`,
		`{"date":"05.03.2026","amount":"10","description":"x"}`,
		`{"date":"2026-03-05","amount":"ten","description":"x"}`,
		`{"date":"2026-03-05","amount":"-10","description":"x"}`,
		`{"date":"2026-03-05","amount":"10","description":"x","currency":"USD"}`,
		`{"date":"2026-03-05","amount":"10","description":"x","kind":"gift"}`,
		`not json`,
	}
	for _, body := range bodies {
		w := do(t, h, http.MethodPost, "/v1/records", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestSummaryForExplicitDate(t *testing.T) {
	svc, st := newTestService(t)
	_, err := st.Add(newRec(t, "2026-01-15", "3000"))
	require.NoError(t, err)
	h := svc.Router()

	w := do(t, h, http.MethodGet, "/v1/summary?date=2026-01-31", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum SummaryView
	decode(t, w, &sum)
	assert.Equal(t, "2111.64", sum.SocialSecurityBase.String())
	assert.Equal(t, "587.04", sum.SocialSecurity.StringFixed(2))

	w = do(t, h, http.MethodGet, "/v1/summary?date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMonths(t *testing.T) {
	svc, st := newTestService(t)
	_, err := st.Add(newRec(t, "2026-01-15", "1000"))
	require.NoError(t, err)
	_, err = st.Add(newRec(t, "2026-03-15", "3000"))
	require.NoError(t, err)
	h := svc.Router()

	w := do(t, h, http.MethodGet, "/v1/months?year=2026", "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp MonthsResponse
	decode(t, w, &resp)
	require.Len(t, resp.Months, 12)
	assert.Equal(t, "737.35", resp.Months[0].NetIncome.String())
	assert.True(t, resp.Months[1].SocialSecurity.IsZero())
	assert.Equal(t, "4000", resp.Totals.TotalIncome.String())

	w = do(t, h, http.MethodGet, "/v1/months?year=26", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSettingsPatch(t *testing.T) {
	svc, _ := newTestService(t)
	h := svc.Router()

	w := do(t, h, http.MethodPatch, "/v1/settings", `{"name":"Ana","insurance_income":"1200"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodGet, "/v1/settings", "")
	var st SettingsView
	decode(t, w, &st)
	assert.Equal(t, "Ana", st.Name)
	assert.True(t, st.SelfInsured)
	assert.True(t, st.InsuranceIncome.Equal(decimal.NewFromInt(1200)))

	w = do(t, h, http.MethodPatch, "/v1/settings", `{"insurance_income":"-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReport(t *testing.T) {
	svc, st := newTestService(t)
	_, err := st.Add(newRec(t, "2026-03-15", "1000"))
	require.NoError(t, err)
	h := svc.Router()

	w := do(t, h, http.MethodGet, "/v1/report?format=pdf&month=3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = do(t, h, http.MethodGet, "/v1/report?format=xlsx&year=2026", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "danak-report.xlsx")

	for _, q := range []string{"format=csv", "month=13", "year=abc"} {
		w = do(t, h, http.MethodGet, "/v1/report?"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestStreamSendsCurrentSummary(t *testing.T) {
	svc, _ := newTestService(t)
	svc.pollOnce()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := httptest.NewRequest(http.MethodGet, "/v1/stream", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	svc.Router().ServeHTTP(w, r)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "event: snapshot\ndata: {"))
	assert.Zero(t, svc.snapshotStatus().SubscriberCount)
}

// gatedRepo holds its first Snapshot call until release is closed.
type gatedRepo struct {
	Repository
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedRepo) Snapshot() (model.Snapshot, error) {
	snap, err := g.Repository.Snapshot()
	first := false
	g.once.Do(func() { first = true })
	if first {
		close(g.entered)
		<-g.release
	}
	return snap, err
}

func TestOverlappingPollsCommitInOrder(t *testing.T) {
	_, st := newTestService(t)
	repo := &gatedRepo{Repository: st, entered: make(chan struct{}), release: make(chan struct{})}
	svc := New(Config{
		App:      config.DefaultConfig(),
		Interval: 10 * time.Second,
		Now:      func() time.Time { return refDate },
	}, repo)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		svc.pollOnce()
	}()
	<-repo.entered

	_, err := st.Add(newRec(t, "2026-03-05", "1000"))
	require.NoError(t, err)
	go func() {
		defer wg.Done()
		svc.pollOnce()
	}()

	time.Sleep(50 * time.Millisecond)
	close(repo.release)
	wg.Wait()

	status := svc.snapshotStatus()
	assert.Equal(t, 1, status.Summary.TotalRecords)
	assert.Equal(t, "737.35", status.Summary.NetIncome.String())

	events := svc.eventsCopy()
	require.Len(t, events, 2)
	assert.Equal(t, "snapshot", events[0].Type)
	assert.Equal(t, "summary_delta", events[1].Type)
	assert.Equal(t, 1, events[1].Delta.Records)

	svc.pollOnce()
	assert.Len(t, svc.eventsCopy(), 2)
}
