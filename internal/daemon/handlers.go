package daemon

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/currency"
	"github.com/theirongolddev/danak/internal/metrics"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
	"github.com/theirongolddev/danak/internal/report"
	"github.com/theirongolddev/danak/internal/store"
)

// RecordView is the JSON form of a stored record.
type RecordView struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Kind        string          `json:"kind"`
	CreatedAt   time.Time       `json:"created_at"`
}

// SettingsView is the JSON form of the settings.
type SettingsView struct {
	Name                   string          `json:"name"`
	EIC                    string          `json:"eic"`
	SelfInsured            bool            `json:"self_insured"`
	InsuranceIncome        decimal.Decimal `json:"insurance_income"`
	UsePersonalBankDetails bool            `json:"use_personal_bank_details"`
}

// CreateRecordRequest is the POST /v1/records body. Amount is in
// Currency, EUR when empty.
type CreateRecordRequest struct {
	Date        string `json:"date" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"required"`
	Kind        string `json:"kind" binding:"omitempty,oneof=income expense"`
	Currency    string `json:"currency" binding:"omitempty,oneof=EUR BGN"`
}

// MonthsResponse is served at /v1/months.
type MonthsResponse struct {
	Year   int           `json:"year"`
	Months []SummaryView `json:"months"`
	Totals SummaryView   `json:"totals"`
}

func recordView(r model.Record) RecordView {
	return RecordView{
		ID:          r.ID,
		Date:        r.Date.Format(model.DateFormat),
		Amount:      r.Amount,
		Description: r.Description,
		Kind:        string(r.Kind),
		CreatedAt:   r.CreatedAt,
	}
}

func settingsView(st model.Settings) SettingsView {
	return SettingsView{
		Name:                   st.Name,
		EIC:                    st.EIC,
		SelfInsured:            st.SelfInsured,
		InsuranceIncome:        st.InsuranceIncome,
		UsePersonalBankDetails: st.UsePersonalBankDetails,
	}
}

// Router builds the HTTP routes.
func (s *Service) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/status", s.handleStatus)
		v1.GET("/summary", s.handleSummary)
		v1.GET("/months", s.handleMonths)
		v1.GET("/records", s.handleListRecords)
		v1.POST("/records", s.handleCreateRecord)
		v1.DELETE("/records/:id", s.handleDeleteRecord)
		v1.GET("/settings", s.handleGetSettings)
		v1.PATCH("/settings", s.handlePatchSettings)
		v1.GET("/events", s.handleEvents)
		v1.GET("/stream", s.handleStream)
		v1.GET("/report", s.handleReport)
	}
	return r
}

func (s *Service) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		metrics.IncHTTPRequest(c.Request.Method, c.FullPath(), status)
		s.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// engineAt resolves the regime in force at ref.
func (s *Service) engineAt(ref time.Time) (pipeline.Engine, error) {
	regime, err := s.cfg.App.RegimeAt(ref)
	if err != nil {
		return pipeline.Engine{}, err
	}
	return pipeline.NewEngine(regime, s.cfg.App.General.BaseMode), nil
}

func (s *Service) serverError(c *gin.Context, err error, msg string) {
	s.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleSummary(c *gin.Context) {
	ref := s.cfg.Now()
	if v := c.Query("date"); v != "" {
		d, err := model.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ref = d
	}

	snap, err := s.repo.Snapshot()
	if err != nil {
		s.serverError(c, err, "failed to read records")
		return
	}
	engine, err := s.engineAt(ref)
	if err != nil {
		s.serverError(c, err, "invalid tax regime")
		return
	}
	c.JSON(http.StatusOK, summaryView(engine.Summarize(snap, ref), len(snap.Records), time.Now()))
}

func (s *Service) handleMonths(c *gin.Context) {
	year := s.cfg.Now().Year()
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1000 || y > 9999 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid year %q", v)})
			return
		}
		year = y
	}

	snap, err := s.repo.Snapshot()
	if err != nil {
		s.serverError(c, err, "failed to read records")
		return
	}
	engine, err := s.engineAt(time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		s.serverError(c, err, "invalid tax regime")
		return
	}

	months := engine.AnnualBreakdown(snap, year)
	resp := MonthsResponse{Year: year, Months: make([]SummaryView, 0, len(months))}
	now := time.Now()
	for _, m := range months {
		resp.Months = append(resp.Months, summaryView(m.Summary, len(snap.Records), now))
	}
	resp.Totals = summaryView(pipeline.AnnualTotals(months), len(snap.Records), now)
	c.JSON(http.StatusOK, resp)
}

func (s *Service) handleListRecords(c *gin.Context) {
	period, err := pipeline.ParsePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := s.repo.Snapshot()
	if err != nil {
		s.serverError(c, err, "failed to read records")
		return
	}
	records := pipeline.FilterBySearch(period.Filter(snap.Records), c.Query("q"))

	views := make([]RecordView, 0, len(records))
	for _, r := range records {
		views = append(views, recordView(r))
	}
	c.JSON(http.StatusOK, gin.H{
		"records": views,
		"total":   pipeline.SumAmounts(records),
	})
}

func (s *Service) handleCreateRecord(c *gin.Context) {
	var req CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	nr, err := req.toNewRecord()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.repo.Add(nr)
	if errors.Is(err, store.ErrInvalidRecord) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.serverError(c, err, "failed to add record")
		return
	}

	s.log.Info().Str("id", rec.ID).Str("amount", rec.Amount.String()).Msg("record added")
	s.pollOnce()
	c.JSON(http.StatusCreated, recordView(rec))
}

func (req CreateRecordRequest) toNewRecord() (model.NewRecord, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return model.NewRecord{}, err
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return model.NewRecord{}, fmt.Errorf("invalid amount %q", req.Amount)
	}
	cur, err := currency.Parse(req.Currency)
	if err != nil {
		return model.NewRecord{}, err
	}
	kind, err := model.ParseKind(req.Kind)
	if err != nil {
		return model.NewRecord{}, err
	}
	return model.NewRecord{
		Date:        date,
		Amount:      currency.ToStorage(amount, cur),
		Description: req.Description,
		Kind:        kind,
	}, nil
}

func (s *Service) handleDeleteRecord(c *gin.Context) {
	id := c.Param("id")
	err := s.repo.Delete(id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.serverError(c, err, "failed to delete record")
		return
	}

	s.log.Info().Str("id", id).Msg("record deleted")
	s.pollOnce()
	c.Status(http.StatusNoContent)
}

func (s *Service) handleGetSettings(c *gin.Context) {
	snap, err := s.repo.Snapshot()
	if err != nil {
		s.serverError(c, err, "failed to read settings")
		return
	}
	c.JSON(http.StatusOK, settingsView(snap.Settings))
}

func (s *Service) handlePatchSettings(c *gin.Context) {
	var patch model.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	if patch.InsuranceIncome != nil && patch.InsuranceIncome.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "insurance_income must not be negative"})
		return
	}

	st, err := s.repo.UpdateSettings(patch)
	if err != nil {
		s.serverError(c, err, "failed to update settings")
		return
	}
	s.pollOnce()
	c.JSON(http.StatusOK, settingsView(st))
}

func (s *Service) handleEvents(c *gin.Context) {
	c.JSON(http.StatusOK, s.eventsCopy())
}

func (s *Service) handleStream(c *gin.Context) {
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current summary immediately.
	writeSSE(w, Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Summary:   s.snapshotStatus().Summary,
	})
	w.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			w.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) handleReport(c *gin.Context) {
	format := c.DefaultQuery("format", "pdf")
	if format != "pdf" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q (want pdf or xlsx)", format)})
		return
	}

	periodArg := c.Query("year")
	if m := c.Query("month"); m != "" {
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid month %q", m)})
			return
		}
		if periodArg == "" {
			periodArg = strconv.Itoa(s.cfg.Now().Year())
		}
		periodArg = fmt.Sprintf("%s-%02d", periodArg, month)
	}
	period, err := pipeline.ParsePeriod(periodArg)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	snap, err := s.repo.Snapshot()
	if err != nil {
		s.serverError(c, err, "failed to read records")
		return
	}
	doc := report.BuildDocument(snap, period, s.cfg.Now())
	if period.Year != 0 {
		engine, err := s.engineAt(time.Date(period.Year, time.December, 31, 0, 0, 0, 0, time.UTC))
		if err != nil {
			s.serverError(c, err, "invalid tax regime")
			return
		}
		doc = doc.WithBreakdown(engine, snap)
	}

	var (
		data        []byte
		contentType string
	)
	switch format {
	case "xlsx":
		data, err = report.XLSX(doc)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		data, err = report.PDF(doc)
		contentType = "application/pdf"
	}
	if err != nil {
		s.serverError(c, err, "failed to render report")
		return
	}

	metrics.IncExport(format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="danak-report.%s"`, format))
	c.Data(http.StatusOK, contentType, data)
}
