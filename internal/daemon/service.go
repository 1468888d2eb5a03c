// Package daemon provides the long-running tax monitor service and its
// HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/logger"
	"github.com/theirongolddev/danak/internal/metrics"
	"github.com/theirongolddev/danak/internal/model"
	"github.com/theirongolddev/danak/internal/pipeline"
)

// Repository is the record store as seen by the daemon.
type Repository interface {
	pipeline.SnapshotSource
	Add(nr model.NewRecord) (model.Record, error)
	Delete(id string) error
	UpdateSettings(p model.SettingsPatch) (model.Settings, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	App          config.Config
	DBPath       string
	Interval     time.Duration
	Addr         string
	EventsBuffer int

	// Now supplies the reference date; defaults to time.Now.
	Now func() time.Time
}

// SummaryView is the JSON form of a month's tax summary.
type SummaryView struct {
	At                 time.Time       `json:"at"`
	Year               int             `json:"year"`
	Month              int             `json:"month"`
	MonthRecords       int             `json:"month_records"`
	YearRecords        int             `json:"year_records"`
	TotalRecords       int             `json:"total_records"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	StatutoryExpenses  decimal.Decimal `json:"statutory_expenses"`
	TaxableIncomeBase  decimal.Decimal `json:"taxable_income_base"`
	SocialSecurityBase decimal.Decimal `json:"social_security_base"`
	SocialSecurity     decimal.Decimal `json:"social_security"`
	TaxBase            decimal.Decimal `json:"tax_base"`
	IncomeTax          decimal.Decimal `json:"income_tax"`
	NetIncome          decimal.Decimal `json:"net_income"`
	YearlyTurnover     decimal.Decimal `json:"yearly_turnover"`
	VATThreshold       decimal.Decimal `json:"vat_threshold"`
	VATProgressPercent decimal.Decimal `json:"vat_progress_percent"`
}

// Delta captures summary changes between polls.
type Delta struct {
	Records        int             `json:"records"`
	TotalIncome    decimal.Decimal `json:"total_income"`
	SocialSecurity decimal.Decimal `json:"social_security"`
	IncomeTax      decimal.Decimal `json:"income_tax"`
	NetIncome      decimal.Decimal `json:"net_income"`
	YearlyTurnover decimal.Decimal `json:"yearly_turnover"`
}

func (d Delta) isZero() bool {
	return d.Records == 0 &&
		d.TotalIncome.IsZero() &&
		d.SocialSecurity.IsZero() &&
		d.IncomeTax.IsZero() &&
		d.NetIncome.IsZero() &&
		d.YearlyTurnover.IsZero()
}

// Event is emitted whenever the summary changes.
type Event struct {
	ID        int64       `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Summary   SummaryView `json:"summary"`
	Delta     Delta       `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time   `json:"started_at"`
	LastPollAt      time.Time   `json:"last_poll_at"`
	PollIntervalSec int         `json:"poll_interval_sec"`
	PollCount       int64       `json:"poll_count"`
	DBPath          string      `json:"db_path"`
	BaseMode        string      `json:"base_mode"`
	Summary         SummaryView `json:"summary"`
	LastError       string      `json:"last_error,omitempty"`
	EventCount      int         `json:"event_count"`
	SubscriberCount int         `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg  Config
	repo Repository
	log  zerolog.Logger

	// pollMu orders polls so a slower, older load never commits last.
	pollMu sync.Mutex

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSummary  bool
	summary     SummaryView
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service reading from repo.
func New(cfg Config, repo Repository) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultConfig().Server.Addr
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	metrics.Init()
	return &Service{
		cfg:       cfg,
		repo:      repo,
		log:       logger.WithComponent("daemon"),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Dur("interval", s.cfg.Interval).Msg("daemon started")

	// Seed initial summary so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.log.Info().Msg("daemon stopping")
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	start := time.Now()
	res, err := pipeline.Load(s.repo, s.cfg.App, s.cfg.Now())
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		metrics.ObservePoll(metrics.ResultError, time.Since(start))
		s.log.Error().Err(err).Msg("poll failed")
		return
	}

	now := time.Now()
	view := summaryView(res.Summary, len(res.Snapshot.Records), now)
	metrics.SetSummary(res.Summary, len(res.Snapshot.Records))

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.summary
	prevExists := s.hasSummary

	s.hasSummary = true
	s.summary = view
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "snapshot", Timestamp: now, Summary: view}
		publish = true
	} else if delta := diffSummaries(prev, view); !delta.isZero() || prev.Month != view.Month || prev.Year != view.Year {
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: "summary_delta", Timestamp: now, Summary: view, Delta: delta}
		publish = true
	}
	s.mu.Unlock()

	metrics.ObservePoll(metrics.ResultSuccess, time.Since(start))
	s.log.Debug().Int("records", view.TotalRecords).Dur("took", time.Since(start)).Msg("poll")

	if publish {
		s.publishEvent(ev)
	}
}

func summaryView(sum model.TaxSummary, totalRecords int, at time.Time) SummaryView {
	return SummaryView{
		At:                 at,
		Year:               sum.Year,
		Month:              int(sum.Month),
		MonthRecords:       sum.MonthRecords,
		YearRecords:        sum.YearRecords,
		TotalRecords:       totalRecords,
		TotalIncome:        sum.TotalIncome,
		StatutoryExpenses:  sum.StatutoryExpenses,
		TaxableIncomeBase:  sum.TaxableIncomeBase,
		SocialSecurityBase: sum.SocialSecurityBase,
		SocialSecurity:     sum.SocialSecurity,
		TaxBase:            sum.TaxBase,
		IncomeTax:          sum.IncomeTax,
		NetIncome:          sum.NetIncome,
		YearlyTurnover:     sum.YearlyTurnover,
		VATThreshold:       sum.VATThreshold,
		VATProgressPercent: sum.VATProgressPercent,
	}
}

func diffSummaries(prev, curr SummaryView) Delta {
	return Delta{
		Records:        curr.TotalRecords - prev.TotalRecords,
		TotalIncome:    curr.TotalIncome.Sub(prev.TotalIncome),
		SocialSecurity: curr.SocialSecurity.Sub(prev.SocialSecurity),
		IncomeTax:      curr.IncomeTax.Sub(prev.IncomeTax),
		NetIncome:      curr.NetIncome.Sub(prev.NetIncome),
		YearlyTurnover: curr.YearlyTurnover.Sub(prev.YearlyTurnover),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		BaseMode:        string(s.cfg.App.General.BaseMode),
		Summary:         s.summary,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) eventsCopy() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
