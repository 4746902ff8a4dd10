// Package daemon provides the long-running portfolio watch service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"pburn/internal/model"
	"pburn/internal/pipeline"
	"pburn/internal/store"
)

// Config controls the daemon runtime behavior.
type Config struct {
	DataDir           string
	ProjectFilter     string
	VarianceThreshold float64
	RiskThreshold     float64
	UseCache          bool
	Watch             bool
	Interval          time.Duration
	Addr              string
	EventsBuffer      int
}

// Snapshot is a compact portfolio state for status/event payloads.
type Snapshot struct {
	At            time.Time `json:"at"`
	Projects      int       `json:"projects"`
	RiskyProjects int       `json:"risky_projects"`
	TotalBudget   float64   `json:"total_budget"`
	TotalSpend    float64   `json:"total_spend"`
	TotalForecast float64   `json:"total_forecast"`
	TopProjectID  string    `json:"top_project_id,omitempty"`
	TopRiskScore  float64   `json:"top_risk_score"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Projects      int     `json:"projects"`
	RiskyProjects int     `json:"risky_projects"`
	TotalSpend    float64 `json:"total_spend"`
	TotalForecast float64 `json:"total_forecast"`
}

func (d Delta) isZero() bool {
	return d.Projects == 0 &&
		d.RiskyProjects == 0 &&
		d.TotalSpend == 0 &&
		d.TotalForecast == 0
}

// Event is emitted whenever the portfolio snapshot changes.
type Event struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Snapshot   Snapshot  `json:"snapshot"`
	Delta      Delta     `json:"delta"`
	NewlyRisky []string  `json:"newly_risky,omitempty"`
	Cleared    []string  `json:"cleared,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DataDir         string    `json:"data_dir"`
	ProjectFilter   string    `json:"project_filter,omitempty"`
	Watching        bool      `json:"watching"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// portfolioPayload is served at /v1/portfolio.
type portfolioPayload struct {
	At          time.Time              `json:"at"`
	Rows        model.PortfolioSummary `json:"rows"`
	Assessments []model.RiskAssessment `json:"assessments"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	rows        model.PortfolioSummary
	assessments []model.RiskAssessment
	riskySet    map[string]struct{}
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 15 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8878"
	}

	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
		riskySet:  make(map[string]struct{}),
		subs:      make(map[int]chan Event),
	}
}

// Run starts HTTP endpoints and polling until ctx is canceled. With Watch
// enabled, filesystem events on the data directory trigger early polls in
// addition to the interval ticker.
func (s *Service) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/portfolio", s.handlePortfolio)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)

	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var wake <-chan struct{}
	if s.cfg.Watch {
		w, err := watchDir(ctx, s.cfg.DataDir)
		if err != nil {
			log.Printf("pburn daemon: watch disabled: %v", err)
		} else {
			wake = w
		}
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce()
		case <-wake:
			s.pollOnce()
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce() {
	series, err := s.loadSeries()
	if err != nil {
		s.recordPollError(err)
		return
	}

	if s.cfg.ProjectFilter != "" {
		series = pipeline.FilterByProject(series, s.cfg.ProjectFilter)
	}

	snap, err := pipeline.Snapshot(series, s.cfg.VarianceThreshold, s.cfg.RiskThreshold)
	if err != nil {
		s.recordPollError(err)
		return
	}

	now := time.Now()
	compact := compactSnapshot(snap, now)

	risky := make(map[string]struct{})
	for i, row := range snap.Rows {
		if snap.Assessments[i].IsRisky {
			risky[row.ProjectID] = struct{}{}
		}
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot
	prevRisky := s.riskySet

	s.hasSnapshot = true
	s.snapshot = compact
	s.rows = snap.Rows
	s.assessments = snap.Assessments
	s.riskySet = risky
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  compact,
		}
		publish = true
	} else {
		delta := diffSnapshots(prev, compact)
		newlyRisky, cleared := diffRiskySets(prevRisky, risky)
		if !delta.isZero() || len(newlyRisky) > 0 || len(cleared) > 0 {
			s.nextEventID++
			evType := "portfolio_delta"
			if len(newlyRisky) > 0 || len(cleared) > 0 {
				evType = "risk_change"
			}
			ev = Event{
				ID:         s.nextEventID,
				Type:       evType,
				Timestamp:  now,
				Snapshot:   compact,
				Delta:      delta,
				NewlyRisky: newlyRisky,
				Cleared:    cleared,
			}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.publishEvent(ev)
	}
}

func (s *Service) recordPollError(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.lastPollAt = time.Now()
	s.pollCount++
	s.mu.Unlock()
	log.Printf("pburn daemon poll error: %v", err)
}

func (s *Service) loadSeries() ([]model.ProjectSeries, error) {
	if s.cfg.UseCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			defer func() { _ = cache.Close() }()
			cr, loadErr := pipeline.LoadWithCache(s.cfg.DataDir, cache, nil)
			if loadErr == nil {
				return cr.Series, nil
			}
		}
	}

	result, err := pipeline.Load(s.cfg.DataDir, nil)
	if err != nil {
		return nil, err
	}
	return result.Series, nil
}

func compactSnapshot(snap pipeline.PortfolioSnapshot, at time.Time) Snapshot {
	compact := Snapshot{
		At:            at,
		Projects:      len(snap.Rows),
		RiskyProjects: snap.RiskyCount,
		TotalBudget:   snap.TotalBudget,
		TotalSpend:    snap.TotalSpend,
		TotalForecast: snap.TotalForecast,
	}
	if len(snap.Rows) > 0 {
		compact.TopProjectID = snap.Rows[0].ProjectID
		compact.TopRiskScore = snap.Rows[0].RiskScore
	}
	return compact
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Projects:      curr.Projects - prev.Projects,
		RiskyProjects: curr.RiskyProjects - prev.RiskyProjects,
		TotalSpend:    curr.TotalSpend - prev.TotalSpend,
		TotalForecast: curr.TotalForecast - prev.TotalForecast,
	}
}

// diffRiskySets returns project ids that entered and left the risky set,
// sorted so event payloads are deterministic.
func diffRiskySets(prev, curr map[string]struct{}) (newlyRisky, cleared []string) {
	for id := range curr {
		if _, ok := prev[id]; !ok {
			newlyRisky = append(newlyRisky, id)
		}
	}
	for id := range prev {
		if _, ok := curr[id]; !ok {
			cleared = append(cleared, id)
		}
	}
	sort.Strings(newlyRisky)
	sort.Strings(cleared)
	return newlyRisky, cleared
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
		DataDir:         s.cfg.DataDir,
		ProjectFilter:   s.cfg.ProjectFilter,
		Watching:        s.cfg.Watch,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.snapshotStatus())
}

func (s *Service) handlePortfolio(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	payload := portfolioPayload{
		At:          s.lastPollAt,
		Rows:        append(model.PortfolioSummary(nil), s.rows...),
		Assessments: append([]model.RiskAssessment(nil), s.assessments...),
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// handleEvents returns buffered events, optionally only those after a given
// id (?after=N) so pollers can fetch incrementally.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	var after int64
	if v := r.URL.Query().Get("after"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid after parameter", http.StatusBadRequest)
			return
		}
		after = parsed
	}

	s.mu.RLock()
	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID > after {
			events = append(events, ev)
		}
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      "snapshot",
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
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
