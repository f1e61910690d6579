// Package health runs a periodic probe of the three HTTP apps so a dead
// component shows up in the logs rather than as a silent string of 502s.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Target is one probed service.
type Target struct {
	Name string
	URL  string // full /health URL
}

// Monitor periodically GETs each target's health endpoint and logs state
// transitions. Probes are observational only; nothing is restarted or
// retried on failure.
type Monitor struct {
	scheduler *gocron.Scheduler
	client    *http.Client
	targets   []Target
	interval  time.Duration
	log       *slog.Logger

	mu    sync.RWMutex
	state map[string]bool
}

func New(targets []Target, interval time.Duration, log *slog.Logger) *Monitor {
	return &Monitor{
		scheduler: gocron.NewScheduler(time.UTC),
		client:    &http.Client{Timeout: 3 * time.Second},
		targets:   targets,
		interval:  interval,
		log:       log,
		state:     make(map[string]bool),
	}
}

// Start schedules the periodic probe and runs one immediately.
func (m *Monitor) Start() error {
	if len(m.targets) == 0 {
		m.log.Info("health monitor: no targets configured")
		return nil
	}

	_, err := m.scheduler.Every(m.interval).Do(m.probeAll)
	if err != nil {
		return err
	}

	m.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels future probes.
func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

// Healthy returns the most recent probe outcome per target name.
func (m *Monitor) Healthy() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]bool, len(m.state))
	for k, v := range m.state {
		out[k] = v
	}
	return out
}

func (m *Monitor) probeAll() {
	var wg sync.WaitGroup
	for _, t := range m.targets {
		t := t
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.probe(t)
		}()
	}
	wg.Wait()
}

func (m *Monitor) probe(t Target) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	healthy := false
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL, nil)
	if err == nil {
		resp, doErr := m.client.Do(req)
		if doErr == nil {
			healthy = resp.StatusCode == http.StatusOK
			resp.Body.Close()
		}
	}

	m.mu.Lock()
	prev, known := m.state[t.Name]
	m.state[t.Name] = healthy
	m.mu.Unlock()

	if !known || prev != healthy {
		if healthy {
			m.log.Info("service healthy", "service", t.Name)
		} else {
			m.log.Warn("service unhealthy", "service", t.Name, "url", t.URL)
		}
	}
}
