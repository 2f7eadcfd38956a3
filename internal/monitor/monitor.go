// Package monitor runs the display loop: poll travel times on a schedule,
// classify the delta, and animate the strip. A single goroutine owns all
// loop state; everything is driven by clock ticks through an explicit
// idle/polling/rendering state machine.
package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/anggasct/fluo"

	"github.com/witnessmenow/bridge-traffic-display/internal/display"
	"github.com/witnessmenow/bridge-traffic-display/internal/models"
	"github.com/witnessmenow/bridge-traffic-display/internal/repositories"
	"github.com/witnessmenow/bridge-traffic-display/internal/telemetry"
	"github.com/witnessmenow/bridge-traffic-display/internal/traffic"
)

const (
	defaultPollTimeout = 10 * time.Second
	twinklePauseFrames = 8
	storeTimeout       = 5 * time.Second
)

// Config carries the loop schedule and the watched route.
type Config struct {
	Route           models.Route
	PollInterval    time.Duration
	TwinkleInterval time.Duration
	FrameInterval   time.Duration
	PollTimeout     time.Duration
}

// Status is the read-only snapshot published after every tick.
type Status struct {
	State       string                `json:"state"`
	Color       string                `json:"color"`
	Paused      bool                  `json:"paused"`
	LastSample  *models.TrafficSample `json:"last_sample,omitempty"`
	LastError   string                `json:"last_error,omitempty"`
	NextPoll    time.Time             `json:"next_poll"`
	NextTwinkle time.Time             `json:"next_twinkle"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// Monitor owns the current color, both deadlines and the in-flight
// animation. All mutation happens on the tick path.
type Monitor struct {
	cfg      Config
	logger   *slog.Logger
	provider traffic.Provider
	strip    *display.Strip
	sink     telemetry.Sink
	repo     repositories.SampleRepository

	machine fluo.Machine
	runCtx  context.Context

	color        models.ColorState
	prevColor    models.ColorState
	lastSample   *models.TrafficSample
	lastErr      error
	pollDeadline time.Time
	renderAt     time.Time
	anim         *display.Animation
	sweepReverse bool

	mu      sync.RWMutex
	paused  bool
	pollNow bool
	status  Status
}

// New builds a monitor. repo may be nil when history is disabled.
func New(cfg Config, logger *slog.Logger, provider traffic.Provider, strip *display.Strip, sink telemetry.Sink, repo repositories.SampleRepository) *Monitor {
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	m := &Monitor{
		cfg:      cfg,
		logger:   logger,
		provider: provider,
		strip:    strip,
		sink:     sink,
		repo:     repo,
		color:    models.ColorGreen,
	}
	m.machine = m.buildMachine()
	return m
}

// Start enters the initial state, lights the strip and schedules the first
// poll for right away.
func (m *Monitor) Start(now time.Time) error {
	if err := m.machine.Start(); err != nil {
		return err
	}
	if err := m.strip.Fill(display.ColorFor(m.color)); err != nil {
		m.logger.Warn("initial strip fill failed", "error", err)
	}
	m.pollDeadline = now
	m.renderAt = now.Add(m.cfg.TwinkleInterval)
	m.publishStatus(now)
	return nil
}

// Run drives the loop until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.runCtx = ctx
	if err := m.Start(time.Now()); err != nil {
		return err
	}

	ticker := time.NewTicker(m.cfg.FrameInterval)
	defer ticker.Stop()

	m.logger.Info("monitor started",
		"poll_interval", m.cfg.PollInterval,
		"twinkle_interval", m.cfg.TwinkleInterval,
		"leds", m.strip.Len())

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("monitor stopped")
			return nil
		case t := <-ticker.C:
			m.Tick(t)
		}
	}
}

// Tick advances the loop by one clock tick: it checks the two deadlines in
// idle, and drains one animation frame while rendering.
func (m *Monitor) Tick(now time.Time) {
	m.mu.Lock()
	paused := m.paused
	if m.pollNow {
		m.pollDeadline = now
		m.pollNow = false
	}
	m.mu.Unlock()
	if paused {
		return
	}

	switch m.machine.CurrentState() {
	case stateIdle:
		if !now.Before(m.pollDeadline) {
			if res := m.machine.HandleEvent(eventPollDue, now); !res.Success() {
				break
			}
			if m.lastErr != nil {
				m.machine.HandleEvent(eventPollFailed, now)
			} else {
				m.machine.HandleEvent(eventPollOK, now)
			}
		} else if !now.Before(m.renderAt) {
			m.machine.HandleEvent(eventRenderDue, now)
		}
	case stateRendering:
		m.machine.HandleEvent(eventFrame, now)
		if m.anim.Done() {
			m.machine.HandleEvent(eventAnimationDone, now)
		}
	}

	m.publishStatus(now)
}

// Pause suspends polling and rendering, leaving the strip as it is. Used
// while the device sits in forced provisioning mode.
func (m *Monitor) Pause(v bool) {
	m.mu.Lock()
	m.paused = v
	m.mu.Unlock()
}

// PollNow makes the next tick poll immediately, e.g. after a credential was
// provisioned.
func (m *Monitor) PollNow() {
	m.mu.Lock()
	m.pollNow = true
	m.mu.Unlock()
}

// Status returns the last published snapshot.
func (m *Monitor) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) publishStatus(now time.Time) {
	st := Status{
		State:       m.machine.CurrentState(),
		Color:       m.color.String(),
		LastSample:  m.lastSample,
		NextPoll:    m.pollDeadline,
		NextTwinkle: m.renderAt,
		UpdatedAt:   now,
	}
	if m.lastErr != nil {
		st.LastError = m.lastErr.Error()
	}

	m.mu.Lock()
	st.Paused = m.paused
	m.status = st
	m.mu.Unlock()
}

// pollAction performs the network poll. Always reschedules the poll
// deadline; on failure the display stays unchanged and the twinkle schedule
// is left alone.
func (m *Monitor) pollAction(ctx fluo.Context) error {
	now, _ := ctx.GetEventData().(time.Time)

	parent := m.runCtx
	if parent == nil {
		parent = context.Background()
	}
	pctx, cancel := context.WithTimeout(parent, m.cfg.PollTimeout)
	defer cancel()

	sample, err := m.provider.Sample(pctx, m.cfg.Route)
	m.lastErr = err
	m.pollDeadline = now.Add(m.cfg.PollInterval)

	if err != nil {
		m.logger.Warn("traffic poll failed", "error", err, "next_poll", m.pollDeadline)
		return nil
	}

	color := sample.Color()
	changed := color != m.color
	m.prevColor = m.color
	m.color = color
	m.lastSample = &sample
	m.renderAt = now.Add(m.cfg.TwinkleInterval)

	m.logger.Info("traffic poll",
		"duration_sec", sample.DurationWithoutTraffic,
		"duration_in_traffic_sec", sample.DurationWithTraffic,
		"delta_sec", sample.Delta(),
		"color", color.String())

	m.publish(sample, color, changed)
	return nil
}

func (m *Monitor) sweepAction(fluo.Context) error {
	m.anim = display.Sweep(m.strip.Len(), display.ColorFor(m.prevColor), display.ColorFor(m.color), m.sweepReverse)
	m.sweepReverse = !m.sweepReverse
	return nil
}

func (m *Monitor) twinkleAction(ctx fluo.Context) error {
	now, _ := ctx.GetEventData().(time.Time)
	m.anim = display.Twinkle(m.strip.Len(), display.ColorFor(m.color), twinklePauseFrames)
	m.renderAt = now.Add(m.cfg.TwinkleInterval)
	return nil
}

func (m *Monitor) frameAction(fluo.Context) error {
	frame, ok := m.anim.Next()
	if !ok {
		return nil
	}
	if err := m.strip.Apply(frame); err != nil {
		m.logger.Warn("frame render failed", "error", err)
	}
	return nil
}

// publish fans the sample out to telemetry and history. Failures are logged
// and absorbed; they never fail the poll.
func (m *Monitor) publish(sample models.TrafficSample, color models.ColorState, changed bool) {
	msg, err := json.Marshal(telemetry.NewSampleEvent(sample, color))
	if err != nil {
		m.logger.Warn("encode sample event failed", "error", err)
		return
	}

	if err := m.sink.WriteMessage(telemetry.TopicSamples, msg); err != nil {
		m.logger.Warn("telemetry write failed", "topic", telemetry.TopicSamples, "error", err)
	}
	if changed {
		if err := m.sink.WriteMessage(telemetry.TopicColorChanges, msg); err != nil {
			m.logger.Warn("telemetry write failed", "topic", telemetry.TopicColorChanges, "error", err)
		}
	}

	if m.repo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := m.repo.Save(ctx, sample, color); err != nil {
			m.logger.Warn("history save failed", "error", err)
		}
	}
}
