// Package session holds the dashboard's request state: the four-value status
// flag, the last result or error, and whether the settings panel is open.
//
// Overlapping submissions are ordered with a per-request token. With
// DiscardStale set only the most recently started request may settle the
// state; otherwise the last settlement wins.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/raysh454/codeprobe/internal/analyzer"
	"github.com/raysh454/codeprobe/internal/logging"
	"github.com/raysh454/codeprobe/internal/model"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Snapshot is a copy of the tracker state.
type Snapshot struct {
	Token        uint64                `json:"token"`
	Status       Status                `json:"status"`
	Result       *model.AnalysisResult `json:"result,omitempty"`
	Summary      *model.Summary        `json:"summary,omitempty"`
	Error        string                `json:"error,omitempty"`
	ErrorKind    analyzer.Kind         `json:"error_kind,omitempty"`
	SettingsOpen bool                  `json:"settings_open"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// Config controls tracker behaviour. It is embedded in app.Config.
type Config struct {
	// DiscardStale drops results of requests that were superseded by a newer
	// one. When false the most recently settled request wins.
	DiscardStale bool
}

type Tracker struct {
	cfg    Config
	logger logging.Logger

	mu     sync.Mutex
	latest uint64
	state  Snapshot
	subs   map[int]chan Snapshot
	nextID int
}

func NewTracker(cfg Config, logger logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Tracker{
		cfg:    cfg,
		logger: logger.With(logging.Field{Key: "component", Value: "session"}),
		state:  Snapshot{Status: StatusIdle, UpdatedAt: time.Now().UTC()},
		subs:   make(map[int]chan Snapshot),
	}
}

// Begin issues a new token and moves to loading, clearing the previous
// result and error.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.latest++
	t.state.Token = t.latest
	t.state.Status = StatusLoading
	t.state.Result = nil
	t.state.Summary = nil
	t.state.Error = ""
	t.state.ErrorKind = ""
	t.touchLocked()
	return t.latest
}

// Succeed records res for token. It reports false when the settlement was
// discarded as stale.
func (t *Tracker) Succeed(token uint64, res *model.AnalysisResult) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.acceptLocked(token) {
		return false
	}
	summary := model.Summarize(res)
	t.state.Token = token
	t.state.Status = StatusSuccess
	t.state.Result = res
	t.state.Summary = &summary
	t.state.Error = ""
	t.state.ErrorKind = ""
	t.state.SettingsOpen = false
	t.touchLocked()
	return true
}

// Fail records err for token. Connection and security failures open the
// settings panel. It reports false when the settlement was discarded.
func (t *Tracker) Fail(token uint64, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.acceptLocked(token) {
		return false
	}
	t.state.Token = token
	t.state.Status = StatusError
	t.state.Result = nil
	t.state.Summary = nil
	t.state.Error = err.Error()
	t.state.ErrorKind = ""

	var aerr *analyzer.Error
	if errors.As(err, &aerr) {
		t.state.ErrorKind = aerr.Kind
		if aerr.ReopensSettings() {
			t.state.SettingsOpen = true
		}
	}
	t.touchLocked()
	return true
}

// Reset returns to idle. In-flight requests may still settle afterwards.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.state.Status = StatusIdle
	t.state.Result = nil
	t.state.Summary = nil
	t.state.Error = ""
	t.state.ErrorKind = ""
	t.touchLocked()
}

// SetSettingsOpen toggles the settings panel flag.
func (t *Tracker) SetSettingsOpen(open bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.SettingsOpen = open
	t.touchLocked()
}

// RequireSettings records a local configuration error without issuing a
// token: status becomes error and the settings panel opens.
func (t *Tracker) RequireSettings(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Status = StatusError
	t.state.Error = msg
	t.state.ErrorKind = ""
	t.state.SettingsOpen = true
	t.touchLocked()
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Subscribe returns a channel receiving every state change, starting with
// the current state. Slow subscribers miss intermediate snapshots. cancel
// closes the channel.
func (t *Tracker) Subscribe() (<-chan Snapshot, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	ch := make(chan Snapshot, 8)
	ch <- t.state
	t.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (t *Tracker) acceptLocked(token uint64) bool {
	if token == t.latest || !t.cfg.DiscardStale {
		return true
	}
	t.logger.Warn("discarding stale result",
		logging.Field{Key: "token", Value: token},
		logging.Field{Key: "latest", Value: t.latest})
	return false
}

// touchLocked stamps the state and fans it out. Non-blocking send; drop if
// a subscriber's buffer is full.
func (t *Tracker) touchLocked() {
	t.state.UpdatedAt = time.Now().UTC()
	for _, ch := range t.subs {
		select {
		case ch <- t.state:
		default:
		}
	}
}
