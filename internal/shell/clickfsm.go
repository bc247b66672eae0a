package shell

import (
	"sync"
	"time"
)

// Interaction timing. The double-click window allows a second click to
// arrive; taps shorter than the tap threshold always launch on touch
// devices regardless of click mode.
const (
	DoubleClickWindow = 250 * time.Millisecond
	TapThreshold      = 500 * time.Millisecond
)

// clickOutcome is the resolution of a click sequence on one icon.
type clickOutcome int

const (
	outcomeSelect clickOutcome = iota
	outcomeLaunch
)

type clickState int

const (
	clickIdle clickState = iota
	clickAwaitingSecond
)

// clickMachine disambiguates click intent for a single icon. It is an
// explicit two-state machine (Idle, AwaitingSecondClick) rather than
// nested timer closures, with the clock injected so tests drive it
// deterministically.
//
// The double-click setting is re-read through freshMode on every
// click, not captured at icon creation: a settings change must take
// effect on the very next interaction.
type clickMachine struct {
	appID     string
	clock     Clock
	freshMode func() bool
	resolve   func(appID string, outcome clickOutcome)

	mu     sync.Mutex
	state  clickState
	clicks int
	timer  Timer
}

func newClickMachine(appID string, clock Clock, freshMode func() bool, resolve func(string, clickOutcome)) *clickMachine {
	return &clickMachine{
		appID:     appID,
		clock:     clock,
		freshMode: freshMode,
		resolve:   resolve,
	}
}

// Click feeds one click into the machine. In single-click mode the
// sequence resolves synchronously; in double-click mode the pending
// timer is reset and re-armed so overlapping launches cannot happen.
func (m *clickMachine) Click() {
	doubleMode := m.freshMode()

	m.mu.Lock()
	m.clicks++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}

	if !doubleMode {
		clicks := m.clicks
		m.clicks = 0
		m.state = clickIdle
		m.mu.Unlock()
		if clicks > 0 {
			m.resolve(m.appID, outcomeLaunch)
		}
		return
	}

	m.state = clickAwaitingSecond
	m.timer = m.clock.AfterFunc(DoubleClickWindow, m.fire)
	m.mu.Unlock()
}

// fire resolves a pending double-click-mode sequence: one click
// selects, two or more launch. The count resets regardless.
func (m *clickMachine) fire() {
	m.mu.Lock()
	clicks := m.clicks
	m.clicks = 0
	m.state = clickIdle
	m.timer = nil
	m.mu.Unlock()

	switch {
	case clicks == 1:
		m.resolve(m.appID, outcomeSelect)
	case clicks >= 2:
		m.resolve(m.appID, outcomeLaunch)
	}
}

// Tap feeds a touch tap. Taps under the threshold always launch; touch
// devices are single-tap-to-open by convention, independent of the
// double-click setting.
func (m *clickMachine) Tap(duration time.Duration) {
	if duration >= TapThreshold {
		return
	}

	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.clicks = 0
	m.state = clickIdle
	m.mu.Unlock()

	m.resolve(m.appID, outcomeLaunch)
}

// cancel drops any pending resolution. Used when the icon set is
// rebuilt.
func (m *clickMachine) cancel() {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.clicks = 0
	m.state = clickIdle
	m.mu.Unlock()
}
