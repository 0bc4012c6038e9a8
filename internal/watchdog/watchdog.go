package watchdog

import (
	"sort"
	"sync"
	"time"

	"honeypot-bot/internal/logging"
)

// LastSeen returns the last time a component showed signs of life.
type LastSeen func() time.Time

// Watchdog polls registered components and reports when one goes quiet for
// longer than its threshold.
type Watchdog struct {
	mu            sync.Mutex
	components    map[string]*ComponentHealth
	checkInterval time.Duration
	onChange      func(healthy bool)
	now           func() time.Time

	healthy bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

type ComponentHealth struct {
	Name      string
	Threshold time.Duration
	lastSeen  LastSeen
	healthy   bool
}

// NewWatchdog creates a stopped watchdog. onChange, when set, is called with
// the overall health whenever it flips.
func NewWatchdog(checkInterval time.Duration, onChange func(healthy bool)) *Watchdog {
	return &Watchdog{
		components:    make(map[string]*ComponentHealth),
		checkInterval: checkInterval,
		onChange:      onChange,
		now:           time.Now,
		healthy:       true,
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}
}

func (w *Watchdog) RegisterComponent(name string, threshold time.Duration, lastSeen LastSeen) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.components[name] = &ComponentHealth{
		Name:      name,
		Threshold: threshold,
		lastSeen:  lastSeen,
		healthy:   true,
	}
}

func (w *Watchdog) Start() {
	go w.monitorLoop()
}

func (w *Watchdog) monitorLoop() {
	defer close(w.done)
	ticker := time.NewTicker(w.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check runs one pass over every component.
func (w *Watchdog) Check() {
	w.mu.Lock()
	now := w.now()
	overall := true

	for _, name := range w.sortedNames() {
		comp := w.components[name]
		last := comp.lastSeen()
		if last.IsZero() {
			// never seen alive yet; startup is not an outage
			continue
		}

		elapsed := now.Sub(last)
		healthy := elapsed <= comp.Threshold
		if healthy != comp.healthy {
			if healthy {
				logging.Info("Watchdog: %s recovered", name)
			} else {
				logging.Error("Watchdog: %s unhealthy (no heartbeat for %v)", name, elapsed.Round(time.Second))
			}
			comp.healthy = healthy
		}
		overall = overall && healthy
	}

	changed := overall != w.healthy
	w.healthy = overall
	onChange := w.onChange
	w.mu.Unlock()

	if changed && onChange != nil {
		onChange(overall)
	}
}

func (w *Watchdog) sortedNames() []string {
	names := make([]string, 0, len(w.components))
	for name := range w.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (w *Watchdog) IsHealthy(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if comp, exists := w.components[name]; exists {
		return comp.healthy
	}
	return false
}

// Stop ends the monitor loop. It is safe to call more than once and on a
// watchdog that never started.
func (w *Watchdog) Stop() {
	w.once.Do(func() {
		close(w.stop)
	})
}

func (w *Watchdog) GetStatus() map[string]bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	status := make(map[string]bool, len(w.components))
	for name, comp := range w.components {
		status[name] = comp.healthy
	}
	return status
}
