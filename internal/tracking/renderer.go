package tracking

import (
	"sync"
	"time"

	"livemap.onebusaway.org/internal/geo"
)

// Renderer is the drawing surface behind a session. Commit starts moving a marker
// from one position to another over duration; zero duration places it directly.
type Renderer interface {
	Commit(vehicleID string, from, to geo.Point, duration time.Duration)
	Cancel(vehicleID string)
}

// Animator turns change sets into renderer commits.
type Animator struct {
	renderer Renderer
	noise    float64
	duration time.Duration
}

// NewAnimator returns an observer that drives renderer from change sets.
func NewAnimator(renderer Renderer, cfg Config) *Animator {
	cfg = cfg.WithDefaults()
	return &Animator{
		renderer: renderer,
		noise:    cfg.NoiseThresholdMeters,
		duration: cfg.animationDuration(),
	}
}

// Duration is the interpolation time used for updates.
func (a *Animator) Duration() time.Duration {
	return a.duration
}

// OnChange implements Observer.
func (a *Animator) OnChange(cs ChangeSet) {
	for _, v := range cs.Created {
		a.renderer.Commit(v.ID, v.Point(), v.Point(), 0)
	}
	for _, u := range cs.Updated {
		to := u.Vehicle.Point()
		if geo.Haversine(u.From, to) < a.noise {
			continue
		}
		a.renderer.Commit(u.Vehicle.ID, u.From, to, a.duration)
	}
	for _, id := range cs.Removed {
		a.renderer.Cancel(id)
	}
}

type motion struct {
	from, to geo.Point
	start    time.Time
	duration time.Duration
}

func (m motion) at(t time.Time) (geo.Point, bool) {
	if m.duration <= 0 {
		return m.to, false
	}
	elapsed := t.Sub(m.start)
	if elapsed >= m.duration {
		return m.to, false
	}
	if elapsed < 0 {
		elapsed = 0
	}
	f := float64(elapsed) / float64(m.duration)
	return geo.Point{
		Lat: m.from.Lat + (m.to.Lat-m.from.Lat)*f,
		Lon: m.from.Lon + (m.to.Lon-m.from.Lon)*f,
	}, true
}

// MotionBoard is an in-process Renderer that remembers the last commit per vehicle
// and answers where a marker is at a given instant.
type MotionBoard struct {
	mu      sync.Mutex
	now     func() time.Time
	motions map[string]motion
}

// NewMotionBoard returns an empty board reading time from now.
func NewMotionBoard(now func() time.Time) *MotionBoard {
	if now == nil {
		now = time.Now
	}
	return &MotionBoard{now: now, motions: make(map[string]motion)}
}

func (b *MotionBoard) Commit(vehicleID string, from, to geo.Point, duration time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.motions[vehicleID] = motion{from: from, to: to, start: b.now(), duration: duration}
}

func (b *MotionBoard) Cancel(vehicleID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.motions, vehicleID)
}

// PositionAt interpolates the marker position at t. animating is false once the
// motion has finished. ok is false when nothing was committed for vehicleID.
func (b *MotionBoard) PositionAt(vehicleID string, t time.Time) (p geo.Point, animating, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	m, ok := b.motions[vehicleID]
	if !ok {
		return geo.Point{}, false, false
	}
	p, animating = m.at(t)
	return p, animating, true
}

// Animating counts the motions still in flight at t.
func (b *MotionBoard) Animating(t time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.motions {
		if _, moving := m.at(t); moving {
			n++
		}
	}
	return n
}

func (b *MotionBoard) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.motions)
}
