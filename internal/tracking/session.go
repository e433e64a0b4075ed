package tracking

import (
	"log/slog"
	"sync"
	"time"

	"github.com/paulmach/orb/geojson"

	"livemap.onebusaway.org/internal/geo"
)

// Session is one viewer's map: its store, trail, reconciler and animation board.
// All methods are safe for concurrent use; passes are strictly serialized.
type Session struct {
	mu sync.Mutex

	id         string
	cfg        Config
	now        func() time.Time
	store      *PositionStore
	trail      *TrailRecorder
	reconciler *Reconciler
	board      *MotionBoard
	animator   *Animator

	unsubscribe []func()
	lastActive  time.Time
	closed      bool
}

// SessionOptions configure NewSession. Only ID is required.
type SessionOptions struct {
	ID     string
	Config Config
	Shapes ShapeSource
	Logger *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewSession wires a fresh store, trail, reconciler and animator for one viewer.
func NewSession(opts SessionOptions) *Session {
	cfg := opts.Config.WithDefaults()
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("session_id", opts.ID))

	store := NewPositionStore()
	trail := NewTrailRecorder(cfg.TrailMaxPoints, cfg.TrailMaxAge)
	board := NewMotionBoard(now)
	animator := NewAnimator(board, cfg)

	s := &Session{
		id:         opts.ID,
		cfg:        cfg,
		now:        now,
		store:      store,
		trail:      trail,
		reconciler: NewReconciler(store, trail, opts.Shapes, cfg, logger),
		board:      board,
		animator:   animator,
		lastActive: now(),
	}
	s.unsubscribe = append(s.unsubscribe, store.Subscribe(animator))
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Config() Config {
	return s.cfg
}

// Subscribe registers an extra observer of change sets. The returned func
// takes the session lock, so it must not be called from inside an observer.
func (s *Session) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remove := s.store.Subscribe(o)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		remove()
	}
}

// Apply runs one reconciliation pass. A closed session ignores snapshots.
func (s *Session) Apply(snapshot Snapshot) ChangeSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ChangeSet{}
	}
	return s.reconciler.Apply(snapshot)
}

// Follow makes vehicleID the followed vehicle. The old target's trail and pending
// animation are dropped before Follow returns.
func (s *Session) Follow(vehicleID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	previous := s.reconciler.FollowedID()
	if previous == vehicleID {
		return
	}
	if previous != "" {
		s.board.Cancel(previous)
	}
	s.reconciler.setFollowed(vehicleID)
}

// Unfollow stops following any vehicle.
func (s *Session) Unfollow() {
	s.Follow("")
}

// FollowedID returns the current follow target, or "".
func (s *Session) FollowedID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.FollowedID()
}

// SelectRoute highlights vehicles on routeID. An empty id clears the selection.
func (s *Session) SelectRoute(routeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.reconciler.setSelectedRoute(routeID)
}

// SelectedRouteID returns the highlighted route, or "".
func (s *Session) SelectedRouteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.SelectedRouteID()
}

// VehicleView is a rendered vehicle together with where its marker is drawn at the
// time of the query.
type VehicleView struct {
	RenderedVehicle
	Display   geo.Point `json:"display"`
	Animating bool      `json:"animating"`
}

// Vehicles returns the store contents sorted by id with interpolated marker
// positions at t.
func (s *Session) Vehicles(t time.Time) []VehicleView {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	vehicles := s.store.Vehicles()
	views := make([]VehicleView, len(vehicles))
	for i, v := range vehicles {
		view := VehicleView{RenderedVehicle: v, Display: v.Point()}
		if p, animating, ok := s.board.PositionAt(v.ID, t); ok {
			view.Display = p
			view.Animating = animating
		}
		views[i] = view
	}
	return views
}

// Vehicle returns a single entry.
func (s *Session) Vehicle(id string) (RenderedVehicle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Get(id)
}

// Clusters groups the current vehicles for display at zoom.
func (s *Session) Clusters(zoom int) []Cluster {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return ClusterVehicles(s.store.Vehicles(), zoom, s.cfg.clusterOptions())
}

// Trail is a snapshot of the followed vehicle's history.
type Trail struct {
	VehicleID string         `json:"vehicleId"`
	Points    []TrailPoint   `json:"points"`
	Segments  []TrailSegment `json:"segments"`
	Polyline  string         `json:"polyline"`
}

// Trail returns the followed vehicle's points, fading segments and polyline.
func (s *Session) Trail() Trail {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	return Trail{
		VehicleID: s.trail.VehicleID(),
		Points:    s.trail.Points(),
		Segments:  s.trail.Segments(),
		Polyline:  s.trail.Polyline(),
	}
}

// TrailGeoJSON returns the trail as one LineString feature per segment.
func (s *Session) TrailGeoJSON() *geojson.FeatureCollection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trail.GeoJSON()
}

// LastActive is the last time a viewer interacted with the session.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) touch() {
	s.lastActive = s.now()
}

// Close tears the session down. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.unsubscribe = nil
	for _, id := range s.store.IDs() {
		s.board.Cancel(id)
	}
	s.store.clear()
	s.trail.Reset()
}

// Closed reports whether Close has run.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
