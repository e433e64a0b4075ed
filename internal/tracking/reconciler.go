package tracking

import (
	"log/slog"
	"slices"

	"livemap.onebusaway.org/internal/geo"
	"livemap.onebusaway.org/internal/logging"
)

// Reconciler applies snapshots to a PositionStore.
type Reconciler struct {
	store     *PositionStore
	trail     *TrailRecorder
	estimator BearingEstimator
	projector RouteProjector
	shapes    ShapeSource
	logger    *slog.Logger

	followedID      string
	selectedRouteID string
}

// NewReconciler builds a reconciler over store and trail. shapes may be nil, in which
// case no vehicle is ever snapped.
func NewReconciler(store *PositionStore, trail *TrailRecorder, shapes ShapeSource, cfg Config, logger *slog.Logger) *Reconciler {
	cfg = cfg.WithDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:     store,
		trail:     trail,
		estimator: BearingEstimator{MinMovementMeters: cfg.MinMovementMeters},
		projector: RouteProjector{ThresholdMeters: cfg.ProjectionThresholdMeters},
		shapes:    shapes,
		logger:    logger.With(slog.String("component", "reconciler")),
	}
}

// FollowedID is the follow target, or "" when nothing is followed.
func (r *Reconciler) FollowedID() string {
	return r.followedID
}

// SelectedRouteID is the highlighted route, or "".
func (r *Reconciler) SelectedRouteID() string {
	return r.selectedRouteID
}

// setFollowed switches the followed vehicle. The trail of the previous target is
// discarded and the IsFollowed flags in the store are moved over.
func (r *Reconciler) setFollowed(id string) {
	if id == r.followedID {
		return
	}
	previous := r.followedID
	r.followedID = id
	r.trail.Reset()
	r.store.update(previous, func(v *RenderedVehicle) {
		v.IsFollowed = false
	})
	r.store.update(id, func(v *RenderedVehicle) {
		v.IsFollowed = true
	})
}

func (r *Reconciler) setSelectedRoute(routeID string) {
	r.selectedRouteID = routeID
	for _, id := range r.store.IDs() {
		r.store.update(id, func(v *RenderedVehicle) {
			v.IsOnSelectedRoute = routeID != "" && v.RouteID == routeID
		})
	}
}

// Apply reconciles one snapshot with the store and publishes the resulting change
// set to the store's observers. Malformed fixes are dropped; they never produce an
// error.
func (r *Reconciler) Apply(snapshot Snapshot) ChangeSet {
	var cs ChangeSet

	fixes, seen, dropped := r.collect(snapshot)
	cs.Dropped = dropped

	ids := make([]string, 0, len(fixes))
	for id := range fixes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		fix := fixes[id]
		if fix.Timestamp.IsZero() {
			fix.Timestamp = snapshot.ReceivedAt
		}
		vehicle := r.resolve(fix)

		if previous, ok := r.store.Get(id); ok {
			cs.Updated = append(cs.Updated, VehicleUpdate{From: previous.Point(), Vehicle: vehicle})
		} else {
			cs.Created = append(cs.Created, vehicle)
		}
		r.store.put(vehicle, fix.Point())
	}

	for _, id := range r.store.IDs() {
		if seen[id] {
			continue
		}
		r.store.remove(id)
		if id == r.followedID {
			r.trail.Reset()
		}
		cs.Removed = append(cs.Removed, id)
	}

	r.store.publish(cs)
	return cs
}

// collect validates the snapshot and keeps the newest fix per id. seen also holds
// ids whose only fixes were malformed, so a single bad sample does not remove a
// vehicle that is still reporting.
func (r *Reconciler) collect(snapshot Snapshot) (map[string]VehicleFix, map[string]bool, int) {
	fixes := make(map[string]VehicleFix, len(snapshot.Fixes))
	seen := make(map[string]bool, len(snapshot.Fixes))
	dropped := 0

	for _, fix := range snapshot.Fixes {
		if fix.ID == "" {
			dropped++
			continue
		}
		seen[fix.ID] = true
		if !geo.Valid(fix.Lat, fix.Lon) {
			dropped++
			continue
		}
		if existing, ok := fixes[fix.ID]; ok && !fix.Timestamp.After(existing.Timestamp) {
			continue
		}
		fixes[fix.ID] = fix
	}

	return fixes, seen, dropped
}

func (r *Reconciler) resolve(fix VehicleFix) RenderedVehicle {
	raw := fix.Point()
	followed := fix.ID == r.followedID

	var prevRaw *geo.Point
	if p, ok := r.store.LastRaw(fix.ID); ok {
		prevRaw = &p
	}

	position := raw
	snapped := false
	var projection ProjectionResult
	if followed {
		projection, snapped = r.project(fix)
		if snapped {
			position = projection.Point
		}
	}

	// bearings come from raw movement, never from the snapped position
	bearing, known := r.estimator.Estimate(fix, prevRaw)
	if snapped {
		if _, fromSource := sourceBearing(fix); !fromSource {
			bearing, known = projection.Bearing, true
		}
	}
	if !known {
		if previous, ok := r.store.Get(fix.ID); ok && previous.BearingKnown {
			bearing, known = previous.Bearing, true
		}
	}

	if followed {
		r.trail.Record(fix.ID, raw, fix.Timestamp)
	}

	return RenderedVehicle{
		ID:                fix.ID,
		Lat:               position.Lat,
		Lon:               position.Lon,
		Bearing:           bearing,
		BearingKnown:      known,
		IsFollowed:        followed,
		IsOnSelectedRoute: r.selectedRouteID != "" && fix.RouteID == r.selectedRouteID,
		RouteID:           fix.RouteID,
		TripID:            fix.TripID,
		Status:            fix.Status,
		Snapped:           snapped,
		LastSeenTimestamp: fix.Timestamp,
	}
}

func (r *Reconciler) project(fix VehicleFix) (ProjectionResult, bool) {
	if r.shapes == nil || fix.RouteID == "" {
		return ProjectionResult{}, false
	}
	shape, ok := r.shapes.RouteShape(fix.RouteID, fix.DirectionID)
	if !ok {
		return ProjectionResult{}, false
	}
	result, ok := r.projector.Project(fix.Point(), shape.Points)
	if !ok {
		return ProjectionResult{}, false
	}
	if !r.projector.Accept(result) {
		logging.LogOperation(r.logger, "projection_rejected_off_route",
			slog.String("vehicle_id", fix.ID),
			slog.String("route_id", fix.RouteID),
			slog.Float64("off_route_meters", result.OffRouteDistance),
			slog.Float64("threshold_meters", r.projector.ThresholdMeters))
		return result, false
	}
	return result, true
}
