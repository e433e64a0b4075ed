package models

import (
	"github.com/paulmach/orb/geojson"

	"livemap.onebusaway.org/internal/geo"
	"livemap.onebusaway.org/internal/tracking"
)

type SessionEntry struct {
	ID                string `json:"id"`
	FollowedVehicleID string `json:"followedVehicleId"`
	SelectedRouteID   string `json:"selectedRouteId"`
	LastActive        int64  `json:"lastActive"`
}

func NewSessionEntry(s *tracking.Session) SessionEntry {
	return SessionEntry{
		ID:                s.ID(),
		FollowedVehicleID: s.FollowedID(),
		SelectedRouteID:   s.SelectedRouteID(),
		LastActive:        s.LastActive().UnixMilli(),
	}
}

// ClusterEntry is a marker group. Members are listed by id only.
type ClusterEntry struct {
	Centroid geo.Point `json:"centroid"`
	Size     int       `json:"size"`
	Members  []string  `json:"members"`
}

func NewClusterEntry(c tracking.Cluster) ClusterEntry {
	members := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		members = append(members, m.ID)
	}
	return ClusterEntry{Centroid: c.Centroid, Size: c.Size(), Members: members}
}

// VehiclesEntry is the render state of a session at one zoom level.
type VehiclesEntry struct {
	SessionID string                 `json:"sessionId"`
	Zoom      int                    `json:"zoom"`
	Vehicles  []tracking.VehicleView `json:"vehicles"`
	Clusters  []ClusterEntry         `json:"clusters"`
}

type TrailEntry struct {
	tracking.Trail
	GeoJSON *geojson.FeatureCollection `json:"geojson"`
}

// ShapeEntry is an encoded route polyline.
type ShapeEntry struct {
	RouteID     string `json:"routeId"`
	DirectionID int    `json:"directionId"`
	ShapeID     string `json:"shapeId"`
	Points      string `json:"points"`
	Length      int    `json:"length"`
}
