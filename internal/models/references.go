package models

import "github.com/jamespfennell/gtfs"

// ReferencesModel carries the routes and stops referenced by an entry.
type ReferencesModel struct {
	Agencies []AgencyReference `json:"agencies"`
	Routes   []RouteReference  `json:"routes"`
	Stops    []StopEntry       `json:"stops"`
}

// NewEmptyReferences creates a new empty References model with initialized empty slices
func NewEmptyReferences() ReferencesModel {
	return ReferencesModel{
		Agencies: []AgencyReference{},
		Routes:   []RouteReference{},
		Stops:    []StopEntry{},
	}
}

type AgencyReference struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	Timezone string `json:"timezone"`
}

type RouteReference struct {
	ID        string `json:"id"`
	AgencyID  string `json:"agencyId"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
	Color     string `json:"color"`
	TextColor string `json:"textColor"`
	Type      int    `json:"type"`
}

func NewRouteReference(route gtfs.Route) RouteReference {
	ref := RouteReference{
		ID:        route.Id,
		ShortName: route.ShortName,
		LongName:  route.LongName,
		Color:     route.Color,
		TextColor: route.TextColor,
		Type:      int(route.Type),
	}
	if route.Agency != nil {
		ref.AgencyID = route.Agency.Id
	}
	return ref
}

func NewAgencyReference(agency gtfs.Agency) AgencyReference {
	return AgencyReference{
		ID:       agency.Id,
		Name:     agency.Name,
		URL:      agency.Url,
		Timezone: agency.Timezone,
	}
}
