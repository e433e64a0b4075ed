package utils

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	// MaxIDLength bounds transit ids and session ids taken from the path.
	MaxIDLength = 100
	// MaxRadiusMeters caps location searches.
	MaxRadiusMeters = 10000
	// MaxZoom is the deepest web-map zoom level.
	MaxZoom = 22
)

// Transit ids and session uuids share this alphabet.
var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

var (
	errEmptyID     = errors.New("id cannot be empty")
	errIDTooLong   = fmt.Errorf("id too long (max %d characters)", MaxIDLength)
	errIDAlphabet  = errors.New("id contains invalid characters")
	errLatitude    = errors.New("latitude must be between -90 and 90")
	errLongitude   = errors.New("longitude must be between -180 and 180")
	errRadiusSign  = errors.New("radius must be non-negative")
	errRadiusLarge = fmt.Errorf("radius too large (max %d meters)", MaxRadiusMeters)
	errZoom        = fmt.Errorf("zoom must be between 0 and %d", MaxZoom)
)

func ValidateID(id string) error {
	switch {
	case id == "":
		return errEmptyID
	case len(id) > MaxIDLength:
		return errIDTooLong
	case !idPattern.MatchString(id):
		return errIDAlphabet
	}
	return nil
}

func ValidateLatitude(lat float64) error {
	if !within(lat, -90, 90) {
		return errLatitude
	}
	return nil
}

func ValidateLongitude(lon float64) error {
	if !within(lon, -180, 180) {
		return errLongitude
	}
	return nil
}

func ValidateRadius(radius float64) error {
	switch {
	case radius < 0:
		return errRadiusSign
	case radius > MaxRadiusMeters:
		return errRadiusLarge
	}
	return nil
}

func ValidateZoom(zoom int) error {
	if zoom < 0 || zoom > MaxZoom {
		return errZoom
	}
	return nil
}

// ValidateLocationParams checks a lat/lon/radius query and returns the
// failures keyed by parameter name. A zero radius means "use the default"
// and is not checked.
func ValidateLocationParams(lat, lon, radius float64) map[string][]string {
	fieldErrors := make(map[string][]string)
	add := func(field string, err error) {
		if err != nil {
			fieldErrors[field] = append(fieldErrors[field], err.Error())
		}
	}

	add("lat", ValidateLatitude(lat))
	add("lon", ValidateLongitude(lon))
	if radius != 0 {
		add("radius", ValidateRadius(radius))
	}
	return fieldErrors
}

// within also rejects NaN, which fails every comparison.
func within(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}
