package geo

// BearingToCompass converts a bearing (0-360°) to 8-point compass direction
func BearingToCompass(bearing float64) string {
	directions := []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}
	index := int((NormalizeBearing(bearing)+22.5)/45.0) % 8
	return directions[index]
}

// CompassDirection calculates compass direction from a to b
func CompassDirection(a, b Point) string {
	return BearingToCompass(Bearing(a, b))
}
