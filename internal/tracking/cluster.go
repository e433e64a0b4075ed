package tracking

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"livemap.onebusaway.org/internal/geo"
)

const tileSize = 256.0

// Cluster stands in for one or more nearby vehicles at a zoom level. A cluster
// with a single member is drawn as an individual marker.
type Cluster struct {
	Members  []RenderedVehicle `json:"members"`
	Centroid geo.Point         `json:"centroid"`
}

func (c Cluster) Size() int {
	return len(c.Members)
}

// ClusterOptions parameterize ClusterVehicles.
type ClusterOptions struct {
	RadiusPixels float64
	MinSize      int
	MaxZoom      int
}

func (c Config) clusterOptions() ClusterOptions {
	return ClusterOptions{
		RadiusPixels: c.ClusterRadiusPixels,
		MinSize:      c.MinClusterSize,
		MaxZoom:      c.MaxClusterZoom,
	}
}

type pixel struct {
	x, y float64
}

type cell struct {
	x, y int
}

// pixelAt converts a position to Web-Mercator pixel coordinates at zoom.
func pixelAt(p geo.Point, zoom int) pixel {
	const halfWorld = math.Pi * orb.EarthRadius
	m := project.WGS84.ToMercator(p.Orb())
	scale := tileSize * math.Exp2(float64(zoom))
	return pixel{
		x: (m[0] + halfWorld) / (2 * halfWorld) * scale,
		y: (halfWorld - m[1]) / (2 * halfWorld) * scale,
	}
}

// ClusterVehicles groups vehicles within opts.RadiusPixels of a seed vehicle. The
// input order decides seeding, so callers pass a stable order. Followed vehicles
// are never absorbed. Above opts.MaxZoom every vehicle is returned on its own.
func ClusterVehicles(vehicles []RenderedVehicle, zoom int, opts ClusterOptions) []Cluster {
	if zoom > opts.MaxZoom || opts.RadiusPixels <= 0 {
		return singletons(vehicles)
	}

	pixels := make([]pixel, len(vehicles))
	grid := make(map[cell][]int)
	for i, v := range vehicles {
		px := pixelAt(v.Point(), zoom)
		pixels[i] = px
		if v.IsFollowed {
			continue
		}
		c := cellOf(px, opts.RadiusPixels)
		grid[c] = append(grid[c], i)
	}

	assigned := make([]bool, len(vehicles))
	var clusters []Cluster
	for i, v := range vehicles {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []RenderedVehicle{v}

		if !v.IsFollowed {
			seed := pixels[i]
			home := cellOf(seed, opts.RadiusPixels)
			for dx := -1; dx <= 1; dx++ {
				for dy := -1; dy <= 1; dy++ {
					for _, j := range grid[cell{home.x + dx, home.y + dy}] {
						if assigned[j] || distance(seed, pixels[j]) > opts.RadiusPixels {
							continue
						}
						assigned[j] = true
						members = append(members, vehicles[j])
					}
				}
			}
		}

		if len(members) < opts.MinSize {
			clusters = append(clusters, singletons(members)...)
			continue
		}
		clusters = append(clusters, Cluster{Members: members, Centroid: centroid(members)})
	}
	return clusters
}

func singletons(vehicles []RenderedVehicle) []Cluster {
	out := make([]Cluster, len(vehicles))
	for i, v := range vehicles {
		out[i] = Cluster{Members: []RenderedVehicle{v}, Centroid: v.Point()}
	}
	return out
}

func cellOf(p pixel, size float64) cell {
	return cell{int(math.Floor(p.x / size)), int(math.Floor(p.y / size))}
}

func distance(a, b pixel) float64 {
	return math.Hypot(a.x-b.x, a.y-b.y)
}

func centroid(members []RenderedVehicle) geo.Point {
	var lat, lon float64
	for _, m := range members {
		lat += m.Lat
		lon += m.Lon
	}
	n := float64(len(members))
	return geo.Point{Lat: lat / n, Lon: lon / n}
}
