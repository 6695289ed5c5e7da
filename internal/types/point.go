// README: Geographic point shared by the resolver, router and HTTP layer.
package types

import "fmt"

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether the point lies within the latitude/longitude ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// LatLng returns the point as [lat, lng], the order used by the public API.
func (p Point) LatLng() [2]float64 {
	return [2]float64{p.Lat, p.Lng}
}

// LngLat returns the point as [lng, lat], the order most routing engines expect.
func (p Point) LngLat() [2]float64 {
	return [2]float64{p.Lng, p.Lat}
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
