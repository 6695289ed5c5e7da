// README: Great-circle helpers used by the fallback route estimate.
package location

import (
	"math"

	"routecost/internal/types"
)

const earthRadiusKm = 6371.0

// HaversineKm is the great-circle distance between a and b in kilometres.
func HaversineKm(a, b types.Point) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	sinLat := math.Sin((lat2 - lat1) / 2)
	sinLng := math.Sin(radians(b.Lng-a.Lng) / 2)

	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLng*sinLng
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
