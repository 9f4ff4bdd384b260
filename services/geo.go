package services

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// GeoPoint is a WGS 84 coordinate in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ReferencePoint is the landmark every listing distance is measured from (Times Square).
var ReferencePoint = GeoPoint{Lat: 40.7580, Lon: -73.9855}

func validCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) || math.IsInf(lat, 0) || math.IsInf(lon, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// DistanceKm returns the great-circle distance between two points in kilometres.
// Non-finite or out-of-range coordinates yield ErrUndefinedDistance.
func DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if !validCoordinate(lat1, lon1) || !validCoordinate(lat2, lon2) {
		return 0, fmt.Errorf("%w: (%v, %v) to (%v, %v)", ErrUndefinedDistance, lat1, lon1, lat2, lon2)
	}

	phi1, phi2 := radians(lat1), radians(lat2)
	dPhi := phi2 - phi1
	dLambda := radians(lon2) - radians(lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// rounding can push a just outside [0,1]
	a = math.Min(1, math.Max(0, a))
	d := 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))

	if math.IsNaN(d) || d < 0 {
		return 0, fmt.Errorf("%w: (%v, %v) to (%v, %v)", ErrUndefinedDistance, lat1, lon1, lat2, lon2)
	}
	return d, nil
}

// Distance is one element of a vectorised distance computation.
type Distance struct {
	Km      float64
	Defined bool
}

// DistancesFrom computes the distance from ref to every point.
// Points with an undefined distance are reported with Defined=false.
func DistancesFrom(ref GeoPoint, points []GeoPoint) []Distance {
	out := make([]Distance, len(points))
	for i, p := range points {
		d, err := DistanceKm(p.Lat, p.Lon, ref.Lat, ref.Lon)
		out[i] = Distance{Km: d, Defined: err == nil}
	}
	return out
}
