package geo

import "math"

// EarthRadiusKM is the mean Earth radius used by every distance consumer.
const EarthRadiusKM = 6371.0

// Distance returns the great-circle distance in kilometers between two
// coordinates using the haversine formula. Pure and total: finite inputs
// always yield a finite, non-negative result.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKM * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
