package pairing

import "math"

const earthRadiusM = 6371000.0

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// haversineM returns the great-circle distance between two points in meters.
func haversineM(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLon := radians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(a)))
}
