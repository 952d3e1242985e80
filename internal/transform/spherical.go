package transform

import "math"

// LonLat is a ground-track position in degrees.
// Longitude is in (-180, 180], latitude in [-90, 90].
type LonLat struct {
	LonDeg float64
	LatDeg float64
}

// CartesianToSpherical converts an Earth-fixed cartesian position (km) to
// longitude/latitude in degrees:
//
//	longitude = atan2(y, x)
//	latitude  = asin(z / |r|)
//
// This is the geocentric (spherical) latitude, matching the engine's
// spherical frame query, not the geodetic latitude on the WGS-84 ellipsoid.
// Returns ok=false for a zero-magnitude vector.
func CartesianToSpherical(p Vec3) (LonLat, bool) {
	r := p.Norm()
	if r == 0 {
		return LonLat{}, false
	}

	lon := math.Atan2(p.Y, p.X)
	lat := math.Asin(p.Z / r)

	return LonLat{
		LonDeg: lon * 180.0 / math.Pi,
		LatDeg: lat * 180.0 / math.Pi,
	}, true
}
