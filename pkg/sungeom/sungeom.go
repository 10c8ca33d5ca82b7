// Package sungeom computes low-precision solar geometry for above-water
// radiometry: the sun zenith and azimuth angles that tag every spectral
// acquisition. Accuracy is a few hundredths of a degree, well inside the
// pointing tolerance of a deck-mounted radiometer.
package sungeom

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Position holds the computed solar geometry for one instant and site
type Position struct {
	ZenithDeg      float64 // angle from local vertical
	ElevationDeg   float64 // 90 - zenith
	AzimuthDeg     float64 // from north, clockwise
	DeclinationDeg float64
	EqOfTimeMin    float64
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }
func fixAngle(a float64) float64   { return a - 360.0*math.Floor(a/360.0) }

// Calculate returns the solar position for a UTC time at the given
// latitude (north positive) and longitude (east positive), both in degrees.
func Calculate(t time.Time, lat, lon float64) Position {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	// Geometric mean longitude and anomaly of the Sun
	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032))
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)

	// Equation of center and apparent longitude
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	sunLong := L0 + C
	omega := 125.04 - 1934.136*T
	lambda := sunLong - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Obliquity and declination
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	declRad := math.Asin(math.Sin(degToRad(eps0)) * math.Sin(degToRad(lambda)))

	// Equation of time in minutes
	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4

	// True solar time and hour angle
	utc := t.UTC()
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60.0
	tst := utcMin + 4*lon + eqTimeMin
	ha := tst/4 - 180
	haRad := degToRad(ha)

	latRad := degToRad(lat)
	cosZen := math.Sin(latRad)*math.Sin(declRad) + math.Cos(latRad)*math.Cos(declRad)*math.Cos(haRad)
	if cosZen > 1 {
		cosZen = 1
	} else if cosZen < -1 {
		cosZen = -1
	}
	zenRad := math.Acos(cosZen)
	zenDeg := radToDeg(zenRad)

	azDeg := 0.0
	sinZen := math.Sin(zenRad)
	if sinZen > 1e-9 {
		azNum := math.Sin(declRad) - math.Sin(latRad)*cosZen
		azDen := math.Cos(latRad) * sinZen
		ratio := azNum / azDen
		if ratio > 1 {
			ratio = 1
		} else if ratio < -1 {
			ratio = -1
		}
		azDeg = radToDeg(math.Acos(ratio))
		if ha > 0 {
			azDeg = 360 - azDeg
		}
	}

	return Position{
		ZenithDeg:      zenDeg,
		ElevationDeg:   90 - zenDeg,
		AzimuthDeg:     azDeg,
		DeclinationDeg: radToDeg(declRad),
		EqOfTimeMin:    eqTimeMin,
	}
}

// SunZenith is a convenience wrapper returning only the zenith angle in degrees
func SunZenith(t time.Time, lat, lon float64) float64 {
	return Calculate(t, lat, lon).ZenithDeg
}
