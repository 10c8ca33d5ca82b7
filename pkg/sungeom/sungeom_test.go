package sungeom

import (
	"math"
	"testing"
	"time"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		time       time.Time
		lat, lon   float64
		wantZenith float64
		epsilon    float64
	}{
		{
			// Sun nearly overhead at the subsolar point on the equinox
			name: "equator equinox noon",
			time: time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC),
			lat:  0, lon: 0,
			wantZenith: 2.0,
			epsilon:    2.5,
		},
		{
			// Solstice noon at the tropic: sun close to zenith
			name: "tropic solstice noon",
			time: time.Date(2025, 6, 21, 12, 0, 0, 0, time.UTC),
			lat:  23.4, lon: 0,
			wantZenith: 1.0,
			epsilon:    2.5,
		},
		{
			// Mid-latitude winter noon: low sun
			name: "mid-latitude winter noon",
			time: time.Date(2025, 12, 21, 12, 0, 0, 0, time.UTC),
			lat:  45, lon: 0,
			wantZenith: 45 + 23.4,
			epsilon:    2.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := Calculate(tt.time, tt.lat, tt.lon)
			if math.Abs(pos.ZenithDeg-tt.wantZenith) > tt.epsilon {
				t.Errorf("zenith = %.2f, want %.2f ± %.1f", pos.ZenithDeg, tt.wantZenith, tt.epsilon)
			}
			if math.Abs(pos.ZenithDeg+pos.ElevationDeg-90) > 1e-9 {
				t.Errorf("zenith %.2f + elevation %.2f != 90", pos.ZenithDeg, pos.ElevationDeg)
			}
		})
	}
}

func TestCalculateNightSunBelowHorizon(t *testing.T) {
	pos := Calculate(time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 45, 0)
	if pos.ElevationDeg >= 0 {
		t.Errorf("elevation = %.2f at local midnight, want below horizon", pos.ElevationDeg)
	}
}

func TestSunZenithMatchesCalculate(t *testing.T) {
	ts := time.Date(2025, 8, 1, 14, 30, 0, 0, time.UTC)
	if z := SunZenith(ts, 52.5, 13.4); z != Calculate(ts, 52.5, 13.4).ZenithDeg {
		t.Error("SunZenith disagrees with Calculate")
	}
}

func TestAzimuthQuadrants(t *testing.T) {
	// Morning sun east of the meridian, afternoon sun west of it
	morning := Calculate(time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC), 45, 0)
	afternoon := Calculate(time.Date(2025, 6, 15, 16, 0, 0, 0, time.UTC), 45, 0)

	if morning.AzimuthDeg >= 180 {
		t.Errorf("morning azimuth = %.1f, want < 180", morning.AzimuthDeg)
	}
	if afternoon.AzimuthDeg <= 180 {
		t.Errorf("afternoon azimuth = %.1f, want > 180", afternoon.AzimuthDeg)
	}
}
