// Package types contains the core data records exchanged between instruments,
// the processing pipeline, storage backends, and controllers.
package types

import (
	"fmt"
	"time"
)

// RadiometryScan is one synchronized set of above-water radiometric spectra
// from a three-sensor deployment: water-leaving radiance (Lt), sky radiance
// (Lsky), and downwelling irradiance (Ed), all on a shared wavelength grid.
type RadiometryScan struct {
	ID             string
	InstrumentName string
	Timestamp      time.Time
	Wavelengths    []float64 // nm, ascending
	Lt             []float64 // W m-2 nm-1 sr-1
	Lsky           []float64 // W m-2 nm-1 sr-1
	Ed             []float64 // W m-2 nm-1
	Latitude       float64
	Longitude      float64
	ViewZenith     float64 // degrees from nadir
	RelAzimuth     float64 // degrees from sun
	WindSpeed      float64 // m/s
	WaterType      int
}

// Validate checks that the scan's spectra are aligned and the grid is ascending
func (s *RadiometryScan) Validate() error {
	n := len(s.Wavelengths)
	if n == 0 {
		return fmt.Errorf("scan %s: empty wavelength grid", s.ID)
	}
	if len(s.Lt) != n || len(s.Lsky) != n || len(s.Ed) != n {
		return fmt.Errorf("scan %s: spectra lengths (Lt=%d Lsky=%d Ed=%d) do not match grid length %d",
			s.ID, len(s.Lt), len(s.Lsky), len(s.Ed), n)
	}
	for i := 1; i < n; i++ {
		if s.Wavelengths[i] <= s.Wavelengths[i-1] {
			return fmt.Errorf("scan %s: wavelength grid not strictly ascending at index %d", s.ID, i)
		}
	}
	return nil
}

// SpectralSample is a wavelength-indexed remote-sensing reflectance spectrum
// plus the acquisition metadata the inversion needs.
type SpectralSample struct {
	ID             string    `json:"id,omitempty"`
	InstrumentName string    `json:"instrument,omitempty"`
	Method         string    `json:"method,omitempty"` // AWR method that produced this Rrs
	Timestamp      time.Time `json:"timestamp,omitempty"`
	Wavelengths    []float64 `json:"wavelengths"` // nm, ascending
	Rrs            []float64 `json:"rrs"`         // sr-1, aligned with Wavelengths
	SunZenith      float64   `json:"theta_sun"`   // degrees
	ViewZenith     float64   `json:"theta_view"`  // degrees
	RelAzimuth     float64   `json:"delta_phi"`   // degrees
	WindSpeed      float64   `json:"wind_speed,omitempty"`
	WaterType      int       `json:"water_type,omitempty"`
}

// Validate checks the Rrs spectrum is aligned with an ascending wavelength grid
func (s *SpectralSample) Validate() error {
	n := len(s.Wavelengths)
	if n == 0 {
		return fmt.Errorf("sample %s: empty wavelength grid", s.ID)
	}
	if len(s.Rrs) != n {
		return fmt.Errorf("sample %s: %d Rrs values for %d wavelengths", s.ID, len(s.Rrs), n)
	}
	for i := 1; i < n; i++ {
		if s.Wavelengths[i] <= s.Wavelengths[i-1] {
			return fmt.Errorf("sample %s: wavelength grid not strictly ascending at index %d", s.ID, i)
		}
	}
	return nil
}
