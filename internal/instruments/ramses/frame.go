package ramses

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sensor identifies which radiometer in the trio produced a frame
type Sensor string

const (
	SensorLt   Sensor = "LT"   // water-leaving radiance sensor
	SensorLsky Sensor = "LSKY" // sky radiance sensor
	SensorEd   Sensor = "ED"   // downwelling irradiance sensor
)

// Frame is one calibrated spectral telegram from a RAMSES sensor.
//
// The MSDA export telegram format is NMEA-like:
//
//	$RAMSES,<sensor>,<unix ms>,<n>,<w1>:<v1>;<w2>:<v2>;...*<checksum>
//
// where checksum is the XOR of all bytes between '$' and '*' in hex.
type Frame struct {
	Sensor      Sensor
	Timestamp   time.Time
	Wavelengths []float64
	Values      []float64
}

// ParseFrame parses a single RAMSES telegram line
func ParseFrame(line string) (*Frame, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$RAMSES,") {
		return nil, fmt.Errorf("not a RAMSES telegram: %q", truncate(line, 32))
	}

	star := strings.LastIndexByte(line, '*')
	if star < 0 {
		return nil, fmt.Errorf("telegram missing checksum delimiter")
	}

	body := line[1:star]
	wantSum, err := strconv.ParseUint(line[star+1:], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("bad checksum field %q: %w", line[star+1:], err)
	}
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	if sum != byte(wantSum) {
		return nil, fmt.Errorf("checksum mismatch: computed %02X, telegram has %02X", sum, wantSum)
	}

	fields := strings.SplitN(body, ",", 4)
	if len(fields) != 4 {
		return nil, fmt.Errorf("telegram has %d fields, want 4", len(fields))
	}

	sensor := Sensor(strings.ToUpper(fields[1]))
	switch sensor {
	case SensorLt, SensorLsky, SensorEd:
	default:
		return nil, fmt.Errorf("unknown sensor %q", fields[1])
	}

	ms, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", fields[2], err)
	}

	// field 3 is "<n>,<pairs>"; split off the channel count
	countAndPairs := strings.SplitN(fields[3], ",", 2)
	if len(countAndPairs) != 2 {
		return nil, fmt.Errorf("telegram missing spectral pairs")
	}
	count, err := strconv.Atoi(countAndPairs[0])
	if err != nil {
		return nil, fmt.Errorf("bad channel count %q: %w", countAndPairs[0], err)
	}

	pairs := strings.Split(countAndPairs[1], ";")
	if len(pairs) != count {
		return nil, fmt.Errorf("telegram declares %d channels but carries %d", count, len(pairs))
	}

	frame := &Frame{
		Sensor:      sensor,
		Timestamp:   time.UnixMilli(ms).UTC(),
		Wavelengths: make([]float64, count),
		Values:      make([]float64, count),
	}

	for i, pair := range pairs {
		colon := strings.IndexByte(pair, ':')
		if colon < 0 {
			return nil, fmt.Errorf("channel %d: malformed pair %q", i, pair)
		}
		w, err := strconv.ParseFloat(pair[:colon], 64)
		if err != nil {
			return nil, fmt.Errorf("channel %d: bad wavelength %q: %w", i, pair[:colon], err)
		}
		v, err := strconv.ParseFloat(pair[colon+1:], 64)
		if err != nil {
			return nil, fmt.Errorf("channel %d: bad value %q: %w", i, pair[colon+1:], err)
		}
		if i > 0 && w <= frame.Wavelengths[i-1] {
			return nil, fmt.Errorf("channel %d: wavelengths not ascending", i)
		}
		frame.Wavelengths[i] = w
		frame.Values[i] = v
	}

	return frame, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
