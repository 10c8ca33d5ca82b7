// Package ramses reads calibrated spectral telegrams from a TriOS RAMSES
// three-sensor deployment (Lt, Lsky, Ed) over a serial link and assembles
// them into radiometry scans.
package ramses

import (
	"bufio"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	serial "github.com/tarm/goserial"
	"go.uber.org/zap"

	"github.com/homas01123/trios/internal/instruments"
	"github.com/homas01123/trios/internal/log"
	"github.com/homas01123/trios/internal/types"
	"github.com/homas01123/trios/pkg/config"
)

// Frames from the three sensors with timestamps inside this window are
// treated as one acquisition
const scanMatchWindow = 2 * time.Second

// Station holds a RAMSES deployment connection
type Station struct {
	ctx             context.Context
	wg              *sync.WaitGroup
	config          config.InstrumentData
	windSpeed       float64
	rwc             io.ReadWriteCloser
	ScanDistributor chan types.RadiometryScan
	logger          *zap.SugaredLogger

	pending map[Sensor]*Frame
}

// NewStation creates a RAMSES station from instrument configuration
func NewStation(ctx context.Context, wg *sync.WaitGroup, cfg config.InstrumentData, windSpeed float64, distributor chan types.RadiometryScan, logger *zap.SugaredLogger) instruments.Instrument {
	if cfg.SerialDevice == "" {
		logger.Fatalf("RAMSES station [%s] must define a serial device", cfg.Name)
	}
	return &Station{
		ctx:             ctx,
		wg:              wg,
		config:          cfg,
		windSpeed:       windSpeed,
		ScanDistributor: distributor,
		logger:          logger,
		pending:         make(map[Sensor]*Frame),
	}
}

func (s *Station) InstrumentName() string {
	return s.config.Name
}

// StartInstrument connects to the serial link and launches the telegram reader
func (s *Station) StartInstrument() error {
	log.Infof("Starting RAMSES station [%v]...", s.config.Name)

	s.wg.Add(1)
	go s.readTelegrams()

	return nil
}

func (s *Station) readTelegrams() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			log.Info("cancellation request received. Cancelling readTelegrams()")
			if s.rwc != nil {
				s.rwc.Close()
			}
			return
		default:
			if s.rwc == nil {
				if !s.connect() {
					return
				}
			}
			if err := s.scanLines(); err != nil {
				s.logger.Errorf("RAMSES [%s] read error: %v", s.config.Name, err)
				s.rwc.Close()
				s.rwc = nil
				s.logger.Info("attempting to reconnect...")
			}
		}
	}
}

// connect opens the serial port, retrying until it succeeds or the context
// is cancelled. Returns false on cancellation.
func (s *Station) connect() bool {
	baud := s.config.Baud
	if baud == 0 {
		baud = 9600
	}

	for {
		sc := &serial.Config{Name: s.config.SerialDevice, Baud: baud}
		s.logger.Debugf("attempting to open serial port %s at %d baud", s.config.SerialDevice, baud)
		rwc, err := serial.OpenPort(sc)
		if err == nil {
			s.rwc = rwc
			s.logger.Infof("connected to %v", s.config.SerialDevice)
			return true
		}

		s.logger.Errorf("failed to open serial port %s: %v", s.config.SerialDevice, err)
		s.logger.Error("sleeping 30 seconds and trying again")

		select {
		case <-s.ctx.Done():
			s.logger.Info("cancellation request received during retry wait")
			return false
		case <-time.After(30 * time.Second):
		}
	}
}

func (s *Station) scanLines() error {
	scanner := bufio.NewScanner(s.rwc)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	for scanner.Scan() {
		select {
		case <-s.ctx.Done():
			return nil
		default:
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		frame, err := ParseFrame(line)
		if err != nil {
			s.logger.Warnf("RAMSES [%s] dropping telegram: %v", s.config.Name, err)
			continue
		}

		s.collect(frame)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return io.EOF
}

// collect buffers frames per sensor and emits a scan once all three sensors
// have reported within the match window.
func (s *Station) collect(frame *Frame) {
	// A frame far newer than a buffered one starts a fresh acquisition
	for sensor, held := range s.pending {
		if frame.Timestamp.Sub(held.Timestamp) > scanMatchWindow {
			delete(s.pending, sensor)
		}
	}

	s.pending[frame.Sensor] = frame

	lt, haveLt := s.pending[SensorLt]
	lsky, haveLsky := s.pending[SensorLsky]
	ed, haveEd := s.pending[SensorEd]
	if !haveLt || !haveLsky || !haveEd {
		return
	}

	if !sameGrid(lt.Wavelengths, lsky.Wavelengths) || !sameGrid(lt.Wavelengths, ed.Wavelengths) {
		s.logger.Warnf("RAMSES [%s] sensors disagree on wavelength grid, dropping scan", s.config.Name)
		s.pending = make(map[Sensor]*Frame)
		return
	}

	scan := types.RadiometryScan{
		ID:             uuid.New().String(),
		InstrumentName: s.config.Name,
		Timestamp:      lt.Timestamp,
		Wavelengths:    lt.Wavelengths,
		Lt:             lt.Values,
		Lsky:           lsky.Values,
		Ed:             ed.Values,
		Latitude:       s.config.Location.Latitude,
		Longitude:      s.config.Location.Longitude,
		ViewZenith:     s.config.ViewZenith,
		RelAzimuth:     s.config.RelAzimuth,
		WindSpeed:      s.windSpeed,
		WaterType:      s.config.WaterType,
	}
	s.pending = make(map[Sensor]*Frame)

	select {
	case s.ScanDistributor <- scan:
	case <-s.ctx.Done():
	}
}

func sameGrid(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
