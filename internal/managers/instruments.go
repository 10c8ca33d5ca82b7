package managers

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/homas01123/trios/internal/instruments"
	"github.com/homas01123/trios/internal/instruments/ramses"
	"github.com/homas01123/trios/internal/types"
	"github.com/homas01123/trios/pkg/config"
)

// InstrumentManager holds the running instruments and the scan distributor
// they deliver into
type InstrumentManager struct {
	Instruments     []instruments.Instrument
	ScanDistributor chan types.RadiometryScan
	logger          *zap.SugaredLogger
}

// NewInstrumentManager creates instruments for every configured device
func NewInstrumentManager(ctx context.Context, wg *sync.WaitGroup, configProvider config.ConfigProvider, logger *zap.SugaredLogger) (*InstrumentManager, error) {
	cfgData, err := configProvider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}

	m := &InstrumentManager{
		ScanDistributor: make(chan types.RadiometryScan, 20),
		logger:          logger,
	}

	for _, inst := range cfgData.Instruments {
		switch inst.Type {
		case "ramses", "":
			station := ramses.NewStation(ctx, wg, inst, cfgData.Processing.WindSpeed, m.ScanDistributor, logger)
			m.Instruments = append(m.Instruments, station)
		default:
			return nil, fmt.Errorf("unknown instrument type %q for instrument %q", inst.Type, inst.Name)
		}
	}

	return m, nil
}

// StartInstruments starts all configured instruments
func (m *InstrumentManager) StartInstruments() {
	for _, inst := range m.Instruments {
		if err := inst.StartInstrument(); err != nil {
			m.logger.Errorf("could not start instrument %s: %v", inst.InstrumentName(), err)
		}
	}
}
