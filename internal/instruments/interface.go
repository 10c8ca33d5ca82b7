// Package instruments defines the interface radiometer backends implement.
package instruments

// Instrument is an interface that provides standard methods for various
// radiometer backends
type Instrument interface {
	StartInstrument() error
	InstrumentName() string
}
