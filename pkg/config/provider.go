// Package config provides configuration loading for the trios daemon and tools.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetInstruments() ([]InstrumentData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Instruments []InstrumentData `json:"instruments"`
	Processing  ProcessingData   `json:"processing,omitempty"`
	Saber       SaberData        `json:"saber,omitempty"`
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// InstrumentData holds configuration specific to radiometer instruments
type InstrumentData struct {
	Name         string       `json:"name"`
	Type         string       `json:"type,omitempty"`
	SerialDevice string       `json:"serial_device,omitempty"`
	Baud         int          `json:"baud,omitempty"`
	Location     LocationData `json:"location,omitempty"`
	ViewZenith   float64      `json:"view_zenith,omitempty"`
	RelAzimuth   float64      `json:"rel_azimuth,omitempty"`
	WaterType    int          `json:"water_type,omitempty"`
}

// LocationData holds the deployment position of an instrument
type LocationData struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ProcessingData holds configuration for the Rrs processing and inversion pipeline
type ProcessingData struct {
	Methods       []string `json:"methods,omitempty"`
	GridMin       float64  `json:"grid_min,omitempty"`
	GridMax       float64  `json:"grid_max,omitempty"`
	GridStep      float64  `json:"grid_step,omitempty"`
	NIRCorrection bool     `json:"nir_correction,omitempty"`
	WindSpeed     float64  `json:"wind_speed,omitempty"`
	InversionMode string   `json:"inversion_mode,omitempty"`
	MCMC          MCMCData `json:"mcmc,omitempty"`
}

// MCMCData holds sampler settings passed through to the external package
type MCMCData struct {
	Iterations int `json:"iterations,omitempty"`
	Burn       int `json:"burn,omitempty"`
	Chains     int `json:"chains,omitempty"`
}

// SaberData holds configuration for the external R inversion package
type SaberData struct {
	RscriptPath    string `json:"rscript_path,omitempty"`
	PackageName    string `json:"package_name,omitempty"`
	PackageRef     string `json:"package_ref,omitempty"` // GitHub user/repo to install from
	CRANMirror     string `json:"cran_mirror,omitempty"`
	LibraryPath    string `json:"library_path,omitempty"` // local package source dir, overrides PackageRef
	WorkDir        string `json:"work_dir,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// StorageData holds the configuration for various storage backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty"`
	SQLite      *SQLiteData      `json:"sqlite,omitempty"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string"`
}

type SQLiteData struct {
	Path string `json:"path"`
}

// ControllerData holds the configuration for various controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

type RESTServerData struct {
	ListenAddr  string `json:"listen_addr,omitempty"`
	Port        int    `json:"port,omitempty"`
	TLSCertPath string `json:"cert,omitempty"`
	TLSKeyPath  string `json:"key,omitempty"`
}
