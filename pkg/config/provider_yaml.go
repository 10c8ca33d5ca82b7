package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// YAML-tagged mirror structs; converted to the JSON-tagged ConfigData on load.
type instrumentYAML struct {
	Name         string  `yaml:"name"`
	Type         string  `yaml:"type,omitempty"`
	SerialDevice string  `yaml:"serial_device,omitempty"`
	Baud         int     `yaml:"baud,omitempty"`
	Latitude     float64 `yaml:"latitude,omitempty"`
	Longitude    float64 `yaml:"longitude,omitempty"`
	ViewZenith   float64 `yaml:"view_zenith,omitempty"`
	RelAzimuth   float64 `yaml:"rel_azimuth,omitempty"`
	WaterType    int     `yaml:"water_type,omitempty"`
}

type processingYAML struct {
	Methods       []string `yaml:"methods,omitempty"`
	GridMin       float64  `yaml:"grid_min,omitempty"`
	GridMax       float64  `yaml:"grid_max,omitempty"`
	GridStep      float64  `yaml:"grid_step,omitempty"`
	NIRCorrection bool     `yaml:"nir_correction,omitempty"`
	WindSpeed     float64  `yaml:"wind_speed,omitempty"`
	InversionMode string   `yaml:"inversion_mode,omitempty"`
	MCMC          mcmcYAML `yaml:"mcmc,omitempty"`
}

type mcmcYAML struct {
	Iterations int `yaml:"iterations,omitempty"`
	Burn       int `yaml:"burn,omitempty"`
	Chains     int `yaml:"chains,omitempty"`
}

type saberYAML struct {
	RscriptPath    string `yaml:"rscript_path,omitempty"`
	PackageName    string `yaml:"package_name,omitempty"`
	PackageRef     string `yaml:"package_ref,omitempty"`
	CRANMirror     string `yaml:"cran_mirror,omitempty"`
	LibraryPath    string `yaml:"library_path,omitempty"`
	WorkDir        string `yaml:"work_dir,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

type storageYAML struct {
	TimescaleDB *struct {
		ConnectionString string `yaml:"connection_string"`
	} `yaml:"timescaledb,omitempty"`
	SQLite *struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite,omitempty"`
}

type controllerYAML struct {
	Type string `yaml:"type,omitempty"`
	REST *struct {
		ListenAddr  string `yaml:"listen_addr,omitempty"`
		Port        int    `yaml:"port,omitempty"`
		TLSCertPath string `yaml:"cert,omitempty"`
		TLSKeyPath  string `yaml:"key,omitempty"`
	} `yaml:"rest,omitempty"`
}

// LoadConfig loads the complete configuration from a YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	var yamlConfig struct {
		Instruments []instrumentYAML `yaml:"instruments"`
		Processing  processingYAML   `yaml:"processing,omitempty"`
		Saber       saberYAML        `yaml:"saber,omitempty"`
		Storage     storageYAML      `yaml:"storage,omitempty"`
		Controllers []controllerYAML `yaml:"controllers,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	config := &ConfigData{
		Instruments: make([]InstrumentData, len(yamlConfig.Instruments)),
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	for i, inst := range yamlConfig.Instruments {
		config.Instruments[i] = InstrumentData{
			Name:         inst.Name,
			Type:         inst.Type,
			SerialDevice: inst.SerialDevice,
			Baud:         inst.Baud,
			Location: LocationData{
				Latitude:  inst.Latitude,
				Longitude: inst.Longitude,
			},
			ViewZenith: inst.ViewZenith,
			RelAzimuth: inst.RelAzimuth,
			WaterType:  inst.WaterType,
		}
	}

	config.Processing = ProcessingData{
		Methods:       yamlConfig.Processing.Methods,
		GridMin:       yamlConfig.Processing.GridMin,
		GridMax:       yamlConfig.Processing.GridMax,
		GridStep:      yamlConfig.Processing.GridStep,
		NIRCorrection: yamlConfig.Processing.NIRCorrection,
		WindSpeed:     yamlConfig.Processing.WindSpeed,
		InversionMode: yamlConfig.Processing.InversionMode,
		MCMC: MCMCData{
			Iterations: yamlConfig.Processing.MCMC.Iterations,
			Burn:       yamlConfig.Processing.MCMC.Burn,
			Chains:     yamlConfig.Processing.MCMC.Chains,
		},
	}

	config.Saber = SaberData{
		RscriptPath:    yamlConfig.Saber.RscriptPath,
		PackageName:    yamlConfig.Saber.PackageName,
		PackageRef:     yamlConfig.Saber.PackageRef,
		CRANMirror:     yamlConfig.Saber.CRANMirror,
		LibraryPath:    yamlConfig.Saber.LibraryPath,
		WorkDir:        yamlConfig.Saber.WorkDir,
		TimeoutSeconds: yamlConfig.Saber.TimeoutSeconds,
	}

	config.Storage = StorageData{}
	if yamlConfig.Storage.TimescaleDB != nil {
		config.Storage.TimescaleDB = &TimescaleDBData{
			ConnectionString: yamlConfig.Storage.TimescaleDB.ConnectionString,
		}
	}
	if yamlConfig.Storage.SQLite != nil {
		config.Storage.SQLite = &SQLiteData{
			Path: yamlConfig.Storage.SQLite.Path,
		}
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}
		if controller.REST != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				ListenAddr:  controller.REST.ListenAddr,
				Port:        controller.REST.Port,
				TLSCertPath: controller.REST.TLSCertPath,
				TLSKeyPath:  controller.REST.TLSKeyPath,
			}
		}
	}

	y.config = config
	return config, nil
}

// GetInstruments returns instrument configurations
func (y *YAMLProvider) GetInstruments() ([]InstrumentData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Instruments, nil
}

// GetStorageConfig returns the storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// GetControllers returns controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return y.config.Controllers, nil
}

// IsReadOnly returns true; YAML configs are not modified at runtime
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML providers
func (y *YAMLProvider) Close() error {
	return nil
}
