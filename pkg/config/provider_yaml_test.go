package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testYAML = `
instruments:
  - name: pier-ramses
    type: ramses
    serial_device: /dev/ttyUSB0
    baud: 9600
    latitude: 54.32
    longitude: 10.12
    view_zenith: 40
    rel_azimuth: 135
    water_type: 2

processing:
  methods: [M99, FLAT]
  grid_min: 400
  grid_max: 800
  grid_step: 50
  nir_correction: true
  wind_speed: 3.5
  inversion_mode: gradient
  mcmc:
    iterations: 5000
    burn: 1000
    chains: 3

saber:
  rscript_path: /usr/bin/Rscript
  package_name: SABER.fast
  package_ref: homas01123/SABER_fast
  library_path: /opt/r-libs
  timeout_seconds: 120

storage:
  timescaledb:
    connection_string: "host=db user=trios dbname=trios"
  sqlite:
    path: /var/lib/trios/retrievals.db

controllers:
  - type: rest
    rest:
      port: 8080
`

func writeTestConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestYAMLProviderLoadConfig(t *testing.T) {
	p := NewYAMLProvider(writeTestConfig(t, testYAML))

	cfg, err := p.LoadConfig()
	require.NoError(t, err)

	require.Len(t, cfg.Instruments, 1)
	inst := cfg.Instruments[0]
	require.Equal(t, "pier-ramses", inst.Name)
	require.Equal(t, "ramses", inst.Type)
	require.Equal(t, "/dev/ttyUSB0", inst.SerialDevice)
	require.Equal(t, 9600, inst.Baud)
	require.Equal(t, 54.32, inst.Location.Latitude)
	require.Equal(t, 10.12, inst.Location.Longitude)
	require.Equal(t, 40.0, inst.ViewZenith)
	require.Equal(t, 135.0, inst.RelAzimuth)
	require.Equal(t, 2, inst.WaterType)

	require.Equal(t, []string{"M99", "FLAT"}, cfg.Processing.Methods)
	require.Equal(t, 400.0, cfg.Processing.GridMin)
	require.Equal(t, 800.0, cfg.Processing.GridMax)
	require.True(t, cfg.Processing.NIRCorrection)
	require.Equal(t, "gradient", cfg.Processing.InversionMode)
	require.Equal(t, 5000, cfg.Processing.MCMC.Iterations)
	require.Equal(t, 3, cfg.Processing.MCMC.Chains)

	require.Equal(t, "/usr/bin/Rscript", cfg.Saber.RscriptPath)
	require.Equal(t, "SABER.fast", cfg.Saber.PackageName)
	require.Equal(t, "homas01123/SABER_fast", cfg.Saber.PackageRef)
	require.Equal(t, 120, cfg.Saber.TimeoutSeconds)

	require.NotNil(t, cfg.Storage.TimescaleDB)
	require.Equal(t, "host=db user=trios dbname=trios", cfg.Storage.TimescaleDB.ConnectionString)
	require.NotNil(t, cfg.Storage.SQLite)
	require.Equal(t, "/var/lib/trios/retrievals.db", cfg.Storage.SQLite.Path)

	require.Len(t, cfg.Controllers, 1)
	require.Equal(t, "rest", cfg.Controllers[0].Type)
	require.NotNil(t, cfg.Controllers[0].RESTServer)
	require.Equal(t, 8080, cfg.Controllers[0].RESTServer.Port)
}

func TestYAMLProviderAccessorsLoadLazily(t *testing.T) {
	p := NewYAMLProvider(writeTestConfig(t, testYAML))

	instruments, err := p.GetInstruments()
	require.NoError(t, err)
	require.Len(t, instruments, 1)

	storage, err := p.GetStorageConfig()
	require.NoError(t, err)
	require.NotNil(t, storage.SQLite)

	controllers, err := p.GetControllers()
	require.NoError(t, err)
	require.Len(t, controllers, 1)

	require.True(t, p.IsReadOnly())
	require.NoError(t, p.Close())
}

func TestYAMLProviderMissingFile(t *testing.T) {
	p := NewYAMLProvider(filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := p.LoadConfig()
	require.Error(t, err)
}

func TestYAMLProviderOptionalSectionsAbsent(t *testing.T) {
	p := NewYAMLProvider(writeTestConfig(t, "instruments: []\n"))

	cfg, err := p.LoadConfig()
	require.NoError(t, err)
	require.Empty(t, cfg.Instruments)
	require.Nil(t, cfg.Storage.TimescaleDB)
	require.Nil(t, cfg.Storage.SQLite)
	require.Empty(t, cfg.Controllers)
}
