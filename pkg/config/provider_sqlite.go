package config

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	instruments, err := s.GetInstruments()
	if err != nil {
		return nil, fmt.Errorf("failed to load instruments: %w", err)
	}
	config.Instruments = instruments

	processing, err := s.getProcessingConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load processing config: %w", err)
	}
	config.Processing = *processing

	saber, err := s.getSaberConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load saber config: %w", err)
	}
	config.Saber = *saber

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	return config, nil
}

// GetInstruments returns instrument configurations from the database
func (s *SQLiteProvider) GetInstruments() ([]InstrumentData, error) {
	query := `
		SELECT name, type, serial_device, baud, latitude, longitude,
		       view_zenith, rel_azimuth, water_type
		FROM instruments
		ORDER BY name
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	var instruments []InstrumentData
	for rows.Next() {
		var inst InstrumentData
		var instType, serialDevice sql.NullString
		var baud, waterType sql.NullInt64
		var lat, lon, viewZenith, relAzimuth sql.NullFloat64

		err := rows.Scan(&inst.Name, &instType, &serialDevice, &baud,
			&lat, &lon, &viewZenith, &relAzimuth, &waterType)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instrument row: %w", err)
		}

		inst.Type = instType.String
		inst.SerialDevice = serialDevice.String
		inst.Baud = int(baud.Int64)
		inst.Location.Latitude = lat.Float64
		inst.Location.Longitude = lon.Float64
		inst.ViewZenith = viewZenith.Float64
		inst.RelAzimuth = relAzimuth.Float64
		inst.WaterType = int(waterType.Int64)

		instruments = append(instruments, inst)
	}

	return instruments, rows.Err()
}

func (s *SQLiteProvider) getProcessingConfig() (*ProcessingData, error) {
	query := `
		SELECT methods, grid_min, grid_max, grid_step, nir_correction,
		       wind_speed, inversion_mode, mcmc_iterations, mcmc_burn, mcmc_chains
		FROM processing
		LIMIT 1
	`

	var p ProcessingData
	var methodsCSV sql.NullString
	var nirCorrection sql.NullBool
	var gridMin, gridMax, gridStep, windSpeed sql.NullFloat64
	var mode sql.NullString
	var iters, burn, chains sql.NullInt64

	err := s.db.QueryRow(query).Scan(&methodsCSV, &gridMin, &gridMax, &gridStep,
		&nirCorrection, &windSpeed, &mode, &iters, &burn, &chains)
	if err == sql.ErrNoRows {
		return &ProcessingData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query processing config: %w", err)
	}

	p.Methods = splitCSV(methodsCSV.String)
	p.GridMin = gridMin.Float64
	p.GridMax = gridMax.Float64
	p.GridStep = gridStep.Float64
	p.NIRCorrection = nirCorrection.Bool
	p.WindSpeed = windSpeed.Float64
	p.InversionMode = mode.String
	p.MCMC = MCMCData{
		Iterations: int(iters.Int64),
		Burn:       int(burn.Int64),
		Chains:     int(chains.Int64),
	}

	return &p, nil
}

func (s *SQLiteProvider) getSaberConfig() (*SaberData, error) {
	query := `
		SELECT rscript_path, package_name, package_ref, cran_mirror,
		       library_path, work_dir, timeout_seconds
		FROM saber
		LIMIT 1
	`

	var sd SaberData
	var rscript, pkgName, pkgRef, mirror, libPath, workDir sql.NullString
	var timeout sql.NullInt64

	err := s.db.QueryRow(query).Scan(&rscript, &pkgName, &pkgRef, &mirror,
		&libPath, &workDir, &timeout)
	if err == sql.ErrNoRows {
		return &SaberData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query saber config: %w", err)
	}

	sd.RscriptPath = rscript.String
	sd.PackageName = pkgName.String
	sd.PackageRef = pkgRef.String
	sd.CRANMirror = mirror.String
	sd.LibraryPath = libPath.String
	sd.WorkDir = workDir.String
	sd.TimeoutSeconds = int(timeout.Int64)

	return &sd, nil
}

// GetStorageConfig returns the storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}

	var connString sql.NullString
	err := s.db.QueryRow(`SELECT connection_string FROM storage_timescaledb LIMIT 1`).Scan(&connString)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query timescaledb storage config: %w", err)
	}
	if connString.Valid && connString.String != "" {
		storage.TimescaleDB = &TimescaleDBData{ConnectionString: connString.String}
	}

	var path sql.NullString
	err = s.db.QueryRow(`SELECT path FROM storage_sqlite LIMIT 1`).Scan(&path)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query sqlite storage config: %w", err)
	}
	if path.Valid && path.String != "" {
		storage.SQLite = &SQLiteData{Path: path.String}
	}

	return storage, nil
}

// GetControllers returns controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `
		SELECT type, listen_addr, port, cert, key
		FROM controllers
		ORDER BY type
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var c ControllerData
		var listenAddr, cert, key sql.NullString
		var port sql.NullInt64

		if err := rows.Scan(&c.Type, &listenAddr, &port, &cert, &key); err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}

		if c.Type == "rest" {
			c.RESTServer = &RESTServerData{
				ListenAddr:  listenAddr.String,
				Port:        int(port.Int64),
				TLSCertPath: cert.String,
				TLSKeyPath:  key.String,
			}
		}
		controllers = append(controllers, c)
	}

	return controllers, rows.Err()
}

// IsReadOnly returns false; SQLite configs support runtime modification
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
