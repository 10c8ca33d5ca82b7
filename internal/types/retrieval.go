package types

import "time"

// Retrieval is one stored inversion outcome for a single scan and AWR method.
// Column names match the retrievals hypertable.
type Retrieval struct {
	Timestamp        time.Time `gorm:"column:time" json:"time"`
	ScanID           string    `gorm:"column:scanid" json:"scan_id"`
	InstrumentName   string    `gorm:"column:instrumentname" json:"instrument"`
	Method           string    `gorm:"column:method" json:"method"`
	Mode             string    `gorm:"column:mode" json:"mode"`
	Chl              float64   `gorm:"column:chl" json:"chl"`
	ChlUncertainty   float64   `gorm:"column:chlunc" json:"chl_unc"`
	AG440            float64   `gorm:"column:ag440" json:"a_g_440"`
	AG440Uncertainty float64   `gorm:"column:ag440unc" json:"a_g_440_unc"`
	BBP550           float64   `gorm:"column:bbp550" json:"bb_p_550"`
	BBPUncertainty   float64   `gorm:"column:bbp550unc" json:"bb_p_550_unc"`
	Converged        bool      `gorm:"column:converged" json:"converged"`
	Iterations       int       `gorm:"column:iterations" json:"iterations"`
	DataPoints       int       `gorm:"column:datapoints" json:"data_points"`
	Residual         float64   `gorm:"column:residual" json:"residual"`
}

// TableName implements the gorm Tabler interface
func (Retrieval) TableName() string {
	return "retrievals"
}
