package model

import "time"

// TimestampLayout renders ISO-8601 with millisecond precision and a Z suffix,
// the format the downstream validator parses.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// DERReading is one telemetry record for a single DER. The field set and
// naming are a wire contract with the contract-validation consumer and must
// not change.
type DERReading struct {
	DERID             string  `json:"der_id"`
	IsOnline          bool    `json:"is_online"`
	Timestamp         string  `json:"timestamp"`
	CurrentOutput     float64 `json:"current_output"`
	PowerMeter        float64 `json:"power_meter_measurement"`
	Baseline          float64 `json:"baseline"`
	ContractThreshold float64 `json:"contract_threshold"`
	Units             string  `json:"units"`
	ProjectID         string  `json:"project_id"`
	IsStandalone      bool    `json:"is_standalone"`
	ConnectionStartAt string  `json:"connection_start_at"`
	CurrentSOC        int     `json:"current_soc"`
	Type              DERType `json:"type"`
	NameplateCapacity float64 `json:"nameplate_capacity"`
}

// FormatTimestamp renders t in the wire timestamp format (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
