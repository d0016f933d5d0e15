package model

// DERType identifies the kind of distributed energy resource.
type DERType string

const (
	DERSolar   DERType = "solar"
	DERBattery DERType = "battery"
	DEREV      DERType = "ev"
)

// Valid reports whether t is one of the known DER types.
func (t DERType) Valid() bool {
	switch t {
	case DERSolar, DERBattery, DEREV:
		return true
	}
	return false
}

// DER is a distributed energy resource attached to a controller.
type DER struct {
	ID                string  `json:"der_id"`
	Type              DERType `json:"type"`
	NameplateCapacity float64 `json:"nameplate_capacity"` // kW
}

// Controller is an energy controller for one customer site ("project").
// Controllers are immutable after configuration load.
type Controller struct {
	ProjectID         string  `json:"project_id"`
	UtilityID         string  `json:"utility_id"`
	Baseline          float64 `json:"baseline"`           // kW expected load absent DERs
	ContractThreshold float64 `json:"contract_threshold"` // kW minimum contracted reduction
	Location          string  `json:"location"`
	DERs              []DER   `json:"ders"`
}

// TotalCapacity returns the summed nameplate capacity of all DERs.
func (c Controller) TotalCapacity() float64 {
	var total float64
	for _, d := range c.DERs {
		total += d.NameplateCapacity
	}
	return total
}
