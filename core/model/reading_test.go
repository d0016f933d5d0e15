package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("ADT", -3*3600)
	in := time.Date(2025, 3, 12, 10, 30, 45, 123_000_000, loc)
	got := FormatTimestamp(in)
	want := "2025-03-12T13:30:45.123Z"
	if got != want {
		t.Errorf("FormatTimestamp = %s, want %s", got, want)
	}
	if _, err := time.Parse(TimestampLayout, got); err != nil {
		t.Errorf("round trip parse: %v", err)
	}
}

func TestDERReadingWireFields(t *testing.T) {
	r := DERReading{
		DERID:             "11",
		IsOnline:          true,
		Timestamp:         "2025-03-12T13:30:45.123Z",
		CurrentOutput:     4.2,
		PowerMeter:        9.81,
		Baseline:          18,
		ContractThreshold: 15,
		Units:             "kW",
		ProjectID:         "492e323a-b7c5-48ff-bcf7-36ffd170f409",
		ConnectionStartAt: "2025-03-12T08:00:00.000Z",
		CurrentSOC:        63,
		Type:              DERBattery,
		NameplateCapacity: 10,
	}
	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	wantKeys := []string{
		"der_id", "is_online", "timestamp", "current_output",
		"power_meter_measurement", "baseline", "contract_threshold",
		"units", "project_id", "is_standalone", "connection_start_at",
		"current_soc", "type", "nameplate_capacity",
	}
	if len(doc) != len(wantKeys) {
		t.Errorf("payload has %d fields, want %d", len(doc), len(wantKeys))
	}
	for _, k := range wantKeys {
		if _, ok := doc[k]; !ok {
			t.Errorf("missing wire field %q", k)
		}
	}
	if doc["power_meter_measurement"] != 9.81 {
		t.Errorf("power_meter_measurement = %v", doc["power_meter_measurement"])
	}
	if doc["type"] != "battery" {
		t.Errorf("type = %v", doc["type"])
	}
}

func TestDERTypeValid(t *testing.T) {
	for _, typ := range []DERType{DERSolar, DERBattery, DEREV} {
		if !typ.Valid() {
			t.Errorf("%s should be valid", typ)
		}
	}
	if DERType("windmill").Valid() {
		t.Error("unknown type accepted")
	}
}

func TestTotalCapacity(t *testing.T) {
	c := Controller{DERs: []DER{
		{ID: "1", Type: DERBattery, NameplateCapacity: 10},
		{ID: "2", Type: DERSolar, NameplateCapacity: 8},
	}}
	if got := c.TotalCapacity(); got != 18 {
		t.Errorf("TotalCapacity = %.1f, want 18", got)
	}
}
