package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/gridpulse/dersim/core/metrics"
	"github.com/gridpulse/dersim/core/model"
	"github.com/gridpulse/dersim/infra/mqtt"
)

// Load reads the configuration file at path (yaml or json), applies optional
// DERSIM_ environment overrides, fills defaults and validates.
func Load(path string) (*Root, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("DERSIM_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "dersim_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Root
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Simulation.SetDefaults()
	cfg.Violation.SetDefaults()
	cfg.Metrics.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Root holds every sub-configuration of the simulator.
type Root struct {
	MQTT        mqtt.Config        `json:"mqtt"`
	Simulation  SimulationConfig   `json:"simulation"`
	Violation   ViolationConfig    `json:"violation"`
	Metrics     metrics.Config     `json:"metrics"`
	Controllers []model.Controller `json:"controllers"`
}

// Validate checks the whole document. Configuration errors are fatal at
// startup, before any worker runs.
func (c *Root) Validate() error {
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Simulation.Validate(); err != nil {
		return err
	}
	if err := c.Violation.Validate(); err != nil {
		return err
	}
	if len(c.Controllers) == 0 {
		return fmt.Errorf("at least one controller is required")
	}
	for _, ctrl := range c.Controllers {
		if ctrl.ProjectID == "" {
			return fmt.Errorf("controller without project_id")
		}
		if ctrl.Baseline <= 0 {
			return fmt.Errorf("project %s: baseline must be positive", ctrl.ProjectID)
		}
		if ctrl.ContractThreshold <= 0 {
			return fmt.Errorf("project %s: contract_threshold must be positive", ctrl.ProjectID)
		}
		for _, d := range ctrl.DERs {
			if !d.Type.Valid() {
				return fmt.Errorf("project %s: unknown DER type %q", ctrl.ProjectID, d.Type)
			}
			if d.NameplateCapacity <= 0 {
				return fmt.Errorf("project %s: der %s: nameplate_capacity must be positive",
					ctrl.ProjectID, d.ID)
			}
		}
	}
	return nil
}
