package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config models villainlair.yml. One instance is built at startup and
// injected into every rule component, so thresholds are test-overridable.
type Config struct {
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Constraints struct {
		MaxMinionsPerScheme   int `yaml:"max_minions_per_scheme"`
		MaxEquipmentPerScheme int `yaml:"max_equipment_per_scheme"`
	} `yaml:"constraints"`
	Salary struct {
		DefaultMinionSalary float64 `yaml:"default_minion_salary"`
		AnomalousSalary     float64 `yaml:"anomalous_salary"`
	} `yaml:"salary"`
	Loyalty struct {
		GrowthRate    int `yaml:"growth_rate"`
		DecayRate     int `yaml:"decay_rate"`
		LowThreshold  int `yaml:"low_threshold"`
		HighThreshold int `yaml:"high_threshold"`
	} `yaml:"loyalty"`
	Equipment struct {
		DegradationRate        int      `yaml:"degradation_rate"`
		MaintenancePct         float64  `yaml:"maintenance_pct"`
		DoomsdayMaintenancePct float64  `yaml:"doomsday_maintenance_pct"`
		MinCondition           int      `yaml:"min_condition"`
		BrokenCondition        int      `yaml:"broken_condition"`
		ValidCategories        []string `yaml:"valid_categories"`
	} `yaml:"equipment"`
	Scheme struct {
		MinBudget             float64 `yaml:"min_budget"`
		MaxBudget             float64 `yaml:"max_budget"`
		SuccessHighThreshold  int     `yaml:"success_high_threshold"`
		SuccessLowThreshold   int     `yaml:"success_low_threshold"`
		HighDiabolicalRating  int     `yaml:"high_diabolical_rating"`
		ValidStatuses         []string `yaml:"valid_statuses"`
	} `yaml:"scheme"`
	Rules struct {
		OverworkedDays         int `yaml:"overworked_days"`
		SpecialistSkillLevel   int `yaml:"specialist_skill_level"`
		DoomsdaySpecialistSkill int `yaml:"doomsday_specialist_skill"`
	} `yaml:"rules"`
	Specialties []string `yaml:"specialties"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Loyalty.GrowthRate <= 0 {
		return fmt.Errorf("config.loyalty.growth_rate must be positive")
	}
	if c.Loyalty.DecayRate <= 0 {
		return fmt.Errorf("config.loyalty.decay_rate must be positive")
	}
	if c.Loyalty.LowThreshold >= c.Loyalty.HighThreshold {
		return fmt.Errorf("config.loyalty.low_threshold must be below high_threshold")
	}
	if c.Equipment.DegradationRate < 0 {
		return fmt.Errorf("config.equipment.degradation_rate cannot be negative")
	}
	if c.Equipment.MinCondition <= c.Equipment.BrokenCondition {
		return fmt.Errorf("config.equipment.min_condition must be above broken_condition")
	}
	if c.Scheme.MinBudget <= 0 || c.Scheme.MaxBudget <= c.Scheme.MinBudget {
		return fmt.Errorf("config.scheme budget bounds invalid")
	}
	if len(c.Specialties) == 0 {
		return fmt.Errorf("config.specialties is required")
	}
	if len(c.Equipment.ValidCategories) == 0 {
		return fmt.Errorf("config.equipment.valid_categories is required")
	}
	if len(c.Scheme.ValidStatuses) == 0 {
		return fmt.Errorf("config.scheme.valid_statuses is required")
	}
	if c.Rules.OverworkedDays <= 0 {
		return fmt.Errorf("config.rules.overworked_days must be positive")
	}
	return nil
}

// ValidSpecialty reports whether s is in the whitelist. Match is exact,
// including case.
func (c *Config) ValidSpecialty(s string) bool {
	for _, v := range c.Specialties {
		if v == s {
			return true
		}
	}
	return false
}

// ValidCategory reports whether cat is a known equipment category.
func (c *Config) ValidCategory(cat string) bool {
	for _, v := range c.Equipment.ValidCategories {
		if v == cat {
			return true
		}
	}
	return false
}

// ValidStatus reports whether st is a known scheme status.
func (c *Config) ValidStatus(st string) bool {
	for _, v := range c.Scheme.ValidStatuses {
		if v == st {
			return true
		}
	}
	return false
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "villainlair.yml")
}

// Default returns the built-in default Config.
func Default() *Config {
	cfg, err := FromYAML([]byte(defaultTemplate))
	if err != nil {
		panic(fmt.Sprintf("default config invalid: %v", err))
	}
	return cfg
}

// LoadOptional reads the workspace config if present, falling back to
// defaults when the file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// FromYAML parses and validates config from raw YAML bytes. Fields absent
// from the document keep their default values.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(defaultTemplate), &cfg); err != nil {
		return nil, fmt.Errorf("invalid default config yaml: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `database:
  path: villainlair.db

constraints:
  max_minions_per_scheme: 10
  max_equipment_per_scheme: 5

salary:
  default_minion_salary: 5000
  anomalous_salary: 1000000

loyalty:
  growth_rate: 3
  decay_rate: 5
  low_threshold: 40
  high_threshold: 70

equipment:
  degradation_rate: 5
  maintenance_pct: 0.15
  doomsday_maintenance_pct: 0.30
  min_condition: 50
  broken_condition: 20
  valid_categories: [Weapon, Vehicle, Gadget, "Doomsday Device"]

scheme:
  min_budget: 10000
  max_budget: 10000000
  success_high_threshold: 70
  success_low_threshold: 30
  high_diabolical_rating: 8
  valid_statuses: [Planning, Active, "On Hold", Completed, Failed]

rules:
  overworked_days: 60
  specialist_skill_level: 8
  doomsday_specialist_skill: 9

specialties: [Hacking, Explosives, Disguise, Combat, Engineering, Piloting]
`
