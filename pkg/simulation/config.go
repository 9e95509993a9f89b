package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	golog "github.com/tochemey/goakt/v3/log"
)

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// UpdateOrder selects how one frame is evaluated.
type UpdateOrder string

const (
	// TwoPhase computes every acceleration from a frozen snapshot of the
	// flock, then integrates every agent. Symmetric, order independent.
	TwoPhase UpdateOrder = "two-phase"
	// Sequential steers and integrates agent i before moving to agent i+1,
	// so later agents see neighbors already moved this frame.
	Sequential UpdateOrder = "sequential"
)

//go:embed config.schema.json
var configSchema []byte

const configSchemaURL = "https://github.com/lao-tseu-is-alive/go-flocking-ripples/config.schema.json"

// Tuning holds every numeric constant of the flocking model.
type Tuning struct {
	// Agent base parameters, jittered per agent at creation
	MaxSpeed        float64 `json:"maxSpeed" toml:"maxSpeed"`
	CruiseSpeed     float64 `json:"cruiseSpeed" toml:"cruiseSpeed"`
	MaxForce        float64 `json:"maxForce" toml:"maxForce"`
	ThrottleGain    float64 `json:"throttleGain" toml:"throttleGain"`
	MaxTurnRate     float64 `json:"maxTurnRate" toml:"maxTurnRate"` // radians per frame
	FieldOfView     float64 `json:"fieldOfView" toml:"fieldOfView"` // radians, full cone
	NeighborCap     int     `json:"neighborCap" toml:"neighborCap"`
	InitialSpeedMin float64 `json:"initialSpeedMin" toml:"initialSpeedMin"`
	InitialSpeedMax float64 `json:"initialSpeedMax" toml:"initialSpeedMax"`

	CruiseJitter float64 `json:"cruiseJitter" toml:"cruiseJitter"`
	ForceJitter  float64 `json:"forceJitter" toml:"forceJitter"`
	TurnJitter   float64 `json:"turnJitter" toml:"turnJitter"`

	// Steering
	AlignRadius         float64 `json:"alignRadius" toml:"alignRadius"`
	CohesionRadius      float64 `json:"cohesionRadius" toml:"cohesionRadius"`
	SeparationRadius    float64 `json:"separationRadius" toml:"separationRadius"`
	AlignWeight         float64 `json:"alignWeight" toml:"alignWeight"`
	CohesionWeight      float64 `json:"cohesionWeight" toml:"cohesionWeight"`
	SeparationWeight    float64 `json:"separationWeight" toml:"separationWeight"`
	AlignSpeedFactor    float64 `json:"alignSpeedFactor" toml:"alignSpeedFactor"`
	CohesionSpeedFactor float64 `json:"cohesionSpeedFactor" toml:"cohesionSpeedFactor"`
	RetainProbability   float64 `json:"retainProbability" toml:"retainProbability"`
	WanderFactor        float64 `json:"wanderFactor" toml:"wanderFactor"`

	// Containment
	EdgeMargin float64 `json:"edgeMargin" toml:"edgeMargin"`
	LookAhead  float64 `json:"lookAhead" toml:"lookAhead"`
	BankFactor float64 `json:"bankFactor" toml:"bankFactor"`

	// Ripples
	RippleDurationMs   float64 `json:"rippleDurationMs" toml:"rippleDurationMs"`
	RippleRadiusFactor float64 `json:"rippleRadiusFactor" toml:"rippleRadiusFactor"`
	RippleStrength     float64 `json:"rippleStrength" toml:"rippleStrength"`
	RippleBandFactor   float64 `json:"rippleBandFactor" toml:"rippleBandFactor"`
	RippleBandMin      float64 `json:"rippleBandMin" toml:"rippleBandMin"`
	RippleBandMax      float64 `json:"rippleBandMax" toml:"rippleBandMax"`
}

// Config is the full set of start-up parameters of a simulation.
type Config struct {
	Population  int         `json:"population" toml:"population"`
	Width       float64     `json:"width" toml:"width"`
	Height      float64     `json:"height" toml:"height"`
	Seed        uint64      `json:"seed" toml:"seed"`
	UpdateOrder UpdateOrder `json:"updateOrder" toml:"updateOrder"`
	LogLevel    string      `json:"logLevel" toml:"logLevel"`
	Tuning      Tuning      `json:"tuning" toml:"tuning"`
}

// DefaultTuning returns the reference flocking constants.
func DefaultTuning() Tuning {
	return Tuning{
		MaxSpeed:        4.0,
		CruiseSpeed:     2.8,
		MaxForce:        0.1,
		ThrottleGain:    0.05,
		MaxTurnRate:     0.15,
		FieldOfView:     3 * math.Pi / 2,
		NeighborCap:     7,
		InitialSpeedMin: 2,
		InitialSpeedMax: 4,

		CruiseJitter: 0.10,
		ForceJitter:  0.10,
		TurnJitter:   0.20,

		AlignRadius:         70,
		CohesionRadius:      60,
		SeparationRadius:    40,
		AlignWeight:         0.7,
		CohesionWeight:      0.5,
		SeparationWeight:    2.0,
		AlignSpeedFactor:    0.7,
		CohesionSpeedFactor: 0.4,
		RetainProbability:   0.75,
		WanderFactor:        0.04,

		EdgeMargin: 40,
		LookAhead:  50,
		BankFactor: 0.8,

		RippleDurationMs:   700,
		RippleRadiusFactor: 0.3,
		RippleStrength:     0.38,
		RippleBandFactor:   0.015,
		RippleBandMin:      8,
		RippleBandMax:      16,
	}
}

// DefaultConfig returns a ready to run configuration.
func DefaultConfig() *Config {
	return &Config{
		Population:  200,
		Width:       1000,
		Height:      800,
		Seed:        1,
		UpdateOrder: TwoPhase,
		LogLevel:    "info",
		Tuning:      DefaultTuning(),
	}
}

// Validate reports the first configuration error found, wrapping ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Population <= 0 {
		return fmt.Errorf("%w: population must be positive, got %d", ErrInvalidConfig, c.Population)
	}
	if err := validateSize(c.Width, c.Height); err != nil {
		return err
	}
	switch c.UpdateOrder {
	case TwoPhase, Sequential:
	default:
		return fmt.Errorf("%w: unknown update order %q", ErrInvalidConfig, c.UpdateOrder)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return c.Tuning.Validate()
}

// Validate checks the numeric ranges the engine relies on.
func (t Tuning) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"maxSpeed", t.MaxSpeed},
		{"cruiseSpeed", t.CruiseSpeed},
		{"maxForce", t.MaxForce},
		{"maxTurnRate", t.MaxTurnRate},
		{"fieldOfView", t.FieldOfView},
		{"alignRadius", t.AlignRadius},
		{"cohesionRadius", t.CohesionRadius},
		{"separationRadius", t.SeparationRadius},
		{"rippleDurationMs", t.RippleDurationMs},
	}
	for _, p := range positive {
		if !(p.value > 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidConfig, p.name, p.value)
		}
	}
	if t.RippleDuration() <= 0 {
		return fmt.Errorf("%w: rippleDurationMs %v is shorter than a nanosecond", ErrInvalidConfig, t.RippleDurationMs)
	}
	if t.NeighborCap < 1 {
		return fmt.Errorf("%w: neighborCap must be at least 1, got %d", ErrInvalidConfig, t.NeighborCap)
	}
	if t.ThrottleGain < 0 || t.ThrottleGain > 1 {
		return fmt.Errorf("%w: throttleGain must be in [0,1], got %v", ErrInvalidConfig, t.ThrottleGain)
	}
	if t.RetainProbability <= 0 || t.RetainProbability > 1 {
		return fmt.Errorf("%w: retainProbability must be in (0,1], got %v", ErrInvalidConfig, t.RetainProbability)
	}
	if t.InitialSpeedMin < 0 || t.InitialSpeedMax < t.InitialSpeedMin {
		return fmt.Errorf("%w: initial speed range [%v,%v] is empty", ErrInvalidConfig, t.InitialSpeedMin, t.InitialSpeedMax)
	}
	if t.RippleBandMin > t.RippleBandMax {
		return fmt.Errorf("%w: rippleBandMin %v exceeds rippleBandMax %v", ErrInvalidConfig, t.RippleBandMin, t.RippleBandMax)
	}
	return nil
}

// RippleDuration is the ripple life span as a time.Duration.
func (t Tuning) RippleDuration() time.Duration {
	return time.Duration(t.RippleDurationMs * float64(time.Millisecond))
}

func validateSize(width, height float64) error {
	if !(width > 0) || !(height > 0) {
		return fmt.Errorf("%w: world size must be positive, got %vx%v", ErrInvalidConfig, width, height)
	}
	return nil
}

// LoadConfig loads configuration from a JSON or TOML file and validates it
// against the embedded schema. Missing fields keep their DefaultConfig value.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(configSchemaURL, bytes.NewReader(configSchema)); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	sch, err := compiler.Compile(configSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(configFile), ".toml") {
		if b, err = tomlToJSON(b); err != nil {
			return nil, err
		}
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// tomlToJSON re-encodes a TOML document as JSON so both formats share one schema.
func tomlToJSON(b []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := toml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode config toml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config toml: %w", err)
	}
	return out, nil
}

// ParseLogLevel maps a config level name onto the goakt logger levels.
// The empty string means info.
func ParseLogLevel(name string) (golog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return golog.DebugLevel, nil
	case "", "info":
		return golog.InfoLevel, nil
	case "warn", "warning":
		return golog.WarningLevel, nil
	case "error":
		return golog.ErrorLevel, nil
	}
	return golog.InvalidLevel, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, name)
}

// NewLogger builds the zap-backed goakt logger used by the simulation and the harnesses.
func NewLogger(level string, w io.Writer) (golog.Logger, error) {
	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}
	return golog.New(lvl, w), nil
}
