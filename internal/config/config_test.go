package config

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v2"
)

func validConfig() Config {
	return Config{
		Optimizer: OptimizerConfig{
			Algorithm:       "mdgwo",
			PopulationSize:  20,
			Iterations:      30,
			EvalWorkers:     4,
			MaxReplicas:     3,
			MinFrequency:    0.4,
			MaxFrequency:    2.0,
			FrequencyLevels: 9,
			Seed:            42,
		},
		Weights: ObjectiveWeights{
			Energy:           0.6,
			Reliability:      0.4,
			ReliabilityScale: 1000,
		},
		Penalties: PenaltyCoefficients{
			Cpu:            1e4,
			Memory:         1e4,
			Deadline:       1e5,
			Reliability:    1e5,
			MinReliability: 0.99,
		},
		Payoff: PayoffWeights{
			Reliability: 0.4,
			Energy:      0.6,
			Epsilon:     0.01,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("AcceptsValidConfig", func(t *testing.T) {
		cfg := validConfig()
		if err := cfg.Validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"EmptyPopulation", func(c *Config) { c.Optimizer.PopulationSize = 0 }},
		{"NoIterations", func(c *Config) { c.Optimizer.Iterations = 0 }},
		{"NoWorkers", func(c *Config) { c.Optimizer.EvalWorkers = 0 }},
		{"NoReplicas", func(c *Config) { c.Optimizer.MaxReplicas = 0 }},
		{"ZeroMinFrequency", func(c *Config) { c.Optimizer.MinFrequency = 0 }},
		{"EmptyFrequencyRange", func(c *Config) { c.Optimizer.MaxFrequency = 0.1 }},
		{"NoFrequencyLevels", func(c *Config) { c.Optimizer.FrequencyLevels = 0 }},
		{"NegativePenalty", func(c *Config) { c.Penalties.Deadline = -1 }},
		{"ReliabilityFloorAboveOne", func(c *Config) { c.Penalties.MinReliability = 1.5 }},
		{"NegativeEpsilon", func(c *Config) { c.Payoff.Epsilon = -0.01 }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := validConfig()
			c.mutate(&cfg)

			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("expected invalid configuration, got %v", err)
			}
		})
	}
}

func TestYamlRoundTrip(t *testing.T) {
	raw := `
optimizer:
  algorithm: gwo
  population_size: 50
  iterations: 100
  eval_workers: 8
  max_replicas: 2
  min_frequency: 0.5
  max_frequency: 1.5
  frequency_levels: 5
  seed: 7
weights:
  energy: 0.7
  reliability: 0.3
  reliability_scale: 500
penalties:
  cpu: 1000
  memory: 1000
  deadline: 50000
  reliability: 50000
  min_reliability: 0.95
payoff:
  reliability: 0.5
  energy: 0.5
  epsilon: 0.05
monitor:
  enabled: true
  address: ":9090"
`

	var cfg Config
	if err := yaml.UnmarshalStrict([]byte(raw), &cfg); err != nil {
		t.Fatalf("could not parse config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("parsed config rejected: %v", err)
	}

	if cfg.Optimizer.Algorithm != "gwo" || cfg.Optimizer.Seed != 7 {
		t.Fatalf("optimizer section misparsed: %+v", cfg.Optimizer)
	}
	if cfg.Penalties.MinReliability != 0.95 {
		t.Fatalf("penalties section misparsed: %+v", cfg.Penalties)
	}
	if !cfg.Monitor.Enabled || cfg.Monitor.Address != ":9090" {
		t.Fatalf("monitor section misparsed: %+v", cfg.Monitor)
	}

	t.Run("RejectsUnknownKeys", func(t *testing.T) {
		if err := yaml.UnmarshalStrict([]byte("optimizzer:\n  seed: 1\n"), &cfg); err == nil {
			t.Fatalf("expected an error for an unknown key")
		}
	})
}
