package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is the class of fatal setup errors: invalid
// ranges, zero or negative capacities, malformed optimizer parameters.
// It is surfaced immediately and never retried.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// ObjectiveWeights scalarize the multi-objective fitness,
// Fit = Energy*E - Reliability*R*ReliabilityScale + Penalty.
type ObjectiveWeights struct {
	Energy           float64 `yaml:"energy"`
	Reliability      float64 `yaml:"reliability"`
	ReliabilityScale float64 `yaml:"reliability_scale"`
}

// PenaltyCoefficients price soft constraint violations. A violated
// constraint contributes a positive term proportional to its magnitude,
// it never rejects a candidate outright.
type PenaltyCoefficients struct {
	Cpu            float64 `yaml:"cpu"`
	Memory         float64 `yaml:"memory"`
	Deadline       float64 `yaml:"deadline"`
	Reliability    float64 `yaml:"reliability"`
	MinReliability float64 `yaml:"min_reliability"`
}

// MaxTaskPenalty is the penalty charged for a task with no assigned
// nodes. The deadline coefficient is the largest per-task coefficient,
// so an unassigned task can never look cheaper than a badly placed one.
func (p PenaltyCoefficients) MaxTaskPenalty() float64 {
	return p.Deadline
}

// PayoffWeights parameterize the per-node payoff,
// U_i = Reliability*sum(P_succ) - Energy*E_i.
type PayoffWeights struct {
	Reliability float64 `yaml:"reliability"`
	Energy      float64 `yaml:"energy"`
	Epsilon     float64 `yaml:"epsilon"`
}

type OptimizerConfig struct {
	Algorithm       string  `yaml:"algorithm"`
	PopulationSize  int     `yaml:"population_size"`
	Iterations      int     `yaml:"iterations"`
	EvalWorkers     int     `yaml:"eval_workers"`
	MaxReplicas     int     `yaml:"max_replicas"`
	MinFrequency    float64 `yaml:"min_frequency"`
	MaxFrequency    float64 `yaml:"max_frequency"`
	FrequencyLevels int     `yaml:"frequency_levels"`
	Seed            int64   `yaml:"seed"`
}

type MonitorConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

type Config struct {
	Optimizer OptimizerConfig     `yaml:"optimizer"`
	Weights   ObjectiveWeights    `yaml:"weights"`
	Penalties PenaltyCoefficients `yaml:"penalties"`
	Payoff    PayoffWeights       `yaml:"payoff"`
	Monitor   MonitorConfig       `yaml:"monitor"`
}

func (c *Config) Validate() error {
	o := c.Optimizer

	if o.PopulationSize < 1 {
		return fmt.Errorf("%w: population size %d, must be at least 1", ErrInvalidConfiguration, o.PopulationSize)
	}
	if o.Iterations < 1 {
		return fmt.Errorf("%w: iteration count %d, must be at least 1", ErrInvalidConfiguration, o.Iterations)
	}
	if o.EvalWorkers < 1 {
		return fmt.Errorf("%w: eval workers %d, must be at least 1", ErrInvalidConfiguration, o.EvalWorkers)
	}
	if o.MaxReplicas < 1 {
		return fmt.Errorf("%w: max replicas %d, must be at least 1", ErrInvalidConfiguration, o.MaxReplicas)
	}
	if o.MinFrequency <= 0 {
		return fmt.Errorf("%w: min frequency %f, must be positive", ErrInvalidConfiguration, o.MinFrequency)
	}
	if o.MaxFrequency < o.MinFrequency {
		return fmt.Errorf(
			"%w: frequency range [%f, %f] is empty",
			ErrInvalidConfiguration, o.MinFrequency, o.MaxFrequency,
		)
	}
	if o.FrequencyLevels < 1 {
		return fmt.Errorf("%w: frequency levels %d, must be at least 1", ErrInvalidConfiguration, o.FrequencyLevels)
	}

	if c.Penalties.Cpu < 0 || c.Penalties.Memory < 0 || c.Penalties.Deadline < 0 || c.Penalties.Reliability < 0 {
		return fmt.Errorf("%w: penalty coefficients must be non-negative", ErrInvalidConfiguration)
	}
	if c.Penalties.MinReliability < 0 || c.Penalties.MinReliability > 1 {
		return fmt.Errorf(
			"%w: min reliability %f, must be in [0, 1]",
			ErrInvalidConfiguration, c.Penalties.MinReliability,
		)
	}
	if c.Payoff.Epsilon < 0 {
		return fmt.Errorf("%w: payoff epsilon %f, must be non-negative", ErrInvalidConfiguration, c.Payoff.Epsilon)
	}

	return nil
}
