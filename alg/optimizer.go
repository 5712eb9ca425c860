package alg

import (
	"fmt"
	"math/rand"

	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
)

// FitnessFunc scores a concrete schedule, lower is better. An error
// aborts the whole optimization run.
type FitnessFunc func(*model.Schedule) (float64, error)

// Optimizer is the single contract every search variant implements, so
// algorithms stay structurally comparable. Optimize returns the
// best-ever schedule and the per-iteration fitness trace. All
// randomness flows from the supplied source.
type Optimizer interface {
	Optimize(fitness FitnessFunc, rng *rand.Rand) (*model.Schedule, []float64, error)
}

// NewOptimizer dispatches on the configured algorithm name.
func NewOptimizer(
	topo *model.Topology,
	tasks []*model.Task,
	cfg config.OptimizerConfig,
) (Optimizer, error) {
	switch cfg.Algorithm {
	case "", "mdgwo":
		return NewMDGWO(topo, tasks, cfg)
	case "gwo":
		return NewStandardGWO(topo, tasks, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q", config.ErrInvalidConfiguration, cfg.Algorithm)
	}
}
