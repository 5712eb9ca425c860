// Package scheduler wires the evaluator, the population optimizer, the
// payoff engine and the execution simulator into one run. Domain
// objects and configuration are treated as immutable for the duration
// of a run; only the simulation pass touches node state.
package scheduler

import (
	"fmt"
	"math/rand"

	"github.com/sirenlab/siren/alg"
	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
	"github.com/sirenlab/siren/logging"
	"github.com/sirenlab/siren/sim"
)

var log = logging.Get()

type Runner struct {
	cfg   config.Config
	topo  *model.Topology
	tasks []*model.Task
}

// New validates the configuration up front; a bad configuration is
// fatal before any search starts.
func New(cfg config.Config, topo *model.Topology, tasks []*model.Task) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if topo == nil {
		return nil, fmt.Errorf("%w: runner needs a topology", config.ErrInvalidConfiguration)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: runner needs at least one task", config.ErrInvalidConfiguration)
	}

	return &Runner{
		cfg:   cfg,
		topo:  topo,
		tasks: tasks,
	}, nil
}

// Run executes one full optimization: search for the best schedule,
// score it through the payoff engine, then validate it with an
// independent stochastic replay. Any evaluation error aborts the run
// in full; the result of a corrupted search is never returned.
func (r *Runner) Run(rng *rand.Rand) (*model.Result, error) {
	evaluator := alg.NewEvaluator(r.topo, r.tasks, r.cfg.Weights, r.cfg.Penalties)

	optimizer, err := alg.NewOptimizer(r.topo, r.tasks, r.cfg.Optimizer)
	if err != nil {
		return nil, err
	}

	best, trace, err := optimizer.Optimize(evaluator.Fitness, rng)
	if err != nil {
		return nil, err
	}

	bestFitness, err := evaluator.Fitness(best)
	if err != nil {
		return nil, err
	}

	game := alg.NewPayoffEngine(r.topo, r.tasks, r.cfg.Payoff)
	payoff, err := game.SystemPayoff(best)
	if err != nil {
		return nil, err
	}
	equilibrium, err := game.IsEpsilonEquilibrium(best, r.cfg.Payoff.Epsilon)
	if err != nil {
		return nil, err
	}

	// The replay gets its own source derived from the run's, so adding
	// or removing search-side draws never shifts the simulated outcomes.
	simRng := rand.New(rand.NewSource(rng.Int63()))

	simulator := sim.New(r.topo, r.tasks)
	report, err := simulator.Run(best, simRng)
	if err != nil {
		return nil, err
	}

	log.Info().Msgf(
		"run finished: fitness %f, system payoff %f, equilibrium %t, task success rate %f",
		bestFitness, payoff, equilibrium, report.TaskSuccessRate,
	)

	return &model.Result{
		BestSchedule: best,
		BestFitness:  bestFitness,
		FitnessTrace: trace,
		SystemPayoff: payoff,
		Equilibrium:  equilibrium,
		Report:       report,
	}, nil
}
