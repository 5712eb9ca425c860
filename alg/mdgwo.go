package alg

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
	"github.com/sirenlab/siren/internal/utils"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Three continuous dimensions encode one task: a node selector, a
// replication selector and a frequency selector.
const dimsPerTask = 3

// Candidate is one member of the search population. It exclusively
// owns its personal-best memory: best is always a private copy, never
// an alias of another candidate's vector.
type Candidate struct {
	index    int
	position *mat.VecDense
	fitness  float64

	best        *mat.VecDense
	bestFitness float64
}

// MDGWO is the memory-driven leader-following population search. Every
// round the three fittest candidates pull the population toward their
// centroid while a decaying memory coefficient pulls each candidate
// back toward its own best-known position:
//
//	x' = (x_alpha + x_beta + x_delta)/3 + eta(t) * (x_pbest - x)
//	eta(t) = 1 - t/I
type MDGWO struct {
	topo  *model.Topology
	tasks []*model.Task
	cfg   config.OptimizerConfig

	// memory computes eta(t); the memoryless baseline pins it to zero.
	memory func(t, total int) float64
}

func NewMDGWO(topo *model.Topology, tasks []*model.Task, cfg config.OptimizerConfig) (*MDGWO, error) {
	if cfg.PopulationSize < 1 || cfg.Iterations < 1 || cfg.EvalWorkers < 1 {
		return nil, fmt.Errorf(
			"%w: population %d, iterations %d, workers %d must all be at least 1",
			config.ErrInvalidConfiguration, cfg.PopulationSize, cfg.Iterations, cfg.EvalWorkers,
		)
	}
	if cfg.MaxReplicas < 1 || cfg.MinFrequency <= 0 || cfg.MaxFrequency < cfg.MinFrequency || cfg.FrequencyLevels < 1 {
		return nil, fmt.Errorf(
			"%w: replicas up to %d, %d frequency levels in [%f, %f]",
			config.ErrInvalidConfiguration, cfg.MaxReplicas, cfg.FrequencyLevels, cfg.MinFrequency, cfg.MaxFrequency,
		)
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("%w: no tasks to schedule", config.ErrInvalidConfiguration)
	}

	return &MDGWO{
		topo:   topo,
		tasks:  tasks,
		cfg:    cfg,
		memory: linearDecay,
	}, nil
}

// linearDecay is eta(t) = 1 - t/I: early rounds favor convergence
// toward the leaders, late rounds favor each candidate's own memory.
func linearDecay(t, total int) float64 {
	if total < 1 {
		return 0
	}

	return 1 - float64(t)/float64(total)
}

func (o *MDGWO) dims() int {
	return dimsPerTask * len(o.tasks)
}

// bounds reports the valid range of dimension i.
func (o *MDGWO) bounds(i int) (float64, float64) {
	switch i % dimsPerTask {
	case 0:
		return 0, float64(o.topo.NumHosts() - 1)
	case 1:
		return 1, float64(o.cfg.MaxReplicas)
	default:
		return o.cfg.MinFrequency, o.cfg.MaxFrequency
	}
}

func (o *MDGWO) initPopulation(rng *rand.Rand) []*Candidate {
	cands := make([]*Candidate, 0, o.cfg.PopulationSize)
	for k := 0; k < o.cfg.PopulationSize; k++ {
		position := mat.NewVecDense(o.dims(), nil)
		for i := 0; i < o.dims(); i++ {
			lo, hi := o.bounds(i)
			position.SetVec(i, lo+rng.Float64()*(hi-lo))
		}

		cands = append(cands, &Candidate{
			index:       k,
			position:    position,
			fitness:     math.Inf(1),
			bestFitness: math.Inf(1),
		})
	}

	return cands
}

// decode discretizes a continuous position into a concrete schedule.
// It is deterministic, side-effect free and total: clamping guarantees
// an in-range schedule for any finite position.
func (o *MDGWO) decode(position *mat.VecDense) (*model.Schedule, error) {
	numHosts := o.topo.NumHosts()

	schedule, err := model.NewSchedule(numHosts, o.cfg.MaxReplicas, o.cfg.MinFrequency, o.cfg.MaxFrequency)
	if err != nil {
		return nil, err
	}

	for j, task := range o.tasks {
		nodeID := int(math.Floor(position.AtVec(dimsPerTask*j))) % numHosts
		if nodeID < 0 {
			nodeID += numHosts
		}

		replicas := int(utils.Clamp(
			math.Round(position.AtVec(dimsPerTask*j+1)),
			1, float64(o.cfg.MaxReplicas),
		))

		frequency := utils.NearestLevel(
			position.AtVec(dimsPerTask*j+2),
			o.cfg.MinFrequency, o.cfg.MaxFrequency, o.cfg.FrequencyLevels,
		)

		// Replicas spread over consecutive hosts so no two land on
		// the same node while replicas < hosts.
		nodes := make([]int, 0, replicas)
		for r := 0; r < replicas; r++ {
			nodes = append(nodes, (nodeID+r)%numHosts)
		}

		if err := schedule.Assign(task.Id, nodes, frequency); err != nil {
			return nil, err
		}
	}

	return schedule, nil
}

// evaluate scores every candidate's current position through a bounded
// worker pool. Wait is the hard iteration barrier: leader selection
// never observes a half-evaluated population, and the first evaluation
// error aborts the run.
func (o *MDGWO) evaluate(cands []*Candidate, fitness FitnessFunc) error {
	group := new(errgroup.Group)
	group.SetLimit(o.cfg.EvalWorkers)

	for _, cand := range cands {
		cand := cand
		group.Go(func() error {
			schedule, err := o.decode(cand.position)
			if err != nil {
				return err
			}

			score, err := fitness(schedule)
			if err != nil {
				return err
			}

			cand.fitness = score

			return nil
		})
	}

	return group.Wait()
}

// leaders returns the three fittest distinct candidates; a short
// population repeats the front-runner the way a short pack would.
func (o *MDGWO) leaders(cands []*Candidate) (*Candidate, *Candidate, *Candidate) {
	ranked := make([]*Candidate, len(cands))
	copy(ranked, cands)
	sort.Sort(&candidateSorter{cands: ranked})

	alpha := ranked[0]
	beta := alpha
	delta := alpha
	if len(ranked) > 1 {
		beta = ranked[1]
	}
	if len(ranked) > 2 {
		delta = ranked[2]
	}

	return alpha, beta, delta
}

// step moves every candidate toward the leader centroid plus its
// memory term, then clamps each dimension back into range.
func (o *MDGWO) step(cands []*Candidate, t int) {
	alpha, beta, delta := o.leaders(cands)
	centroid := utils.Centroid(alpha.position, beta.position, delta.position)
	eta := o.memory(t, o.cfg.Iterations)

	for _, cand := range cands {
		next := utils.AddVec(centroid, utils.ScaledVec(eta, utils.SubVec(cand.best, cand.position)))
		for i := 0; i < next.Len(); i++ {
			lo, hi := o.bounds(i)
			next.SetVec(i, utils.Clamp(next.AtVec(i), lo, hi))
		}

		cand.position = next
	}
}

func (o *MDGWO) updatePersonalBests(cands []*Candidate) {
	for _, cand := range cands {
		if cand.fitness < cand.bestFitness {
			cand.best = utils.CloneVec(cand.position)
			cand.bestFitness = cand.fitness
		}
	}
}

// Optimize runs INIT -> ITERATE(xI) -> TERMINATE and returns the
// best-ever schedule with the per-round fitness trace, which is not
// necessarily the final round's population best.
func (o *MDGWO) Optimize(fitness FitnessFunc, rng *rand.Rand) (*model.Schedule, []float64, error) {
	log.Info().Msgf(
		"starting optimization: %d candidates, %d iterations, %d tasks over %d hosts",
		o.cfg.PopulationSize, o.cfg.Iterations, len(o.tasks), o.topo.NumHosts(),
	)

	cands := o.initPopulation(rng)
	if err := o.evaluate(cands, fitness); err != nil {
		return nil, nil, err
	}
	o.updatePersonalBests(cands)

	bestPosition := utils.CloneVec(cands[0].position)
	bestFitness := cands[0].fitness
	for _, cand := range cands[1:] {
		if cand.fitness < bestFitness {
			bestPosition = utils.CloneVec(cand.position)
			bestFitness = cand.fitness
		}
	}

	trace := make([]float64, 0, o.cfg.Iterations)
	for t := 0; t < o.cfg.Iterations; t++ {
		o.step(cands, t)

		if err := o.evaluate(cands, fitness); err != nil {
			return nil, nil, err
		}
		o.updatePersonalBests(cands)

		for _, cand := range cands {
			if cand.fitness < bestFitness {
				bestPosition = utils.CloneVec(cand.position)
				bestFitness = cand.fitness
			}
		}

		trace = append(trace, bestFitness)

		if t%20 == 0 {
			log.Debug().Msgf("iteration %d/%d: best fitness %f", t, o.cfg.Iterations, bestFitness)
		}
	}

	schedule, err := o.decode(bestPosition)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Msgf("optimization finished with best fitness %f", bestFitness)

	return schedule, trace, nil
}
