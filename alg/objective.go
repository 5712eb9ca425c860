package alg

import (
	"fmt"

	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
	"github.com/sirenlab/siren/logging"
)

var log = logging.Get()

// Evaluator scores concrete schedules. It reads the topology and the
// task set but never mutates them, so evaluations of distinct
// candidates are safe to run concurrently.
type Evaluator struct {
	topo      *model.Topology
	tasks     []*model.Task
	weights   config.ObjectiveWeights
	penalties config.PenaltyCoefficients
}

func NewEvaluator(
	topo *model.Topology,
	tasks []*model.Task,
	weights config.ObjectiveWeights,
	penalties config.PenaltyCoefficients,
) *Evaluator {
	return &Evaluator{
		topo:      topo,
		tasks:     tasks,
		weights:   weights,
		penalties: penalties,
	}
}

// taskTotalTime is input transfer + execution + output transfer for
// one replica of a task on a node.
func (e *Evaluator) taskTotalTime(task *model.Task, node *model.Node, frequency float64) (float64, error) {
	transferIn, err := model.TransferTime(task.InputSize, node.Bandwidth, node.Latency)
	if err != nil {
		return 0, err
	}

	execTime, err := node.ExecutionTime(task.Workload, frequency)
	if err != nil {
		return 0, err
	}

	transferOut, err := model.TransferTime(task.OutputSize, node.Bandwidth, node.Latency)
	if err != nil {
		return 0, err
	}

	return transferIn + execTime + transferOut, nil
}

// replicaEnergy is the compute plus communication energy one replica
// of a task costs its hosting node.
func (e *Evaluator) replicaEnergy(task *model.Task, node *model.Node, frequency float64) (float64, error) {
	execTime, err := node.ExecutionTime(task.Workload, frequency)
	if err != nil {
		return 0, err
	}

	transfer, err := model.TransferTime(task.TotalDataSize(), node.Bandwidth, node.Latency)
	if err != nil {
		return 0, err
	}

	computeEnergy := model.ComputeEnergy(node.ActivePower(frequency), execTime)
	commEnergy := model.CommEnergy(node.TxPower, node.RxPower, transfer)

	return computeEnergy + commEnergy, nil
}

// Energy sums compute and communication energy over every replica of
// every assigned task, Joules.
func (e *Evaluator) Energy(s *model.Schedule) (float64, error) {
	total := 0.0

	for _, task := range e.tasks {
		assignment, ok := s.Assignment(task.Id)
		if !ok {
			continue
		}

		for _, nodeID := range assignment.Nodes {
			energy, err := e.replicaEnergy(task, e.topo.Host(nodeID), assignment.Frequency)
			if err != nil {
				return 0, err
			}

			total += energy
		}
	}

	return total, nil
}

// taskReliability is the replicated success probability of one task
// under a schedule; zero for unassigned tasks.
func (e *Evaluator) taskReliability(task *model.Task, s *model.Schedule) (float64, error) {
	assignment, ok := s.Assignment(task.Id)
	if !ok {
		return 0, nil
	}

	probs := make([]float64, 0, len(assignment.Nodes))
	for _, nodeID := range assignment.Nodes {
		node := e.topo.Host(nodeID)
		execTime, err := node.ExecutionTime(task.Workload, assignment.Frequency)
		if err != nil {
			return 0, err
		}

		probs = append(probs, node.SuccessProbability(execTime))
	}

	return model.ReplicatedSuccessProbability(probs), nil
}

// Reliability is the mean replicated success probability over all
// tasks, in [0, 1].
func (e *Evaluator) Reliability(s *model.Schedule) (float64, error) {
	if len(e.tasks) == 0 {
		return 0, nil
	}

	total := 0.0
	for _, task := range e.tasks {
		r, err := e.taskReliability(task, s)
		if err != nil {
			return 0, err
		}

		total += r
	}

	return total / float64(len(e.tasks)), nil
}

// Penalty prices constraint violations. It is soft: each violated
// constraint adds a term growing with the violation magnitude, and the
// sum is zero exactly when every constraint holds. An unassigned task
// is charged the maximum per-task penalty.
func (e *Evaluator) Penalty(s *model.Schedule) (float64, error) {
	penalty := 0.0

	cpuLoad := make(map[int]float64)
	memLoad := make(map[int]float64)
	for _, task := range e.tasks {
		assignment, ok := s.Assignment(task.Id)
		if !ok {
			continue
		}

		for _, nodeID := range assignment.Nodes {
			cpuLoad[nodeID] += task.Workload
			memLoad[nodeID] += task.Memory
		}
	}

	// Walk node ids in ascending order: float addition is not
	// associative, so summing in map order would make the penalty
	// nondeterministic.
	for nodeID := 0; nodeID < e.topo.NumHosts(); nodeID++ {
		if util := cpuLoad[nodeID] / e.topo.Host(nodeID).Cpu; util > 1 {
			penalty += e.penalties.Cpu * (util - 1)
		}
		if util := memLoad[nodeID] / e.topo.Host(nodeID).Memory; util > 1 {
			penalty += e.penalties.Memory * (util - 1)
		}
	}

	for _, task := range e.tasks {
		assignment, ok := s.Assignment(task.Id)
		if !ok {
			penalty += e.penalties.MaxTaskPenalty()
			if task.Critical {
				penalty += e.penalties.Reliability * e.penalties.MinReliability
			}
			continue
		}

		// Deadline is judged on the first replica, the one the
		// result is awaited from.
		totalTime, err := e.taskTotalTime(task, e.topo.Host(assignment.Nodes[0]), assignment.Frequency)
		if err != nil {
			return 0, err
		}
		if totalTime > task.Deadline {
			penalty += e.penalties.Deadline
		}

		if task.Critical {
			reliability, err := e.taskReliability(task, s)
			if err != nil {
				return 0, err
			}
			if reliability < e.penalties.MinReliability {
				penalty += e.penalties.Reliability * (e.penalties.MinReliability - reliability)
			}
		}
	}

	return penalty, nil
}

// Fitness is the scalarized objective, minimized:
//
//	Fit(X) = w_E * Energy(X) - w_R * Reliability(X) * scale + Penalty(X)
//
// Deterministic for identical schedule and configuration.
func (e *Evaluator) Fitness(s *model.Schedule) (float64, error) {
	if s == nil {
		return 0, fmt.Errorf("%w: fitness of a nil schedule", config.ErrInvalidConfiguration)
	}

	energy, err := e.Energy(s)
	if err != nil {
		return 0, err
	}

	reliability, err := e.Reliability(s)
	if err != nil {
		return 0, err
	}

	penalty, err := e.Penalty(s)
	if err != nil {
		return 0, err
	}

	return e.weights.Energy*energy - e.weights.Reliability*reliability*e.weights.ReliabilityScale + penalty, nil
}
