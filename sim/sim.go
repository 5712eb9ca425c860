// Package sim replays one concrete schedule through a stochastic
// execution model, independent from the analytic search formulas, to
// produce empirical validation metrics. It is the only component that
// mutates node state, and it runs tasks sequentially because the
// per-node counters are shared between replicas.
package sim

import (
	"fmt"
	"math/rand"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
	"github.com/sirenlab/siren/logging"
	"github.com/sirenlab/siren/statistics"
	"gonum.org/v1/gonum/stat"
)

var log = logging.Get()

type Simulator struct {
	topo  *model.Topology
	tasks []*model.Task
}

func New(topo *model.Topology, tasks []*model.Task) *Simulator {
	return &Simulator{
		topo:  topo,
		tasks: tasks,
	}
}

// Reset clears node execution state left over from a previous replay.
func (s *Simulator) Reset() {
	s.topo.Reset()
}

// Run replays the schedule once. Every replica placement draws a
// Bernoulli trial against the node's analytic success probability; a
// task succeeds if at least one replica survives and the elapsed time
// meets the deadline. Tasks the schedule leaves unassigned fall back
// to the cloud tier instead of being dropped. All randomness comes
// from the supplied source, so a seeded replay is reproducible.
func (s *Simulator) Run(schedule *model.Schedule, rng *rand.Rand) (*model.Report, error) {
	if schedule == nil {
		return nil, fmt.Errorf("%w: simulating a nil schedule", config.ErrInvalidConfiguration)
	}

	s.Reset()

	completionOrder := binaryheap.NewWith(func(a, b interface{}) int {
		ra := a.(model.TaskRecord)
		rb := b.(model.TaskRecord)

		if ra.ResponseTime != rb.ResponseTime {
			if ra.ResponseTime < rb.ResponseTime {
				return -1
			}
			return 1
		}

		return ra.TaskID - rb.TaskID
	})

	for _, task := range s.tasks {
		record, err := s.executeTask(task, schedule, rng)
		if err != nil {
			return nil, err
		}

		completionOrder.Push(record)
	}

	report := &model.Report{
		Records: make([]model.TaskRecord, 0, len(s.tasks)),
	}

	completed := 0
	responseTimes := make([]float64, 0, len(s.tasks))
	for !completionOrder.Empty() {
		item, _ := completionOrder.Pop()
		record := item.(model.TaskRecord)

		report.Records = append(report.Records, record)
		report.TotalEnergy += record.Energy
		if record.Completed {
			completed++
			responseTimes = append(responseTimes, record.ResponseTime)
		}
	}

	if len(s.tasks) > 0 {
		report.TaskSuccessRate = float64(completed) / float64(len(s.tasks))
	}
	if len(responseTimes) > 0 {
		report.AvgResponseTime = stat.Mean(responseTimes, nil)
	}

	log.Debug().Msgf(
		"replayed %d tasks: %d completed, total energy %f J",
		len(s.tasks), completed, report.TotalEnergy,
	)

	return report, nil
}

// executeTask runs all replicas of one task. A deadline miss or an
// all-replicas failure is a recorded outcome, never an error.
func (s *Simulator) executeTask(task *model.Task, schedule *model.Schedule, rng *rand.Rand) (model.TaskRecord, error) {
	assignment, ok := schedule.Assignment(task.Id)
	if !ok {
		return s.executeOnCloud(task, rng)
	}

	record := model.TaskRecord{TaskID: task.Id}

	bestTime := 0.0
	for _, nodeID := range assignment.Nodes {
		node := s.topo.Host(nodeID)

		elapsed, energy, err := s.runReplica(task, node, assignment.Frequency, rng)
		if err != nil {
			return model.TaskRecord{}, err
		}
		if elapsed < 0 {
			record.ReplicaFailures++
			continue
		}

		record.ReplicaSuccesses++
		record.Energy += energy
		if bestTime == 0 || elapsed < bestTime {
			bestTime = elapsed
		}
	}

	switch {
	case record.ReplicaSuccesses == 0:
		record.Reason = "all replicas failed"
		statistics.Change("tasks_failed", 1)
	case bestTime > task.Deadline:
		record.ResponseTime = bestTime
		record.Reason = "deadline missed"
		statistics.Change("tasks_failed", 1)
	default:
		record.Completed = true
		record.ResponseTime = bestTime
		statistics.Change("tasks_completed", 1)
	}

	return record, nil
}

// runReplica draws one Bernoulli trial for a replica and, on success,
// charges the node's counters. A negative elapsed time means the
// replica failed.
func (s *Simulator) runReplica(task *model.Task, node *model.Node, frequency float64, rng *rand.Rand) (float64, float64, error) {
	execTime, err := node.ExecutionTime(task.Workload, frequency)
	if err != nil {
		return 0, 0, err
	}

	transferIn, err := model.TransferTime(task.InputSize, node.Bandwidth, node.Latency)
	if err != nil {
		return 0, 0, err
	}
	transferOut, err := model.TransferTime(task.OutputSize, node.Bandwidth, node.Latency)
	if err != nil {
		return 0, 0, err
	}

	if rng.Float64() >= node.SuccessProbability(execTime) {
		return -1, 0, nil
	}

	energy := model.ComputeEnergy(node.ActivePower(frequency), execTime)
	energy += model.CommEnergy(node.TxPower, node.RxPower, transferIn+transferOut)

	node.AssignedTasks[task.Id] = true
	node.CpuLoad += task.Workload
	node.MemoryUsed += task.Memory
	node.Energy += energy

	return transferIn + execTime + transferOut, energy, nil
}

// executeOnCloud is the fallback for tasks the schedule never placed:
// they run on a cloud node with near-certain success and the cloud's
// own energy and latency profile, and are recorded as executed rather
// than silently dropped.
func (s *Simulator) executeOnCloud(task *model.Task, rng *rand.Rand) (model.TaskRecord, error) {
	record := model.TaskRecord{TaskID: task.Id, CloudFallback: true}

	if len(s.topo.Cloud) == 0 {
		record.Reason = "unassigned and no cloud tier available"
		statistics.Change("tasks_failed", 1)

		return record, nil
	}

	node := s.topo.Cloud[rng.Intn(len(s.topo.Cloud))]
	statistics.Change("cloud_fallbacks", 1)

	elapsed, energy, err := s.runReplica(task, node, node.Frequency, rng)
	if err != nil {
		return model.TaskRecord{}, err
	}

	switch {
	case elapsed < 0:
		record.ReplicaFailures = 1
		record.Reason = "cloud replica failed"
		statistics.Change("tasks_failed", 1)
	case elapsed > task.Deadline:
		record.ReplicaSuccesses = 1
		record.ResponseTime = elapsed
		record.Energy = energy
		record.Reason = "deadline missed on cloud"
		statistics.Change("tasks_failed", 1)
	default:
		record.ReplicaSuccesses = 1
		record.Completed = true
		record.ResponseTime = elapsed
		record.Energy = energy
		statistics.Change("tasks_completed", 1)
	}

	return record, nil
}
