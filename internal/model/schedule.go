package model

import (
	"fmt"
	"sort"

	"github.com/sirenlab/siren/internal/config"
)

// Assignment is the decision for one task: the set of hosting node
// ids (one per replica) and the DVFS frequency they run at.
type Assignment struct {
	Nodes     []int   `json:"nodes"`
	Frequency float64 `json:"frequency"`
}

// Replicas is the task's replication factor.
func (a Assignment) Replicas() int {
	return len(a.Nodes)
}

// Schedule is the decision variable of the problem: a fixed-shape
// mapping from task id to Assignment, validated at construction so a
// stored schedule can never carry an out-of-range node, replication
// factor or frequency.
type Schedule struct {
	assignments map[int]Assignment

	numHosts    int
	maxReplicas int
	minFreq     float64
	maxFreq     float64
}

func NewSchedule(numHosts, maxReplicas int, minFreq, maxFreq float64) (*Schedule, error) {
	if numHosts < 1 {
		return nil, fmt.Errorf("%w: schedule over %d hosts", config.ErrInvalidConfiguration, numHosts)
	}
	if maxReplicas < 1 {
		return nil, fmt.Errorf("%w: max replicas %d, must be at least 1", config.ErrInvalidConfiguration, maxReplicas)
	}
	if minFreq <= 0 || maxFreq < minFreq {
		return nil, fmt.Errorf("%w: frequency range [%f, %f]", config.ErrInvalidConfiguration, minFreq, maxFreq)
	}

	return &Schedule{
		assignments: make(map[int]Assignment),
		numHosts:    numHosts,
		maxReplicas: maxReplicas,
		minFreq:     minFreq,
		maxFreq:     maxFreq,
	}, nil
}

// Assign places a task on a set of nodes at a frequency. Duplicate
// node ids collapse into one replica. The bounds fixed at
// construction are enforced here, so every stored Assignment is valid.
func (s *Schedule) Assign(taskID int, nodes []int, frequency float64) error {
	if frequency < s.minFreq || frequency > s.maxFreq {
		return fmt.Errorf(
			"%w: task %d frequency %f outside [%f, %f]",
			config.ErrInvalidConfiguration, taskID, frequency, s.minFreq, s.maxFreq,
		)
	}

	seen := make(map[int]bool, len(nodes))
	unique := make([]int, 0, len(nodes))
	for _, id := range nodes {
		if id < 0 || id >= s.numHosts {
			return fmt.Errorf("%w: task %d assigned to unknown node %d", config.ErrInvalidConfiguration, taskID, id)
		}
		if seen[id] {
			continue
		}

		seen[id] = true
		unique = append(unique, id)
	}

	if len(unique) == 0 {
		return fmt.Errorf("%w: task %d assigned to an empty node set", config.ErrInvalidConfiguration, taskID)
	}
	if len(unique) > s.maxReplicas {
		return fmt.Errorf(
			"%w: task %d has %d replicas, limit is %d",
			config.ErrInvalidConfiguration, taskID, len(unique), s.maxReplicas,
		)
	}

	s.assignments[taskID] = Assignment{Nodes: unique, Frequency: frequency}

	return nil
}

// Assignment looks up the decision for a task. The second return is
// false for tasks the schedule leaves unassigned.
func (s *Schedule) Assignment(taskID int) (Assignment, bool) {
	a, ok := s.assignments[taskID]
	return a, ok
}

func (s *Schedule) Len() int {
	return len(s.assignments)
}

// TaskIDs returns the assigned task ids in ascending order.
func (s *Schedule) TaskIDs() []int {
	ids := make([]int, 0, len(s.assignments))
	for id := range s.assignments {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// Assignments returns a copy of the decision map for serialization.
func (s *Schedule) Assignments() map[int]Assignment {
	out := make(map[int]Assignment, len(s.assignments))
	for id, a := range s.assignments {
		nodes := make([]int, len(a.Nodes))
		copy(nodes, a.Nodes)
		out[id] = Assignment{Nodes: nodes, Frequency: a.Frequency}
	}

	return out
}

func (s *Schedule) Clone() *Schedule {
	clone := &Schedule{
		assignments: make(map[int]Assignment, len(s.assignments)),
		numHosts:    s.numHosts,
		maxReplicas: s.maxReplicas,
		minFreq:     s.minFreq,
		maxFreq:     s.maxFreq,
	}
	for id, a := range s.assignments {
		nodes := make([]int, len(a.Nodes))
		copy(nodes, a.Nodes)
		clone.assignments[id] = Assignment{Nodes: nodes, Frequency: a.Frequency}
	}

	return clone
}

// Equal reports whether two schedules carry identical decisions.
func (s *Schedule) Equal(o *Schedule) bool {
	if o == nil || len(s.assignments) != len(o.assignments) {
		return false
	}

	for id, a := range s.assignments {
		b, ok := o.assignments[id]
		if !ok || a.Frequency != b.Frequency || len(a.Nodes) != len(b.Nodes) {
			return false
		}
		for i := range a.Nodes {
			if a.Nodes[i] != b.Nodes[i] {
				return false
			}
		}
	}

	return true
}
