package alg

import (
	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
)

// Deviation probes per node when checking for an approximate
// equilibrium. The check is bounded effort, exhaustive verification is
// combinatorial and out of scope.
const maxDeviationProbes = 256

// PayoffEngine views fog nodes as players of a non-cooperative game.
// Each node's payoff rewards the success probability of the tasks it
// hosts and charges the energy they cost it.
type PayoffEngine struct {
	topo    *model.Topology
	tasks   []*model.Task
	weights config.PayoffWeights
}

func NewPayoffEngine(topo *model.Topology, tasks []*model.Task, weights config.PayoffWeights) *PayoffEngine {
	return &PayoffEngine{
		topo:    topo,
		tasks:   tasks,
		weights: weights,
	}
}

// NodePayoff is U_i = w_R * sum(P_succ of tasks on i) - w_E * E_i.
func (g *PayoffEngine) NodePayoff(nodeID int, s *model.Schedule) (float64, error) {
	node := g.topo.Host(nodeID)

	reliability := 0.0
	energy := 0.0

	for _, task := range g.tasks {
		assignment, ok := s.Assignment(task.Id)
		if !ok || !hostsTask(assignment, nodeID) {
			continue
		}

		execTime, err := node.ExecutionTime(task.Workload, assignment.Frequency)
		if err != nil {
			return 0, err
		}
		reliability += node.SuccessProbability(execTime)

		transfer, err := model.TransferTime(task.TotalDataSize(), node.Bandwidth, node.Latency)
		if err != nil {
			return 0, err
		}
		energy += model.ComputeEnergy(node.ActivePower(assignment.Frequency), execTime)
		energy += model.CommEnergy(node.TxPower, node.RxPower, transfer)
	}

	return g.weights.Reliability*reliability - g.weights.Energy*energy, nil
}

// SystemPayoff sums node payoffs over the fog tier.
func (g *PayoffEngine) SystemPayoff(s *model.Schedule) (float64, error) {
	total := 0.0
	for _, node := range g.topo.Fog {
		payoff, err := g.NodePayoff(node.Id, s)
		if err != nil {
			return 0, err
		}

		total += payoff
	}

	return total, nil
}

// IsEpsilonEquilibrium reports whether no fog node can raise its own
// payoff by more than epsilon through a unilateral replica move, within
// a bounded probe budget. A pass is evidence of approximate stability,
// not a proof of equilibrium.
func (g *PayoffEngine) IsEpsilonEquilibrium(s *model.Schedule, epsilon float64) (bool, error) {
	for _, node := range g.topo.Fog {
		base, err := g.NodePayoff(node.Id, s)
		if err != nil {
			return false, err
		}

		probes := 0
		for _, task := range g.tasks {
			assignment, ok := s.Assignment(task.Id)
			if !ok || !hostsTask(assignment, node.Id) {
				continue
			}

			for alt := 0; alt < g.topo.NumHosts(); alt++ {
				if alt == node.Id || hostsTask(assignment, alt) {
					continue
				}
				if probes >= maxDeviationProbes {
					break
				}
				probes++

				deviated := s.Clone()
				if err := deviated.Assign(task.Id, swapNode(assignment.Nodes, node.Id, alt), assignment.Frequency); err != nil {
					return false, err
				}

				payoff, err := g.NodePayoff(node.Id, deviated)
				if err != nil {
					return false, err
				}
				if payoff > base+epsilon {
					log.Debug().Msgf(
						"node %d improves payoff %f -> %f by moving task %d to node %d",
						node.Id, base, payoff, task.Id, alt,
					)

					return false, nil
				}
			}
		}
	}

	return true, nil
}

func hostsTask(a model.Assignment, nodeID int) bool {
	for _, id := range a.Nodes {
		if id == nodeID {
			return true
		}
	}

	return false
}

func swapNode(nodes []int, from, to int) []int {
	out := make([]int, len(nodes))
	for i, id := range nodes {
		if id == from {
			out[i] = to
		} else {
			out[i] = id
		}
	}

	return out
}
