package model

import (
	"fmt"

	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/logging"
)

var log = logging.Get()

// Node is a compute host in the fog-cloud continuum. Fog nodes carry
// finite capacity and a non-negligible failure rate; cloud nodes share
// the same surface with effectively unconstrained capacity.
//
// The load counters at the bottom are mutated only by the simulator,
// never by the optimizer, so fitness evaluation stays stateless and
// re-entrant across candidates.
type Node struct {
	Id          int
	Cpu         float64 // capacity in MIPS
	Memory      float64 // MB
	Bandwidth   float64 // Mbps
	Latency     float64 // device round-trip latency share, seconds
	FailureRate float64 // failures per second

	// Power curve P(f) = PowerA*f^3 + PowerB*f + PowerC, Watts.
	PowerA  float64
	PowerB  float64
	PowerC  float64
	TxPower float64
	RxPower float64

	Frequency float64 // current DVFS operating point, GHz

	AssignedTasks map[int]bool
	CpuLoad       float64
	MemoryUsed    float64
	Energy        float64
}

// Reset clears the simulator-owned execution state.
func (n *Node) Reset() {
	n.AssignedTasks = make(map[int]bool)
	n.CpuLoad = 0
	n.MemoryUsed = 0
	n.Energy = 0
}

// ActivePower evaluates the node's DVFS power curve at frequency f.
func (n *Node) ActivePower(f float64) float64 {
	return ActivePower(n.PowerA, n.PowerB, n.PowerC, f)
}

// SuccessProbability is the chance the node survives an execution of
// the given length, exp(-lambda * T).
func (n *Node) SuccessProbability(executionTime float64) float64 {
	return NodeSuccessProbability(n.FailureRate, executionTime)
}

// ExecutionTime returns workload / (capacity * frequency).
func (n *Node) ExecutionTime(workload, frequency float64) (float64, error) {
	return ExecutionTime(workload, n.Cpu, frequency)
}

// Topology holds the fog and cloud nodes under a single id space:
// fog nodes occupy [0, NumFog), cloud nodes [NumFog, NumFog+NumCloud).
type Topology struct {
	Fog   []*Node
	Cloud []*Node

	hosts []*Node
}

// NewTopology validates the node set and assigns the contiguous id
// space. Zero or negative capacity or bandwidth is a fatal
// configuration error.
func NewTopology(fog, cloud []*Node) (*Topology, error) {
	if len(fog)+len(cloud) == 0 {
		return nil, fmt.Errorf("%w: topology has no nodes", config.ErrInvalidConfiguration)
	}

	topo := &Topology{
		Fog:   fog,
		Cloud: cloud,
		hosts: make([]*Node, 0, len(fog)+len(cloud)),
	}

	for _, node := range fog {
		topo.hosts = append(topo.hosts, node)
	}
	for _, node := range cloud {
		topo.hosts = append(topo.hosts, node)
	}

	for id, node := range topo.hosts {
		if node.Cpu <= 0 {
			return nil, fmt.Errorf("%w: node %d has capacity %f", config.ErrInvalidConfiguration, id, node.Cpu)
		}
		if node.Memory <= 0 {
			return nil, fmt.Errorf("%w: node %d has memory %f", config.ErrInvalidConfiguration, id, node.Memory)
		}
		if node.Bandwidth <= 0 {
			return nil, fmt.Errorf("%w: node %d has bandwidth %f", config.ErrInvalidConfiguration, id, node.Bandwidth)
		}
		if node.FailureRate < 0 {
			return nil, fmt.Errorf("%w: node %d has failure rate %f", config.ErrInvalidConfiguration, id, node.FailureRate)
		}

		node.Id = id
		if node.AssignedTasks == nil {
			node.Reset()
		}
	}

	log.Debug().Msgf("built topology with %d fog and %d cloud nodes", len(fog), len(cloud))

	return topo, nil
}

func (t *Topology) NumHosts() int {
	return len(t.hosts)
}

// Host returns the node for an id in [0, NumHosts), nil otherwise.
func (t *Topology) Host(id int) *Node {
	if id < 0 || id >= len(t.hosts) {
		return nil
	}

	return t.hosts[id]
}

func (t *Topology) IsCloud(id int) bool {
	return id >= len(t.Fog) && id < len(t.hosts)
}

// Reset clears execution state on every node before a simulation run.
func (t *Topology) Reset() {
	for _, node := range t.hosts {
		node.Reset()
	}
}
