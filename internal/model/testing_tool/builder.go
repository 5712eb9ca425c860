// Because it is a testing package, no errors are returned,
// all problems cause a panic.

package testing_tool

import (
	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
)

type NodeDesc struct {
	Cpu         float64
	Memory      float64
	Bandwidth   float64
	Latency     float64
	FailureRate float64
}

type TaskDesc struct {
	Workload   float64
	InputSize  float64
	OutputSize float64
	Memory     float64
	Deadline   float64
	Critical   bool
}

type Builder struct {
	lastTaskId int
}

func New() *Builder {
	return &Builder{}
}

// GetTopology builds fog nodes from the descriptions plus cloudCount
// cloud nodes with effectively unconstrained capacity.
func (builder *Builder) GetTopology(fogDescs []*NodeDesc, cloudCount int) *model.Topology {
	fog := make([]*model.Node, 0, len(fogDescs))
	for _, desc := range fogDescs {
		fog = append(fog, &model.Node{
			Cpu:         desc.Cpu,
			Memory:      desc.Memory,
			Bandwidth:   desc.Bandwidth,
			Latency:     desc.Latency,
			FailureRate: desc.FailureRate,
			PowerA:      0.5,
			PowerB:      0.3,
			PowerC:      0.2,
			TxPower:     0.5,
			RxPower:     0.3,
			Frequency:   1.0,
		})
	}

	cloud := make([]*model.Node, 0, cloudCount)
	for i := 0; i < cloudCount; i++ {
		cloud = append(cloud, &model.Node{
			Cpu:         100000,
			Memory:      131072,
			Bandwidth:   10000,
			Latency:     0.1,
			FailureRate: 1e-9,
			PowerA:      0.01,
			PowerB:      0.01,
			PowerC:      0.5,
			TxPower:     0.5,
			RxPower:     0.3,
			Frequency:   1.0,
		})
	}

	topo, err := model.NewTopology(fog, cloud)
	if err != nil {
		panic(err)
	}

	return topo
}

func (builder *Builder) GetTasks(descs []*TaskDesc) []*model.Task {
	tasks := make([]*model.Task, 0, len(descs))
	for _, desc := range descs {
		tasks = append(tasks, &model.Task{
			Id:         builder.lastTaskId,
			Workload:   desc.Workload,
			InputSize:  desc.InputSize,
			OutputSize: desc.OutputSize,
			Memory:     desc.Memory,
			Deadline:   desc.Deadline,
			Critical:   desc.Critical,
		})
		builder.lastTaskId += 1
	}

	return tasks
}

// DefaultConfig is a small, fast configuration for tests.
func DefaultConfig() config.Config {
	return config.Config{
		Optimizer: config.OptimizerConfig{
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
		Weights: config.ObjectiveWeights{
			Energy:           0.6,
			Reliability:      0.4,
			ReliabilityScale: 1000,
		},
		Penalties: config.PenaltyCoefficients{
			Cpu:            1e4,
			Memory:         1e4,
			Deadline:       1e5,
			Reliability:    1e5,
			MinReliability: 0.99,
		},
		Payoff: config.PayoffWeights{
			Reliability: 0.4,
			Energy:      0.6,
			Epsilon:     0.01,
		},
	}
}
