package alg

import (
	"math"
	"testing"

	"github.com/sirenlab/siren/internal/model"
	"github.com/sirenlab/siren/internal/model/testing_tool"
)

func buildPayoffEngine(t *testing.T, descs []*testing_tool.TaskDesc) (*PayoffEngine, *model.Topology, []*model.Task) {
	t.Helper()

	builder := testing_tool.New()
	topo := builder.GetTopology(reliableFog(), 1)
	tasks := builder.GetTasks(descs)

	return NewPayoffEngine(topo, tasks, testing_tool.DefaultConfig().Payoff), topo, tasks
}

func TestSystemPayoffSumsFogNodes(t *testing.T) {
	engine, topo, tasks := buildPayoffEngine(t, []*testing_tool.TaskDesc{
		{Workload: 100, InputSize: 1, OutputSize: 1, Memory: 64, Deadline: 10},
		{Workload: 200, InputSize: 2, OutputSize: 1, Memory: 64, Deadline: 10},
	})

	s := mustSchedule(t, topo)
	mustAssign(t, s, tasks[0].Id, []int{0}, 2.0)
	mustAssign(t, s, tasks[1].Id, []int{1}, 1.0)

	sum := 0.0
	for _, node := range topo.Fog {
		payoff, err := engine.NodePayoff(node.Id, s)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sum += payoff
	}

	system, err := engine.SystemPayoff(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(system-sum) > 1e-12 {
		t.Fatalf("system payoff %f differs from node sum %f", system, sum)
	}
}

// Cloud nodes are not players; work placed there contributes nothing to
// the system payoff.
func TestSystemPayoffExcludesCloud(t *testing.T) {
	engine, topo, tasks := buildPayoffEngine(t, []*testing_tool.TaskDesc{
		{Workload: 100, InputSize: 1, OutputSize: 1, Memory: 64, Deadline: 10},
	})

	s := mustSchedule(t, topo)
	mustAssign(t, s, tasks[0].Id, []int{topo.NumHosts() - 1}, 1.0)

	system, err := engine.SystemPayoff(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if system != 0 {
		t.Fatalf("got system payoff %f, wanted 0", system)
	}
}

func TestNodePayoffValue(t *testing.T) {
	engine, topo, tasks := buildPayoffEngine(t, []*testing_tool.TaskDesc{
		{Workload: 100, InputSize: 1, OutputSize: 1, Memory: 64, Deadline: 10},
	})

	s := mustSchedule(t, topo)
	mustAssign(t, s, tasks[0].Id, []int{0}, 2.0)

	// Failure-free node: success probability 1. Energy is 4.8 W over
	// 0.025 s of compute plus 0.8 W over the 2 MB round trip.
	energy := 4.8*0.025 + 0.8*(2*8/100.0+0.01)
	want := 0.4*1.0 - 0.6*energy

	got, err := engine.NodePayoff(0, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got payoff %f, wanted %f", got, want)
	}

	// The other fog node hosts nothing and earns nothing.
	idle, err := engine.NodePayoff(1, s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idle != 0 {
		t.Fatalf("got idle payoff %f, wanted 0", idle)
	}
}

func TestIsEpsilonEquilibrium(t *testing.T) {
	t.Run("StableWhenHostingPays", func(t *testing.T) {
		// Light tasks on failure-free nodes: hosting earns more than it
		// costs, so no node wants to push its work away.
		engine, topo, tasks := buildPayoffEngine(t, []*testing_tool.TaskDesc{
			{Workload: 100, InputSize: 1, OutputSize: 1, Memory: 64, Deadline: 10},
			{Workload: 100, InputSize: 1, OutputSize: 1, Memory: 64, Deadline: 10},
		})

		s := mustSchedule(t, topo)
		mustAssign(t, s, tasks[0].Id, []int{0}, 2.0)
		mustAssign(t, s, tasks[1].Id, []int{1}, 2.0)

		stable, err := engine.IsEpsilonEquilibrium(s, 0.01)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !stable {
			t.Fatalf("profitable hosting reported unstable")
		}
	})

	t.Run("UnstableWhenHostingCosts", func(t *testing.T) {
		// A heavy task at the lowest frequency burns far more energy
		// than its success is worth, so the hosting node improves its
		// payoff by handing the task to any other host.
		engine, topo, tasks := buildPayoffEngine(t, []*testing_tool.TaskDesc{
			{Workload: 10000, InputSize: 1, OutputSize: 1, Memory: 64, Deadline: 100},
		})

		s := mustSchedule(t, topo)
		mustAssign(t, s, tasks[0].Id, []int{0}, 0.4)

		stable, err := engine.IsEpsilonEquilibrium(s, 0.01)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stable {
			t.Fatalf("loss-making hosting reported stable")
		}
	})
}

func TestSwapNode(t *testing.T) {
	got := swapNode([]int{0, 2, 3}, 2, 1)
	want := []int{0, 1, 3}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, wanted %v", got, want)
		}
	}
}
