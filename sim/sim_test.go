package sim

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
	"github.com/sirenlab/siren/internal/model/testing_tool"
	"github.com/sirenlab/siren/statistics"
)

func simFixture(t *testing.T, fog []*testing_tool.NodeDesc, descs []*testing_tool.TaskDesc) (*Simulator, *model.Topology, []*model.Task) {
	t.Helper()

	builder := testing_tool.New()
	topo := builder.GetTopology(fog, 1)
	tasks := builder.GetTasks(descs)

	return New(topo, tasks), topo, tasks
}

func steadyFog() []*testing_tool.NodeDesc {
	return []*testing_tool.NodeDesc{
		{Cpu: 2000, Memory: 2048, Bandwidth: 100, Latency: 0.01, FailureRate: 0},
		{Cpu: 1500, Memory: 1024, Bandwidth: 100, Latency: 0.01, FailureRate: 0},
	}
}

func steadyTasks() []*testing_tool.TaskDesc {
	return []*testing_tool.TaskDesc{
		{Workload: 500, InputSize: 5, OutputSize: 2, Memory: 128, Deadline: 10},
		{Workload: 750, InputSize: 10, OutputSize: 2, Memory: 256, Deadline: 10},
		{Workload: 250, InputSize: 2, OutputSize: 1, Memory: 64, Deadline: 5},
	}
}

func assignAll(t *testing.T, topo *model.Topology, tasks []*model.Task) *model.Schedule {
	t.Helper()

	s, err := model.NewSchedule(topo.NumHosts(), 3, 0.4, 2.0)
	if err != nil {
		t.Fatalf("could not build schedule: %v", err)
	}
	for i, task := range tasks {
		if err := s.Assign(task.Id, []int{i % len(topo.Fog)}, 1.0); err != nil {
			t.Fatalf("could not assign task %d: %v", task.Id, err)
		}
	}

	return s
}

func TestRunRejectsNilSchedule(t *testing.T) {
	sim, _, _ := simFixture(t, steadyFog(), steadyTasks())

	if _, err := sim.Run(nil, rand.New(rand.NewSource(1))); !errors.Is(err, config.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

// Failure-free nodes with generous deadlines complete every task.
func TestRunAllTasksComplete(t *testing.T) {
	sim, topo, tasks := simFixture(t, steadyFog(), steadyTasks())
	schedule := assignAll(t, topo, tasks)

	report, err := sim.Run(schedule, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if report.TaskSuccessRate != 1.0 {
		t.Fatalf("got success rate %f, wanted 1.0", report.TaskSuccessRate)
	}
	if report.TotalEnergy <= 0 {
		t.Fatalf("got total energy %f, wanted > 0", report.TotalEnergy)
	}
	if report.AvgResponseTime <= 0 {
		t.Fatalf("got avg response time %f, wanted > 0", report.AvgResponseTime)
	}
	if len(report.Records) != len(tasks) {
		t.Fatalf("got %d records, wanted %d", len(report.Records), len(tasks))
	}
	for _, record := range report.Records {
		if !record.Completed || record.ReplicaFailures != 0 {
			t.Fatalf("task %d not completed: %+v", record.TaskID, record)
		}
	}
}

// Records come back ordered by response time.
func TestRunOrdersRecordsByResponseTime(t *testing.T) {
	sim, topo, tasks := simFixture(t, steadyFog(), steadyTasks())
	schedule := assignAll(t, topo, tasks)

	report, err := sim.Run(schedule, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	for i := 1; i < len(report.Records); i++ {
		if report.Records[i].ResponseTime < report.Records[i-1].ResponseTime {
			t.Fatalf(
				"records out of order at %d: %f before %f",
				i, report.Records[i-1].ResponseTime, report.Records[i].ResponseTime,
			)
		}
	}
}

// The same seed replays to the same report.
func TestRunReproducible(t *testing.T) {
	flaky := []*testing_tool.NodeDesc{
		{Cpu: 2000, Memory: 2048, Bandwidth: 100, Latency: 0.01, FailureRate: 0.5},
		{Cpu: 1500, Memory: 1024, Bandwidth: 100, Latency: 0.01, FailureRate: 0.5},
	}
	sim, topo, tasks := simFixture(t, flaky, steadyTasks())
	schedule := assignAll(t, topo, tasks)

	first, err := sim.Run(schedule, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	second, err := sim.Run(schedule, rand.New(rand.NewSource(9)))
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	if first.TaskSuccessRate != second.TaskSuccessRate ||
		first.TotalEnergy != second.TotalEnergy ||
		first.AvgResponseTime != second.AvgResponseTime {
		t.Fatalf("seeded replays diverged: %+v vs %+v", first, second)
	}
	for i := range first.Records {
		if first.Records[i] != second.Records[i] {
			t.Fatalf("record %d diverged: %+v vs %+v", i, first.Records[i], second.Records[i])
		}
	}
}

// A task the schedule never placed runs on the cloud tier instead of
// being dropped.
func TestRunCloudFallback(t *testing.T) {
	sim, topo, tasks := simFixture(t, steadyFog(), steadyTasks())

	schedule := assignAll(t, topo, tasks[:len(tasks)-1])
	skipped := tasks[len(tasks)-1]

	fallbacksBefore := statistics.Get("cloud_fallbacks")

	report, err := sim.Run(schedule, rand.New(rand.NewSource(2)))
	if err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	var record *model.TaskRecord
	for i := range report.Records {
		if report.Records[i].TaskID == skipped.Id {
			record = &report.Records[i]
		}
	}
	if record == nil {
		t.Fatalf("skipped task missing from the report")
	}
	if !record.CloudFallback {
		t.Fatalf("skipped task not flagged as a cloud fallback: %+v", record)
	}
	if !record.Completed {
		t.Fatalf("cloud fallback did not complete: %+v", record)
	}

	if got := statistics.Get("cloud_fallbacks") - fallbacksBefore; got != 1 {
		t.Fatalf("counted %d cloud fallbacks, wanted 1", got)
	}
}

// Outcomes are recorded, never returned as errors.
func TestRunRecordsFailures(t *testing.T) {
	t.Run("DeadlineMiss", func(t *testing.T) {
		sim, topo, tasks := simFixture(t, steadyFog(), []*testing_tool.TaskDesc{
			{Workload: 500, InputSize: 5, OutputSize: 2, Memory: 128, Deadline: 1e-6},
		})
		schedule := assignAll(t, topo, tasks)

		report, err := sim.Run(schedule, rand.New(rand.NewSource(3)))
		if err != nil {
			t.Fatalf("replay failed: %v", err)
		}

		record := report.Records[0]
		if record.Completed || record.Reason != "deadline missed" {
			t.Fatalf("got record %+v, wanted a recorded deadline miss", record)
		}
		if report.TaskSuccessRate != 0 {
			t.Fatalf("got success rate %f, wanted 0", report.TaskSuccessRate)
		}
	})

	t.Run("AllReplicasFail", func(t *testing.T) {
		doomed := []*testing_tool.NodeDesc{
			{Cpu: 2000, Memory: 2048, Bandwidth: 100, Latency: 0.01, FailureRate: 1e6},
			{Cpu: 1500, Memory: 1024, Bandwidth: 100, Latency: 0.01, FailureRate: 1e6},
		}
		sim, topo, tasks := simFixture(t, doomed, []*testing_tool.TaskDesc{
			{Workload: 500, InputSize: 5, OutputSize: 2, Memory: 128, Deadline: 10},
		})

		s, err := model.NewSchedule(topo.NumHosts(), 3, 0.4, 2.0)
		if err != nil {
			t.Fatalf("could not build schedule: %v", err)
		}
		if err := s.Assign(tasks[0].Id, []int{0, 1}, 1.0); err != nil {
			t.Fatalf("could not assign: %v", err)
		}

		report, err := sim.Run(s, rand.New(rand.NewSource(4)))
		if err != nil {
			t.Fatalf("replay failed: %v", err)
		}

		record := report.Records[0]
		if record.Completed || record.Reason != "all replicas failed" {
			t.Fatalf("got record %+v, wanted all replicas failed", record)
		}
		if record.ReplicaFailures != 2 || record.Energy != 0 {
			t.Fatalf("got record %+v, wanted 2 failures at zero energy", record)
		}
	})
}

// Reset clears the execution state a replay leaves on the nodes.
func TestResetClearsNodeState(t *testing.T) {
	sim, topo, tasks := simFixture(t, steadyFog(), steadyTasks())
	schedule := assignAll(t, topo, tasks)

	if _, err := sim.Run(schedule, rand.New(rand.NewSource(5))); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	loaded := false
	for _, node := range topo.Fog {
		if node.CpuLoad > 0 || node.Energy > 0 {
			loaded = true
		}
	}
	if !loaded {
		t.Fatalf("replay left no trace on any fog node")
	}

	sim.Reset()
	for _, node := range topo.Fog {
		if node.CpuLoad != 0 || node.MemoryUsed != 0 || node.Energy != 0 || len(node.AssignedTasks) != 0 {
			t.Fatalf("node %d still carries state after reset", node.Id)
		}
	}
}
