package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
	"github.com/sirenlab/siren/internal/monitor"
	"github.com/sirenlab/siren/internal/scheduler"
	"github.com/sirenlab/siren/logging"
	"github.com/sirenlab/siren/statistics"
	"gopkg.in/yaml.v2"
)

var log = logging.Get()

// demoTopology is a small fog tier plus one cloud datacenter, enough
// to exercise every part of a run without an external scenario source.
func demoTopology() (*model.Topology, error) {
	fog := []*model.Node{
		{Cpu: 2000, Memory: 2048, Bandwidth: 100, Latency: 0.01, FailureRate: 1e-4,
			PowerA: 0.5, PowerB: 0.3, PowerC: 0.2, TxPower: 0.5, RxPower: 0.3, Frequency: 1.0},
		{Cpu: 1500, Memory: 1024, Bandwidth: 100, Latency: 0.01, FailureRate: 5e-4,
			PowerA: 0.4, PowerB: 0.3, PowerC: 0.2, TxPower: 0.5, RxPower: 0.3, Frequency: 1.0},
		{Cpu: 2500, Memory: 4096, Bandwidth: 150, Latency: 0.02, FailureRate: 2e-4,
			PowerA: 0.6, PowerB: 0.3, PowerC: 0.2, TxPower: 0.5, RxPower: 0.3, Frequency: 1.0},
		{Cpu: 1000, Memory: 1024, Bandwidth: 50, Latency: 0.02, FailureRate: 1e-3,
			PowerA: 0.3, PowerB: 0.2, PowerC: 0.1, TxPower: 0.5, RxPower: 0.3, Frequency: 1.0},
	}
	cloud := []*model.Node{
		{Cpu: 100000, Memory: 131072, Bandwidth: 10000, Latency: 0.1, FailureRate: 1e-9,
			PowerA: 0.01, PowerB: 0.01, PowerC: 0.5, TxPower: 0.5, RxPower: 0.3, Frequency: 1.0},
	}

	return model.NewTopology(fog, cloud)
}

func demoTasks() []*model.Task {
	tasks := make([]*model.Task, 0, 12)
	for i := 0; i < 12; i++ {
		tasks = append(tasks, &model.Task{
			Id:         i,
			Workload:   500 + float64(i%4)*250,
			InputSize:  5 + float64(i%3)*5,
			OutputSize: 2,
			Memory:     128 + float64(i%4)*64,
			Deadline:   5 + float64(i%3)*5,
			Critical:   i%5 == 0,
		})
	}

	return tasks
}

func main() {
	configFilePath := flag.String("config_file", "", "Path to config file")
	flag.Parse()

	fmt.Println(*configFilePath)
	yamlFile, err := os.ReadFile(*configFilePath)
	if err != nil {
		log.Err(err).Msgf("could not load config")
		os.Exit(1)
	}

	var cfg config.Config
	if err := yaml.UnmarshalStrict(yamlFile, &cfg); err != nil {
		log.Err(err).Msgf("could not load config")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Err(err).Msg("configuration rejected")
		os.Exit(1)
	}

	topo, err := demoTopology()
	if err != nil {
		log.Err(err).Msg("could not build topology")
		os.Exit(1)
	}

	runner, err := scheduler.New(cfg, topo, demoTasks())
	if err != nil {
		log.Err(err).Msg("could not initiate runner")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(cfg.Optimizer.Seed))
	result, err := runner.Run(rng)
	if err != nil {
		log.Err(err).Msg("optimization run failed")
		os.Exit(1)
	}

	log.Info().Msgf(
		"best fitness %f, task success rate %f, total energy %f J, avg response %f s",
		result.BestFitness,
		result.Report.TaskSuccessRate,
		result.Report.TotalEnergy,
		result.Report.AvgResponseTime,
	)
	fmt.Println(statistics.Display())

	if cfg.Monitor.Enabled {
		monitor.SetUp()
		monitor.Publish(result)
		if err := monitor.Run(cfg.Monitor.Address); err != nil {
			log.Err(err).Msg("monitor server stopped")
			os.Exit(1)
		}
	}
}
