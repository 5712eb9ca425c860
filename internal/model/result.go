package model

// TaskRecord is the simulator's per-task outcome. A failed task is a
// normal recorded outcome, not an error.
type TaskRecord struct {
	TaskID           int     `json:"task_id"`
	Completed        bool    `json:"completed"`
	CloudFallback    bool    `json:"cloud_fallback"`
	ReplicaSuccesses int     `json:"replica_successes"`
	ReplicaFailures  int     `json:"replica_failures"`
	ResponseTime     float64 `json:"response_time"`
	Energy           float64 `json:"energy"`
	Reason           string  `json:"reason,omitempty"`
}

// Report aggregates one simulation pass over a concrete schedule.
type Report struct {
	TaskSuccessRate float64      `json:"task_success_rate"`
	TotalEnergy     float64      `json:"total_energy"`
	AvgResponseTime float64      `json:"avg_response_time"`
	Records         []TaskRecord `json:"records"`
}

// Result is what one optimization run hands back to its caller: the
// best-ever schedule, the per-iteration fitness trace, the payoff view
// of the schedule and the simulator's empirical validation metrics.
type Result struct {
	BestSchedule *Schedule `json:"-"`
	BestFitness  float64   `json:"best_fitness"`
	FitnessTrace []float64 `json:"fitness_trace"`

	SystemPayoff float64 `json:"system_payoff"`
	Equilibrium  bool    `json:"equilibrium"`

	Report *Report `json:"report"`
}
