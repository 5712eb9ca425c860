package model

import (
	"fmt"
	"math"

	"github.com/sirenlab/siren/internal/config"
)

// Pure physical formulas shared by the evaluator, the payoff engine
// and the simulator. All of them are deterministic and side-effect
// free.

// ExecutionTime is workload / (capacity * frequency), seconds.
func ExecutionTime(workload, capacity, frequency float64) (float64, error) {
	if capacity <= 0 {
		return 0, fmt.Errorf("%w: capacity %f, must be positive", config.ErrInvalidConfiguration, capacity)
	}
	if frequency <= 0 {
		return 0, fmt.Errorf("%w: frequency %f, must be positive", config.ErrInvalidConfiguration, frequency)
	}

	return workload / (capacity * frequency), nil
}

// TransferTime is size*8/bandwidth + latency, seconds, for a payload
// in MB over a link in Mbps.
func TransferTime(sizeMB, bandwidthMbps, latency float64) (float64, error) {
	if bandwidthMbps <= 0 {
		return 0, fmt.Errorf("%w: bandwidth %f, must be positive", config.ErrInvalidConfiguration, bandwidthMbps)
	}

	return sizeMB*8/bandwidthMbps + latency, nil
}

// ReplicatedSuccessProbability is 1 - prod(1 - p_i) over the per-node
// success probabilities of a task's replicas. Replica failures are
// assumed independent; the assumption is documented, not enforced.
func ReplicatedSuccessProbability(probs []float64) float64 {
	if len(probs) == 0 {
		return 0
	}

	failure := 1.0
	for _, p := range probs {
		failure *= 1 - p
	}

	return 1 - failure
}

// NodeSuccessProbability is exp(-failureRate * executionTime).
func NodeSuccessProbability(failureRate, executionTime float64) float64 {
	return math.Exp(-failureRate * executionTime)
}

// ActivePower evaluates a cubic DVFS power curve a*f^3 + b*f + c.
func ActivePower(a, b, c, frequency float64) float64 {
	return a*frequency*frequency*frequency + b*frequency + c
}

// ComputeEnergy is active power times execution time, Joules.
func ComputeEnergy(power, executionTime float64) float64 {
	return power * executionTime
}

// CommEnergy is the radio energy for a transfer, (tx + rx) * T_trans.
func CommEnergy(txPower, rxPower, transferTime float64) float64 {
	return (txPower + rxPower) * transferTime
}
