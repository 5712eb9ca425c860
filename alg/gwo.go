package alg

import (
	"github.com/sirenlab/siren/internal/config"
	"github.com/sirenlab/siren/internal/model"
)

// StandardGWO is the memoryless leader-following baseline: the update
// keeps only the social pull toward the leader centroid,
//
//	x' = (x_alpha + x_beta + x_delta)/3
//
// It reuses the memory-driven machinery with the memory coefficient
// pinned to zero, so both variants stay structurally comparable under
// the same Optimizer contract.
type StandardGWO struct {
	*MDGWO
}

func NewStandardGWO(topo *model.Topology, tasks []*model.Task, cfg config.OptimizerConfig) (*StandardGWO, error) {
	inner, err := NewMDGWO(topo, tasks, cfg)
	if err != nil {
		return nil, err
	}

	inner.memory = func(int, int) float64 { return 0 }

	return &StandardGWO{MDGWO: inner}, nil
}
