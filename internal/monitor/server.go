// A very simple gin HTTP server exposing the latest optimization
// result, so an operator can inspect the best schedule, the
// convergence trace and the simulator metrics of the most recent run
// without touching the process. The core never imports this package;
// only the driver wires it up.
package monitor

import (
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirenlab/siren/internal/model"
)

var (
	router *gin.Engine

	mu     sync.Mutex
	latest *model.Result
)

// Publish swaps in the result of a finished run.
func Publish(result *model.Result) {
	mu.Lock()
	defer mu.Unlock()

	latest = result
}

func registerRoutes() {
	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/result", func(ctx *gin.Context) {
		mu.Lock()
		defer mu.Unlock()

		if latest == nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no completed run yet"})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{
			"best_fitness":  latest.BestFitness,
			"schedule":      latest.BestSchedule.Assignments(),
			"system_payoff": latest.SystemPayoff,
			"equilibrium":   latest.Equilibrium,
			"report":        latest.Report,
		})
	})

	router.GET("/trace", func(ctx *gin.Context) {
		mu.Lock()
		defer mu.Unlock()

		if latest == nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "no completed run yet"})
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"fitness_trace": latest.FitnessTrace})
	})
}

func SetUp() {
	router = gin.Default()
	router.Use(cors.Default())

	registerRoutes()
}

func Run(address string) error {
	return router.Run(address)
}
