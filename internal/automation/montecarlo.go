package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/san-kum/longsim/internal/config"
	"github.com/san-kum/longsim/internal/metrics"
	"github.com/san-kum/longsim/internal/profile"
	"github.com/san-kum/longsim/internal/sim"
	"github.com/san-kum/longsim/internal/vehicle"
)

// StableBound is the magnitude beyond which a final state counts as diverged.
const StableBound = 1e6

// MonteCarloConfig defines Monte Carlo simulation parameters
type MonteCarloConfig struct {
	Base *config.Config
	// ParamSpread maps a parameter name to a relative half-width: each
	// trial draws p*(1+u*spread) with u uniform in [-1, 1).
	ParamSpread map[string]float64
	// VelocitySpread is an absolute half-width on the initial velocity.
	VelocitySpread float64
	NumTrials      int
	Seed           int64
	Parallel       int
}

type MonteCarloResult struct {
	TrialID int
	Params  vehicle.Params
	Init    vehicle.State
	Final   vehicle.State
	Stable  bool
}

// RunMonteCarlo draws all trials up front from one seeded source so the
// outcome does not depend on scheduling, then runs them as an ensemble.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Base == nil {
		return nil, fmt.Errorf("monte carlo: no base config")
	}
	if cfg.NumTrials <= 0 {
		return nil, fmt.Errorf("monte carlo: trials must be positive, got %d", cfg.NumTrials)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	reg := profile.NewRegistry()
	if _, err := cfg.Base.BuildProfile(reg); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cfg.ParamSpread))
	for name := range cfg.ParamSpread {
		names = append(names, name)
	}
	sort.Strings(names)

	jobs := make([]sim.Job, cfg.NumTrials)
	for trial := range jobs {
		params := cfg.Base.Vehicle
		for _, name := range names {
			base := params.GetParams()[name]
			if err := params.SetParam(name, base*(1+(rng.Float64()*2-1)*cfg.ParamSpread[name])); err != nil {
				return nil, err
			}
		}
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		init := cfg.Base.InitState
		init.V += (rng.Float64()*2 - 1) * cfg.VelocitySpread

		jobs[trial] = sim.Job{
			Name:   fmt.Sprintf("trial-%d", trial),
			Params: params,
			Init:   init,
			Profile: func() profile.Profile {
				p, _ := cfg.Base.BuildProfile(reg)
				return p
			},
			Options: []vehicle.Option{vehicle.WithHardened(cfg.Base.Hardened)},
		}
	}

	runs, err := sim.NewEnsemble(jobs, cfg.Parallel).
		Run(ctx, sim.Config{Duration: cfg.Base.Duration})
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		final, _ := r.Final()
		results[i] = MonteCarloResult{
			TrialID: i,
			Params:  jobs[i].Params,
			Init:    jobs[i].Init,
			Final:   final.State,
			Stable:  bounded(final.State),
		}
	}
	return results, nil
}

func bounded(s vehicle.State) bool {
	if !s.IsValid() {
		return false
	}
	for _, v := range s.Slice() {
		if math.Abs(v) > StableBound {
			return false
		}
	}
	return true
}

// MonteCarloStats counts stable trials and summarizes the final velocity of
// the stable ones.
func MonteCarloStats(results []MonteCarloResult) (stableCount, unstableCount int, velocity metrics.Summary) {
	finals := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Stable {
			stableCount++
			finals = append(finals, r.Final.V)
		} else {
			unstableCount++
		}
	}
	return stableCount, unstableCount, metrics.Summarize(finals)
}
