package optim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/san-kum/lsim/internal/config"
	"github.com/san-kum/lsim/internal/experiment"
)

var ErrNoCandidate = errors.New("optim: no parameter combination completed")

// GridSearch tries every combination of the given parameter values and keeps
// the one with the smallest metric.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	logger     *log.Logger
}

func NewGridSearch(params []string, ranges [][]float64, logger *log.Logger) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	probe := config.DefaultConfig()
	for i, name := range params {
		if err := probe.SetParam(name, 0); err != nil {
			return nil, err
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("optim: no values for %s", name)
		}
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &GridSearch{paramNames: params, ranges: ranges, logger: logger}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// Search runs base with every combination applied. Combinations whose setup
// or run fails, or whose metric is not finite, are skipped.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, metricName, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *config.Config,
	metricName string,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := base.Clone()
		for k, v := range current {
			if err := cfg.SetParam(k, v); err != nil {
				return err
			}
		}

		exp := experiment.New(cfg, nil, nil)
		if err := exp.Setup(ctx); err != nil {
			g.logger.Debug("candidate rejected", "params", current, "err", err)
			return nil
		}
		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.logger.Debug("candidate failed", "params", current, "err", err)
			return nil
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("optim: unknown metric %q", metricName)
		}
		if !math.IsNaN(val) && !math.IsInf(val, 0) && val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
			g.logger.Info("new best", "params", current, metricName, val)
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, metricName, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
