package climate

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Result is the output of one pipeline run over a dataset.
type Result struct {
	Rows      []EnrichedObservation
	Baselines BaselineTable
	Cities    []string // first-seen order
}

// Process runs baseline classification and smoothing concurrently over the
// same observations and merges the moving average into the classified rows by
// index. obs is read by both branches and must not be mutated during the call.
func Process(ctx context.Context, obs []Observation, window int) (Result, error) {
	var (
		rows      []EnrichedObservation
		baselines BaselineTable
		smoothed  []float64
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		baselines = ComputeBaselines(obs)
		if err := ctx.Err(); err != nil {
			return err
		}
		classified, err := Classify(obs, baselines)
		if err != nil {
			return fmt.Errorf("classify anomalies: %w", err)
		}
		rows = classified
		return nil
	})

	g.Go(func() error {
		smoothed = MovingAverage(obs, window)
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	for i := range rows {
		rows[i].MovingAvg = smoothed[i]
	}

	return Result{Rows: rows, Baselines: baselines, Cities: Cities(obs)}, nil
}
