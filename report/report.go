// Package report runs the whole data collection of a report: it builds the
// join trees, loads the tables they need and merges them into one dataset
// per master table.
package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ridoystarlord/reportmerge/dataset"
	"github.com/ridoystarlord/reportmerge/extract"
	"github.com/ridoystarlord/reportmerge/jointree"
	"github.com/ridoystarlord/reportmerge/merge"
	"github.com/ridoystarlord/reportmerge/schema"
	"go.uber.org/zap"
)

// Result is the output of one run.
type Result struct {
	RunID    string
	Datasets []*dataset.Dataset
	// Residual lists tables still loaded after the merge. It is empty for a
	// configuration where every non-master table hangs off a master.
	Residual []string
}

// Generate builds the join trees of specs, loads every table from src and
// merges each tree. The trees are built before anything is loaded, so a
// malformed configuration never touches the database.
func Generate(ctx context.Context, specs []schema.TableSpec, src extract.Source, logger *zap.SugaredLogger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	trees, err := jointree.Build(specs)
	if err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}
	if unused := jointree.Unreachable(specs, trees); len(unused) > 0 {
		logger.Warnw("tables not joined to any master", "tables", unused)
	}
	logger.Infow("join trees built", "trees", len(trees), "tables", len(specs))

	reg, err := extract.LoadRegistry(ctx, src, specs)
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}

	datasets, rest, err := merge.NewExecutor(logger).ExecuteAll(trees, reg)
	if err != nil {
		return nil, err
	}

	result := &Result{RunID: runID, Datasets: datasets, Residual: rest.Names()}
	if len(result.Residual) > 0 {
		logger.Warnw("tables left unmerged", "tables", result.Residual)
	}
	return result, nil
}
