package iocache

import (
	"context"
	"fmt"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/parquet"
)

// ExportRollups writes every rollup of actor to a Parquet file and returns the row count.
func ExportRollups(ctx context.Context, store contract.RollupStore, actor, outputFile string) (int, error) {
	if outputFile == "" {
		return 0, fmt.Errorf("%w: --output-file is required for export", contract.ErrInvalidInput)
	}
	records, err := store.ListRollups(ctx, actor, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve rollups: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("%w: no rollups found for actor %q", contract.ErrEmptyResult, actor)
	}
	if err := parquet.WriteFile(outputFile, parquet.ConvertRollupRecords(records)); err != nil {
		return 0, fmt.Errorf("failed to export rollups to %s: %w", outputFile, err)
	}
	return len(records), nil
}
