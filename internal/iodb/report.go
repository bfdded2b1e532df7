package iodb

import (
	"context"
	"log/slog"

	"github.com/aurora-skin/skinsafety/pkg/config"
	"github.com/aurora-skin/skinsafety/pkg/db"
	"github.com/aurora-skin/skinsafety/pkg/lifecycle"
	"github.com/aurora-skin/skinsafety/pkg/report"
	"github.com/aurora-skin/skinsafety/pkg/schema"
	"github.com/jackc/pgx/v5"
)

// pgStore saves replay runs into PostgreSQL.
type pgStore struct {
	cfg *config.Config
	op  db.Operator
	sm  lifecycle.SchemaManager
}

// NewReportStore creates a PostgreSQL report store. Tables are
// created by the schema manager on Open.
func NewReportStore(
	cfg *config.Config,
	op db.Operator,
	sm lifecycle.SchemaManager,
) report.Store {
	return &pgStore{cfg: cfg, op: op, sm: sm}
}

// Open connects to the database and migrates report tables.
func (s *pgStore) Open(ctx context.Context) error {
	if s.op.Pool() == nil {
		if err := s.op.Connect(ctx, &s.cfg.Database); err != nil {
			return err
		}
	}
	return s.sm.Create(ctx, s.cfg)
}

// Save copies the run and its results with CopyFrom, in batches of
// Database.BatchSize rows.
func (s *pgStore) Save(ctx context.Context, run report.Run) error {
	if s.op.Pool() == nil {
		return NotConnectedError()
	}

	r, rows := schema.FromRun(run)
	if err := s.copyRows(ctx, r.TableName(), schema.Columns(r),
		[][]any{schema.Values(r)}); err != nil {
		return err
	}

	batchSize := max(s.cfg.Database.BatchSize, 1)
	var table string
	var columns []string
	batch := make([][]any, 0, batchSize)
	for _, v := range rows {
		if columns == nil {
			table, columns = v.TableName(), schema.Columns(v)
		}
		batch = append(batch, schema.Values(v))
		if len(batch) == batchSize {
			if err := s.copyRows(ctx, table, columns, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := s.copyRows(ctx, table, columns, batch); err != nil {
			return err
		}
	}

	slog.Info("Saved replay run to PostgreSQL",
		"run_id", r.ID, "results", len(rows))
	return nil
}

func (s *pgStore) copyRows(
	ctx context.Context,
	table string,
	columns []string,
	records [][]any,
) error {
	_, err := s.op.Pool().CopyFrom(
		ctx,
		pgx.Identifier{table},
		columns,
		pgx.CopyFromRows(records),
	)
	if err != nil {
		return CopyError(table, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *pgStore) Close() error {
	return s.op.Close()
}
