// Package extract loads the configured tables from Postgres into datasets.
package extract

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/ridoystarlord/reportmerge/dataset"
	"github.com/ridoystarlord/reportmerge/schema"
	"go.uber.org/zap"
)

// Querier is the part of a pgx pool or connection the loader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Source loads one configured table.
type Source interface {
	LoadTable(ctx context.Context, spec schema.TableSpec) (*dataset.Dataset, error)
}

// PostgresSource reads tables through a pgx pool.
type PostgresSource struct {
	db     Querier
	logger *zap.SugaredLogger
}

// NewPostgresSource wraps db. A nil logger discards output.
func NewPostgresSource(db Querier, logger *zap.SugaredLogger) *PostgresSource {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &PostgresSource{db: db, logger: logger}
}

// LoadTable selects the configured columns of the table, in configured
// order. With no columns configured every column is read.
func (s *PostgresSource) LoadTable(ctx context.Context, spec schema.TableSpec) (*dataset.Dataset, error) {
	query := selectQuery(spec)

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying table %s: %w", spec.Name, err)
	}
	defer rows.Close()

	columns := make([]string, 0, len(rows.FieldDescriptions()))
	for _, fd := range rows.FieldDescriptions() {
		columns = append(columns, fd.Name)
	}

	var data [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scanning table %s: %w", spec.Name, err)
		}
		data = append(data, values)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating table %s: %w", spec.Name, rows.Err())
	}

	ds, err := dataset.New(spec.Name, columns, data)
	if err != nil {
		return nil, err
	}

	if failed := parseDates(ds, spec.ParseDates); failed > 0 {
		s.logger.Warnw("unparsable dates set to null", "table", spec.Name, "values", failed)
	}

	s.logger.Debugw("table loaded", "table", spec.Name, "rows", ds.Len(), "columns", len(ds.Columns))
	return ds, nil
}

func selectQuery(spec schema.TableSpec) string {
	cols := "*"
	if len(spec.Columns) > 0 {
		quoted := make([]string, len(spec.Columns))
		for i, c := range spec.Columns {
			quoted[i] = pgx.Identifier{c}.Sanitize()
		}
		cols = strings.Join(quoted, ", ")
	}
	table := pgx.Identifier(strings.Split(spec.Name, ".")).Sanitize()
	return fmt.Sprintf("SELECT %s FROM %s", cols, table)
}

// LoadRegistry loads every spec, in order, into a new registry.
func LoadRegistry(ctx context.Context, src Source, specs []schema.TableSpec) (dataset.Registry, error) {
	loaded := make([]*dataset.Dataset, 0, len(specs))
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return dataset.Registry{}, err
		}
		ds, err := src.LoadTable(ctx, spec)
		if err != nil {
			return dataset.Registry{}, err
		}
		loaded = append(loaded, ds.Rename(spec.Name))
	}
	return dataset.NewRegistry(loaded...), nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseDates turns text values of the named columns into time.Time in
// place and returns how many values could not be parsed. Those become nil.
func parseDates(ds *dataset.Dataset, columns []string) int {
	failed := 0
	for _, name := range columns {
		i := ds.ColumnIndex(name)
		if i < 0 {
			continue
		}
		for _, row := range ds.Rows {
			v, ok := parseDate(row[i])
			if !ok {
				failed++
			}
			row[i] = v
		}
	}
	return failed
}

func parseDate(v any) (any, bool) {
	var s string
	switch x := v.(type) {
	case nil, time.Time:
		return v, true
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return v, true
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return nil, false
}
