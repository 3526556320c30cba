package extract

import (
	"context"
	"fmt"
	"strings"
)

// ExistingColumns returns the column names of a table as the database sees
// them, in ordinal order. A table that does not exist yields no columns.
// Names may be schema qualified; unqualified names are looked up in public.
func ExistingColumns(ctx context.Context, db Querier, table string) ([]string, error) {
	schemaName, tableName := "public", table
	if i := strings.LastIndex(table, "."); i >= 0 {
		schemaName, tableName = table[:i], table[i+1:]
	}

	columnsQuery := `
	SELECT c.column_name
	FROM information_schema.columns c
	WHERE c.table_schema = $1 AND c.table_name = $2
	ORDER BY c.ordinal_position;
	`

	rows, err := db.Query(ctx, columnsQuery, schemaName, tableName)
	if err != nil {
		return nil, fmt.Errorf("querying columns of %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		columns = append(columns, name)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterating column rows: %w", rows.Err())
	}

	return columns, nil
}
