// Package export writes merged datasets to files for the downstream
// statistics and spreadsheet tooling.
package export

import (
	"database/sql/driver"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ridoystarlord/reportmerge/dataset"
	"gopkg.in/yaml.v3"
)

// Formats lists the supported output formats.
var Formats = []string{"csv", "json", "yaml"}

// document is the JSON and YAML layout of a dataset. Rows stay positional so
// column order survives the round trip.
type document struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// WriteCSV writes a header line followed by one line per row. nil is
// written as an empty field, times as RFC 3339 and NUMERIC in plain decimal
// notation.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ds.Columns); err != nil {
		return err
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, v := range row {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the dataset as an indented JSON document.
func WriteJSON(w io.Writer, ds *dataset.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toDocument(ds))
}

// WriteYAML writes the dataset as a YAML document.
func WriteYAML(w io.Writer, ds *dataset.Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(ds)); err != nil {
		return err
	}
	return enc.Close()
}

// Write dispatches on format.
func Write(w io.Writer, format string, ds *dataset.Dataset) error {
	switch format {
	case "csv":
		return WriteCSV(w, ds)
	case "json":
		return WriteJSON(w, ds)
	case "yaml":
		return WriteYAML(w, ds)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// WriteFiles writes each dataset to dir/<name>.<format> and returns the paths.
func WriteFiles(dir, format string, datasets []*dataset.Dataset) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	paths := make([]string, 0, len(datasets))
	for _, ds := range datasets {
		path := filepath.Join(dir, ds.Name+"."+format)
		if err := writeFile(path, format, ds); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path, format string, ds *dataset.Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Write(f, format, ds); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

func toDocument(ds *dataset.Dataset) document {
	rows := make([][]any, len(ds.Rows))
	for i, row := range ds.Rows {
		out := make([]any, len(row))
		for j, v := range row {
			out[j] = plainValue(v)
		}
		rows[i] = out
	}
	return document{Name: ds.Name, Columns: ds.Columns, Rows: rows}
}

// plainValue converts values the encoders would render awkwardly. NUMERIC
// becomes its decimal text so no precision is lost to float64.
func plainValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return string(x)
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		return dataset.FormatNumeric(x)
	case driver.Valuer:
		if dv, err := x.Value(); err == nil {
			if _, again := dv.(driver.Valuer); !again {
				return plainValue(dv)
			}
		}
	}
	return v
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(x)
	case pgtype.Numeric:
		return dataset.FormatNumeric(x)
	case driver.Valuer:
		if dv, err := x.Value(); err == nil {
			if _, again := dv.(driver.Valuer); !again {
				return formatValue(dv)
			}
		}
	}
	return fmt.Sprint(v)
}
