package export

import (
	"bytes"
	"encoding/json"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/ridoystarlord/reportmerge/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func merged() *dataset.Dataset {
	return dataset.MustNew("users", []string{"id", "created_at", "age", "score"},
		[]any{int64(1), time.Date(2021, 4, 1, 9, 0, 0, 0, time.UTC), int32(30), 0.5},
		[]any{int64(2), nil, nil, nil},
	)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, merged()))
	assert.Equal(t,
		"id,created_at,age,score\n1,2021-04-01T09:00:00Z,30,0.5\n2,,,\n",
		buf.String())
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, merged()))

	var doc struct {
		Name    string   `json:"name"`
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "users", doc.Name)
	assert.Equal(t, []string{"id", "created_at", "age", "score"}, doc.Columns)
	assert.Equal(t, []any{float64(1), "2021-04-01T09:00:00Z", float64(30), 0.5}, doc.Rows[0])
	assert.Equal(t, []any{float64(2), nil, nil, nil}, doc.Rows[1])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, merged()))

	var doc document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []string{"id", "created_at", "age", "score"}, doc.Columns)
	assert.Len(t, doc.Rows, 2)
	assert.Nil(t, doc.Rows[1][1])
}

func invoices() *dataset.Dataset {
	return dataset.MustNew("invoices", []string{"id", "amount", "note"},
		[]any{int64(1), pgtype.Numeric{Int: big.NewInt(1250), Exp: -2, Valid: true}, pgtype.Text{String: "paid", Valid: true}},
		[]any{int64(2), pgtype.Numeric{}, pgtype.Text{}},
	)
}

func TestWriteCSV_Numeric(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, invoices()))
	assert.Equal(t, "id,amount,note\n1,12.50,paid\n2,,\n", buf.String())
}

func TestWriteJSON_Numeric(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, invoices()))

	var doc struct {
		Rows [][]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, []any{float64(1), "12.50", "paid"}, doc.Rows[0])
	assert.Equal(t, []any{float64(2), nil, nil}, doc.Rows[1])
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, "xlsx", merged()))
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	privacy := dataset.MustNew("privacy", []string{"user_id"}, []any{1})

	paths, err := WriteFiles(dir, "csv", []*dataset.Dataset{merged(), privacy})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "users.csv"), filepath.Join(dir, "privacy.csv")}, paths)

	data, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Equal(t, "user_id\n1\n", string(data))
}
