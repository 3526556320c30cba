package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ridoystarlord/reportmerge/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dashboardConfig = `
reports:
  database_dashboard:
    tables:
      - name: users
        columns: [id, created_at]
        master_table: 1
        parse_dates: [created_at]
        inner_joins:
          - on: id
            join_with: profile
            join_with_on: user_id
      - name: profile
        columns: [user_id, age, country_id]
        master_table: 0
        inner_joins:
          - {on: country_id, join_with: country, join_with_on: id}
      - name: country
        columns: [id, name]
  leads:
    tables:
      - name: lead
        columns: [id]
        master_table: true
`

func TestParseReport(t *testing.T) {
	report, err := ParseReport([]byte(dashboardConfig), "database_dashboard")
	require.NoError(t, err)

	assert.Equal(t, "database_dashboard", report.Name)
	require.Len(t, report.Tables, 3)

	users := report.Tables[0]
	assert.True(t, users.Master)
	assert.Equal(t, []string{"id", "created_at"}, users.Columns)
	assert.Equal(t, []string{"created_at"}, users.ParseDates)
	assert.Equal(t, []schema.JoinEdge{{On: "id", JoinWith: "profile", JoinWithOn: "user_id"}}, users.Joins)

	assert.False(t, report.Tables[1].Master)
	assert.False(t, report.Tables[2].Master)
	assert.Empty(t, report.Tables[2].Joins)
}

func TestParseReport_BooleanMasterFlag(t *testing.T) {
	report, err := ParseReport([]byte(dashboardConfig), "leads")
	require.NoError(t, err)
	require.Len(t, report.Masters(), 1)
	assert.Equal(t, "lead", report.Masters()[0].Name)
}

func TestParseReport_UnknownReport(t *testing.T) {
	_, err := ParseReport([]byte(dashboardConfig), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestParseReport_BadMasterFlag(t *testing.T) {
	doc := `
reports:
  r:
    tables:
      - name: t
        master_table: 2
`
	_, err := ParseReport([]byte(doc), "r")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "master_table")
}

func TestLoadReportFromYAMLAndListReports(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dashboardConfig), 0o644))

	names, err := ListReports(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"database_dashboard", "leads"}, names)

	report, err := LoadReportFromYAML(path, "leads")
	require.NoError(t, err)
	assert.Len(t, report.Tables, 1)

	_, err = LoadReportFromYAML(filepath.Join(t.TempDir(), "nope.yaml"), "leads")
	assert.Error(t, err)
}
