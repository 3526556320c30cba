package loader

import (
	"fmt"
	"os"
	"sort"

	"github.com/ridoystarlord/reportmerge/schema"
	"gopkg.in/yaml.v3"
)

type yamlFile struct {
	Reports map[string]yamlReport `yaml:"reports"`
}

type yamlReport struct {
	Tables []yamlTable `yaml:"tables"`
}

type yamlTable struct {
	Name       string     `yaml:"name"`
	Columns    []string   `yaml:"columns"`
	Master     masterFlag `yaml:"master_table"`
	InnerJoins []yamlJoin `yaml:"inner_joins"`
	ParseDates []string   `yaml:"parse_dates"`
}

type yamlJoin struct {
	On         string `yaml:"on"`
	JoinWith   string `yaml:"join_with"`
	JoinWithOn string `yaml:"join_with_on"`
}

// masterFlag accepts both `true/false` and `1/0` for master_table.
type masterFlag bool

func (m *masterFlag) UnmarshalYAML(node *yaml.Node) error {
	var b bool
	if err := node.Decode(&b); err == nil {
		*m = masterFlag(b)
		return nil
	}
	var n int
	if err := node.Decode(&n); err != nil {
		return fmt.Errorf("line %d: master_table must be a boolean or 0/1, got %q", node.Line, node.Value)
	}
	switch n {
	case 0:
		*m = false
	case 1:
		*m = true
	default:
		return fmt.Errorf("line %d: master_table must be a boolean or 0/1, got %d", node.Line, n)
	}
	return nil
}

func readFile(filename string) (*yamlFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*yamlFile, error) {
	var yf yamlFile
	if err := yaml.Unmarshal(data, &yf); err != nil {
		return nil, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	return &yf, nil
}

// LoadReportFromYAML reads the named report out of a configuration file.
func LoadReportFromYAML(filename, report string) (schema.Report, error) {
	yf, err := readFile(filename)
	if err != nil {
		return schema.Report{}, err
	}
	return yf.report(report)
}

// ParseReport is LoadReportFromYAML over an in-memory document.
func ParseReport(data []byte, report string) (schema.Report, error) {
	yf, err := parse(data)
	if err != nil {
		return schema.Report{}, err
	}
	return yf.report(report)
}

// ListReports returns the report names defined in the file, sorted.
func ListReports(filename string) ([]string, error) {
	yf, err := readFile(filename)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(yf.Reports))
	for name := range yf.Reports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (yf *yamlFile) report(name string) (schema.Report, error) {
	yr, ok := yf.Reports[name]
	if !ok {
		return schema.Report{}, fmt.Errorf("report %q not found in config", name)
	}

	report := schema.Report{Name: name}
	for _, t := range yr.Tables {
		spec := schema.TableSpec{
			Name:       t.Name,
			Columns:    t.Columns,
			Master:     bool(t.Master),
			ParseDates: t.ParseDates,
		}
		for _, j := range t.InnerJoins {
			spec.Joins = append(spec.Joins, schema.JoinEdge{
				On:         j.On,
				JoinWith:   j.JoinWith,
				JoinWithOn: j.JoinWithOn,
			})
		}
		report.Tables = append(report.Tables, spec)
	}

	return report, nil
}
