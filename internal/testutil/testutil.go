// Package testutil is the golden-scenario harness for storage
// implementations, mirroring the role cmd/testutils.ReadTests/RunTest play
// for sqldef's dialect test suites: RunScenarios runs the same
// YAML-described scenarios unmodified against whatever storage factory it
// is given. In this repository only storage/memory is driven through it
// (scenarios_test.go).
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/gluesql-go/gluesql"
	"github.com/gluesql-go/gluesql/store"
	"github.com/gluesql-go/gluesql/value"
)

// Scenario is one golden test case: a setup script, a query to run against
// the resulting state, and the expected outcome.
type Scenario struct {
	Name   string
	Setup  []string // statements run in order before Query
	Query  string
	Rows   [][]string `yaml:"rows"` // expected row cells, rendered via value.Value.String()
	Labels []string   `yaml:"labels"`
	Error  string     `yaml:"error"` // expected error substring; empty means no error expected
}

// ReadScenarios loads every YAML document matched by pattern into a single
// name-keyed set, failing loudly on a duplicate name the same way
// cmd/testutils.ReadTests does.
func ReadScenarios(pattern string) (map[string]Scenario, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	out := map[string]Scenario{}
	for _, file := range files {
		buf, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		var scenarios map[string]Scenario
		dec := yaml.NewDecoder(bytes.NewReader(buf))
		dec.KnownFields(true)
		if err := dec.Decode(&scenarios); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		for name, sc := range scenarios {
			if _, exists := out[name]; exists {
				return nil, fmt.Errorf("duplicate scenario name %q in %s", name, file)
			}
			sc.Name = name
			out[name] = sc
		}
	}
	return out, nil
}

// RunScenarios runs every scenario against a fresh storage built by
// newStorage, one subtest per scenario name.
func RunScenarios(t *testing.T, scenarios map[string]Scenario, newStorage func() store.Store) {
	for name, sc := range scenarios {
		sc := sc
		t.Run(name, func(t *testing.T) {
			RunScenario(t, sc, newStorage())
		})
	}
}

// RunScenario runs one scenario against st.
func RunScenario(t *testing.T, sc Scenario, st store.Store) {
	t.Helper()
	ctx := context.Background()
	g := gluesql.New(st)

	for _, stmt := range sc.Setup {
		if _, err := g.Execute(ctx, stmt); err != nil {
			t.Fatalf("setup statement %q: %v", stmt, err)
		}
	}

	payload, err := g.Execute(ctx, sc.Query)
	if sc.Error != "" {
		if err == nil {
			t.Fatalf("expected error containing %q, got none", sc.Error)
		}
		if !strings.Contains(err.Error(), sc.Error) {
			t.Fatalf("expected error containing %q, got %q", sc.Error, err.Error())
		}
		return
	}
	if err != nil {
		t.Fatalf("query %q: %v", sc.Query, err)
	}

	if sc.Labels != nil && !equalStrings(payload.Labels, sc.Labels) {
		t.Fatalf("labels: expected %v, got %v", sc.Labels, payload.Labels)
	}
	if sc.Rows != nil {
		got := renderRows(payload.Rows)
		if !equalRows(got, sc.Rows) {
			t.Fatalf("rows: expected %v, got %v", sc.Rows, got)
		}
	}
}

func renderRows(rows [][]value.Value) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = v.String()
		}
		out[i] = cells
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalRows(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalStrings(a[i], b[i]) {
			return false
		}
	}
	return true
}
