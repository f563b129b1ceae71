// Package filter selects findings rows with a CEL expression such as
//
//	severity in ["HIGH", "CRITICAL"] && language == "Go"
package filter

import (
	"fmt"
	"strings"

	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/google/cel-go/cel"
	"go.uber.org/zap"
)

// Filter is a compiled row filter. A nil *Filter keeps every row.
type Filter struct {
	expr string
	prg  cel.Program
}

// New compiles expr. An empty expression returns a nil Filter.
func New(expr string) (*Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("configuration", cel.StringType),
		cel.Variable("language", cel.StringType),
		cel.Variable("file_path", cel.StringType),
		cel.Variable("fixable", cel.BoolType),
		cel.Variable("severity", cel.StringType),
		cel.Variable("rule_id", cel.StringType),
		cel.Variable("message", cel.StringType),
		cel.Variable("line", cel.IntType),
		cel.Variable("column", cel.IntType),
		cel.Variable("tool", cel.StringType),
		cel.Variable("source", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter environment: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("invalid filter %q: must evaluate to bool, got %s", expr, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}

	return &Filter{expr: expr, prg: prg}, nil
}

// String returns the source expression
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return f.expr
}

// Match evaluates the filter against one row
func (f *Filter) Match(row models.Row) (bool, error) {
	if f == nil {
		return true, nil
	}

	out, _, err := f.prg.Eval(map[string]any{
		"configuration": row.Configuration,
		"language":      row.Language,
		"file_path":     row.FilePath,
		"fixable":       row.Fixable,
		"severity":      string(row.Severity),
		"rule_id":       row.RuleID,
		"message":       row.Message,
		"line":          int64(row.Line),
		"column":        int64(row.Column),
		"tool":          row.Tool,
		"source":        string(row.Source),
	})
	if err != nil {
		return false, err
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("filter returned %T, want bool", out.Value())
	}
	return matched, nil
}

// Apply returns the rows the filter keeps. Rows the expression fails to
// evaluate on are logged and dropped.
func (f *Filter) Apply(rows []models.Row, logger *zap.SugaredLogger) []models.Row {
	if f == nil {
		return rows
	}

	kept := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		ok, err := f.Match(row)
		if err != nil {
			logger.Warnw("filter evaluation failed, dropping row", "filter", f.expr, "rule_id", row.RuleID, "file", row.FilePath, "error", err)
			continue
		}
		if ok {
			kept = append(kept, row)
		}
	}
	return kept
}
