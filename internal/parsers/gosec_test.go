package parsers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethanolivertroy/secreport/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGosecParser_Parse(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "gosec-report.json"))
	require.NoError(t, err)

	findings, err := (&GosecParser{}).Parse("gosec-report.json", content)
	require.NoError(t, err)
	require.Len(t, findings, 3)

	first := findings[0]
	assert.Equal(t, "gosec", first.Tool)
	assert.Equal(t, models.SeverityHigh, first.Severity)
	assert.Equal(t, "G201", first.RuleID)
	assert.Equal(t, "SQL string formatting", first.Message)
	assert.Equal(t, "/home/runner/work/app/app/repository/user.go", first.FilePath)
	assert.Equal(t, 57, first.Line)
	assert.Equal(t, 10, first.Column)
	assert.Equal(t, models.SourceGosec, first.Source)

	assert.Equal(t, 12, findings[1].Line)
	assert.Equal(t, models.SeverityMedium, findings[1].Severity)

	empty := findings[2]
	assert.Equal(t, models.SeverityLow, empty.Severity)
	assert.Equal(t, models.NotAvailable, empty.RuleID)
	assert.Equal(t, models.NotAvailable, empty.Message)
	assert.Equal(t, models.NotAvailable, empty.FilePath)
}

func TestGosecParser_NumericLines(t *testing.T) {
	doc := `{"Issues":[{"severity":"low","rule_id":"G104","details":"Errors unhandled","file":"main.go","line":3,"column":1}]}`

	findings, err := (&GosecParser{}).Parse("gosec.json", []byte(doc))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 3, findings[0].Line)
	assert.Equal(t, models.SeverityLow, findings[0].Severity)
}

func TestGosecParser_NoIssues(t *testing.T) {
	findings, err := (&GosecParser{}).Parse("gosec.json", []byte(`{"Issues":null}`))
	require.NoError(t, err)
	assert.Empty(t, findings)

	_, err = (&GosecParser{}).Parse("gosec.json", []byte(`[]`))
	assert.Error(t, err)
}
