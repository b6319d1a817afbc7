package output

import (
	"bytes"
	"testing"
	"time"

	"github.com/ethpandaops/query-validator/internal/testing/result"
	"github.com/ethpandaops/query-validator/internal/testing/row"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatter_LogTestResult(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	f := NewFormatter(log, &bytes.Buffer{}, true, 0)

	f.LogTestResult(&result.TestOutcome{Name: "ok", Status: result.StatusPass, Query: "SELECT 1"})

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "ok", entry.Data["test"])
	assert.Equal(t, "SELECT 1", entry.Data["query"])

	hook.Reset()

	f.LogTestResult(&result.TestOutcome{
		Name:          "bad",
		Status:        result.StatusFail,
		Messages:      []string{"Assertion 'count' failed: Expected 1, got 2"},
		ErroneousRows: []*row.Row{row.New([]string{"id"}, []interface{}{int64(1)})},
	})

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.ErrorLevel, entries[0].Level)
	assert.Contains(t, entries[0].Message, "Expected 1, got 2")
	assert.Equal(t, 1, entries[0].Data["erroneous_rows"])
	assert.Equal(t, logrus.DebugLevel, entries[1].Level)
	assert.Contains(t, entries[1].Message, "{id:1}")

	hook.Reset()

	f.LogTestResult(&result.TestOutcome{Name: "boom", Status: result.StatusError, Messages: []string{"connection refused"}})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "connection refused", hook.LastEntry().Message)
}

func TestFormatter_LogSummary(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	log, hook := test.NewNullLogger()

	var buf bytes.Buffer

	f := NewFormatter(log, &buf, false, 0)

	f.LogSummary(&result.Summary{
		Total:   2,
		Passed:  1,
		Failed:  1,
		Runtime: time.Second,
		Details: []*result.TestOutcome{
			{Name: "first", Status: result.StatusPass},
			{Name: "second", Status: result.StatusFail, Messages: []string{"Assertion 'has' failed: Expected values not found: name: [Dan]"}},
		},
	})

	out := buf.String()
	assert.Contains(t, out, "first")
	assert.Contains(t, out, "Expected values not found: name: [Dan]")
	assert.Contains(t, out, "Total Tests")

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, 1, hook.LastEntry().Data["failed"])
}
