package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spendlog/internal/core"
)

var sampleDaily = []core.DailyTotal{
	{DayOfWeek: "Thu", Total: 0},
	{DayOfWeek: "Fri", Total: 120},
	{DayOfWeek: "Sat", Total: 45.5},
	{DayOfWeek: "Sun", Total: 0},
	{DayOfWeek: "Mon", Total: 310},
	{DayOfWeek: "Tue", Total: 12},
	{DayOfWeek: "Wed", Total: 88},
}

var sampleCats = []core.CategoryTotal{
	{Category: "Food", Total: 330},
	{Category: "Travel", Total: 80},
	{Category: "", Total: 165.5},
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleDaily, sampleCats))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output is a PDF document")
	assert.Greater(t, buf.Len(), 500)
}

func TestWritePDFEmptyAggregates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, nil, nil))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestWritePDFAllZeroWeek(t *testing.T) {
	zero := make([]core.DailyTotal, 7)
	for i := range zero {
		zero[i].DayOfWeek = "Mon"
	}
	var buf bytes.Buffer
	assert.NoError(t, WritePDF(&buf, zero, nil))
}

func TestWritePDFManyCategoriesPaginates(t *testing.T) {
	cats := make([]core.CategoryTotal, 40)
	for i := range cats {
		cats[i] = core.CategoryTotal{Category: "Cat", Total: float64(i)}
	}
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, sampleDaily, cats))
	assert.Greater(t, buf.Len(), 1000)
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := Export(dir, sampleDaily, sampleCats)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	base := filepath.Base(path)
	assert.True(t, strings.HasPrefix(base, "ExpenseReport_"), "name %q", base)
	assert.True(t, strings.HasSuffix(base, ".pdf"), "name %q", base)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
