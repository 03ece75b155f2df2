package importer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var testBoard = geometry.Rect{XMin: 0, XMax: 100, YMin: 0, YMax: 100}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("label;width;height;qty\na;4;3;1\nb;5;5;2\n")
	assert.Equal(t, ';', DetectCSVDelimiter(data))
}

func TestDetectColumns_HeaderAliases(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"Name", "W", "H", "Pcs"})
	require.True(t, hasHeader)
	assert.Equal(t, ColumnMapping{Label: 0, XSize: 1, YSize: 2, Quantity: 3}, mapping)
}

func TestDetectColumns_NoHeaderFallsBackToPositional(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"a", "4", "3", "1"})
	assert.False(t, hasHeader)
	assert.Equal(t, ColumnMapping{Label: 0, XSize: 1, YSize: 2, Quantity: 3}, mapping)
}

func TestImportCSVFromReader_QuantityExpandsItems(t *testing.T) {
	csv := "label,width,height,qty\nshelf,4,3,2\npost,5,5,1\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',', testBoard)
	require.Empty(t, result.Errors)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "shelf #1", result.Items[0].Label)
	assert.Equal(t, "shelf #2", result.Items[1].Label)
	assert.Equal(t, "post", result.Items[2].Label)
	assert.Equal(t, int64(4), result.Items[0].XSize)
	assert.Equal(t, testBoard, result.Items[0].Range())
}

func TestImportCSVFromReader_BadRowsAreReportedNotFatal(t *testing.T) {
	csv := "label,width,height,qty\nok,4,3,1\nbad,x,3,1\nnegative,-2,3,1\n"
	result := ImportCSVFromReader(strings.NewReader(csv), ',', testBoard)
	require.Len(t, result.Items, 1)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "Invalid x size")
	assert.Contains(t, result.Errors[1], "must be positive")
}

func TestImportExcel_FirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "items.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"label", "width", "height", "qty"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"shelf", 4, 3, 1}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"post", 5, 5, 2}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	result := ImportExcel(path, testBoard)
	require.Empty(t, result.Errors)
	require.Len(t, result.Items, 3)
	assert.Equal(t, int64(5), result.Items[1].XSize)
}

func TestChainSegments_ClosesLooseRectangle(t *testing.T) {
	segs := []segment{
		{start: point{0, 0}, end: point{4, 0}},
		{start: point{4, 4}, end: point{0, 4}},
		{start: point{4, 0}, end: point{4, 4}},
		{start: point{0, 4}, end: point{0, 0}},
	}
	outlines := chainSegments(segs, 0.01)
	require.Len(t, outlines, 1)
	assert.Equal(t, geometry.Rect{XMin: 0, XMax: 4, YMin: 0, YMax: 4}, outlineBounds(outlines[0]))
}

func TestOutlineBounds_RoundsOutward(t *testing.T) {
	r := outlineBounds([]point{{0.2, 0.7}, {3.4, 0.7}, {3.4, 2.1}, {0.2, 2.1}})
	assert.Equal(t, geometry.Rect{XMin: 0, XMax: 4, YMin: 0, YMax: 3}, r)
}
