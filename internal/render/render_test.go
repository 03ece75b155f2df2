package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/piwi3910/rectcheck/internal/model"
	"github.com/piwi3910/rectcheck/internal/neighbours"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDot_ListsNodesAndEdges(t *testing.T) {
	nb := neighbours.Build([]geometry.Rect{
		{XMin: 0, XMax: 4, YMin: 0, YMax: 2},
		{XMin: 4, XMax: 8, YMin: 0, YMax: 2},
		{XMin: 20, XMax: 22, YMin: 0, YMax: 2},
	})
	dot := RenderDot(nb)
	assert.Contains(t, dot, "graph neighbours {")
	assert.Contains(t, dot, "b0 [label=\"0: [0..4)x[0..2)\"]")
	assert.Contains(t, dot, "b0 -- b1;")
	assert.NotContains(t, dot, "b1 -- b2")
}

func TestWritePDF_ProducesAllPages(t *testing.T) {
	board := geometry.Rect{XMin: 0, XMax: 20, YMin: 0, YMax: 12}
	inst := model.NewInstance("bench")
	inst.Items = append(inst.Items, model.NewItem("a", 4, 3, board))
	inst.Obstacles = append(inst.Obstacles, model.NewObstacle("post", geometry.Rect{XMin: 8, XMax: 10, YMin: 0, YMax: 4}))

	path := filepath.Join(t.TempDir(), "report.pdf")
	err := WritePDF(path, Report{
		Instance:   inst,
		Presolved:  []geometry.Rect{{XMin: 8, XMax: 10, YMin: 0, YMax: 4}},
		Placements: []geometry.Rect{{XMin: 0, XMax: 4, YMin: 0, YMax: 3}},
		Seed:       42,
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(1000))
}

func TestWritePDF_EmptyReportIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	err := WritePDF(path, Report{Instance: model.NewInstance("empty")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to draw")
}
