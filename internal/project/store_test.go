package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/rectcheck/internal/geometry"
	"github.com/piwi3910/rectcheck/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInstance() model.Instance {
	board := geometry.Rect{XMin: 0, XMax: 20, YMin: 0, YMax: 12}
	inst := model.NewInstance("bench")
	inst.Items = append(inst.Items, model.NewItem("a", 4, 3, board))
	inst.Obstacles = append(inst.Obstacles, model.NewObstacle("post", geometry.Rect{XMin: 8, XMax: 10, YMin: 0, YMax: 4}))
	return inst
}

func TestSaveAndLoadInstance_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.json")
	inst := sampleInstance()
	require.NoError(t, SaveInstance(path, inst))

	back, err := LoadInstance(path)
	require.NoError(t, err)
	assert.Equal(t, inst, back)
}

func TestSaveInstance_RotatesBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.json")
	require.NoError(t, SaveInstance(path, sampleInstance()))
	require.NoError(t, SaveInstance(path, sampleInstance()))

	_, err := os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestSaveInstance_RejectsInvalid(t *testing.T) {
	inst := model.NewInstance("broken")
	inst.Items = append(inst.Items, model.Item{Label: "x", XSize: -1, YSize: 2})
	err := SaveInstance(filepath.Join(t.TempDir(), "x.json"), inst)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to save")
}

func TestLoadInstance_MissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"instance":{"name":"x"}}`), 0o644))
	_, err := LoadInstance(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing version")
}
