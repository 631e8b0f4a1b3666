package InputParameters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/meshview/basis"
	"github.com/notargets/meshview/codegen"
)

func TestParse(t *testing.T) {
	fileInput := []byte(`
Title: Curved Sphere
Subdivision: 3
Order: 2
Basis: Dubiner # or Bernstein
Language: wgsl
FunctionName: evalField
Workers: 4
Boundaries:
  wall: 2
  farfield: 7
`)
	vp := NewViewParameters()
	require.NoError(t, vp.Parse(fileInput))
	assert.Equal(t, "Curved Sphere", vp.Title)
	assert.Equal(t, 3, vp.Subdivision)
	assert.Equal(t, 4, vp.Resolution())
	assert.Equal(t, 2, vp.Order)
	assert.Equal(t, 7, vp.Boundaries["farfield"])
	vp.Print()

	cfg := vp.RenderConfig()
	assert.Equal(t, 4, cfg.Resolution)
	assert.Equal(t, 4, cfg.Workers)

	em, family, err := vp.Emitter()
	require.NoError(t, err)
	assert.Equal(t, codegen.WGSL, em.Dialect)
	assert.Equal(t, "evalField", em.FunctionName)
	assert.Equal(t, basis.Dubiner, family)
}

func TestDefaults(t *testing.T) {
	vp := NewViewParameters()
	require.NoError(t, vp.Parse([]byte("Title: only a title\n")))
	assert.Equal(t, 1, vp.Resolution())
	assert.Equal(t, 1, vp.Order)
	em, family, err := vp.Emitter()
	require.NoError(t, err)
	assert.Equal(t, codegen.GLSL, em.Dialect)
	assert.Equal(t, codegen.DefaultFunctionName, em.FunctionName)
	assert.Equal(t, basis.Bernstein, family)

	vp.Language = "hlsl"
	_, _, err = vp.Emitter()
	assert.Error(t, err)
	vp.Language, vp.Basis = "glsl", "legendre"
	_, _, err = vp.Emitter()
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "view.yaml")
	require.NoError(t, os.WriteFile(good, []byte("Subdivision: 1\nLanguage: glsl\n"), 0644))
	vp := NewViewParameters()
	vp.Workers = 3
	require.NoError(t, vp.ReadFile(good))
	assert.Equal(t, 2, vp.Resolution())
	assert.Equal(t, "meshview", vp.Title)
	assert.Equal(t, 3, vp.Workers)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("Subdivision: [1, 2\n"), 0644))
	assert.Error(t, NewViewParameters().ReadFile(bad))
	assert.Error(t, NewViewParameters().ReadFile(filepath.Join(dir, "missing.yaml")))
}
