package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLoadDefault(t *testing.T) {
	conf, err := Load(afero.NewMemMapFs(), "", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), conf)
	assert.Equal(t, []string{"unconst_trait_impl"}, conf.MacroNames)
	assert.Equal(t, "Drop", conf.MarkerTrait)
	assert.False(t, Bool(conf.Verify))
}

func TestLoadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	const data = `
macro_names: [unconst, a_b]
marker_trait: Destruct
verify: true
jobs: 8
`
	require.NoError(t, afero.WriteFile(fs, DefaultPath, []byte(data), 0o644))

	conf, err := Load(fs, "", env(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"unconst", "a_b"}, conf.MacroNames)
	assert.Equal(t, []string{DefaultName}, conf.AttributeNames)
	assert.Equal(t, "Destruct", conf.MarkerTrait)
	assert.True(t, Bool(conf.Verify))
	assert.False(t, Bool(conf.KeepGoing))
	assert.Equal(t, 8, conf.Jobs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "cfg.yaml", []byte("verify: true\nmarker_trait: Destruct\n"), 0o644))

	conf, err := Load(fs, "cfg.yaml", env(map[string]string{
		"UNCONST_VERIFY":          "false",
		"UNCONST_ATTRIBUTE_NAMES": "x,y",
		"UNCONST_KEEP_GOING":      "true",
	}))
	require.NoError(t, err)
	assert.False(t, Bool(conf.Verify))
	assert.True(t, Bool(conf.KeepGoing))
	assert.Equal(t, []string{"x", "y"}, conf.AttributeNames)
	assert.Equal(t, "Destruct", conf.MarkerTrait)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("jobs: [1"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "neg.yaml", []byte("jobs: -1"), 0o644))

	_, err := Load(fs, "missing.yaml", env(nil))
	assert.Error(t, err, "named file must exist")

	_, err = Load(fs, "bad.yaml", env(nil))
	assert.ErrorContains(t, err, "bad.yaml")

	_, err = Load(fs, "neg.yaml", env(nil))
	assert.ErrorContains(t, err, "jobs must be positive")

	_, err = Load(fs, "", env(map[string]string{"UNCONST_JOBS": "many"}))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	tr := true
	base := Default()
	got := base.Apply(Config{Jobs: 2, DebugString: &tr})
	assert.Equal(t, 2, got.Jobs)
	assert.True(t, Bool(got.DebugString))
	assert.False(t, Bool(base.DebugString), "Apply must not modify its receiver")
	assert.Equal(t, base.MacroNames, got.MacroNames)
}
