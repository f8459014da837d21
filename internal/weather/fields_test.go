package weather

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFields(t *testing.T) {
	table := DefaultFields()

	var codes []string
	for _, f := range table {
		codes = append(codes, f.Code)
		assert.True(t, f.Parse, f.Code)
		assert.NotEmpty(t, f.Color, f.Code)
	}
	assert.Equal(t, []string{"T", "Pp", "H", "S", "G", "U"}, codes)

	uv, ok := table.Lookup("U")
	require.True(t, ok)
	assert.Equal(t, 10.0, uv.Scale)
	assert.False(t, uv.Normalized())

	temp, _ := table.Lookup("T")
	assert.Equal(t, 1.0, temp.Scale)
	assert.Equal(t, "temperature", temp.Group)

	speed, _ := table.Lookup("S")
	gust, _ := table.Lookup("G")
	assert.Equal(t, speed.Group, gust.Group)

	_, ok = table.Lookup("V")
	assert.False(t, ok)
}

func TestParseFieldTable(t *testing.T) {
	table, err := ParseFieldTable([]byte(`
- code: V
  name: Visibility
  color: "#444444"
  parse: false
- code: F
  name: Feels Like
  color: "#ff8800"
  group: temperature
  scale: 2
`))
	require.NoError(t, err)
	require.Len(t, table, 2)

	assert.False(t, table[0].Parse)
	assert.Equal(t, 1.0, table[0].Scale)
	assert.True(t, table[1].Parse)
	assert.Equal(t, 2.0, table[1].Scale)
	assert.True(t, table[1].Normalized())
}

func TestParseFieldTableErrors(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":          ``,
		"not a list":     `code: T`,
		"missing color":  "- code: T\n  name: Temperature\n",
		"negative scale": "- code: T\n  name: T\n  color: red\n  scale: -1\n",
		"duplicate":      "- code: T\n  name: T\n  color: red\n- code: T\n  name: T\n  color: red\n",
	} {
		_, err := ParseFieldTable([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestLoadFieldTable(t *testing.T) {
	table, err := LoadFieldTable("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFields(), table)

	path := filepath.Join(t.TempDir(), "fields.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- code: H\n  name: Humidity\n  color: blue\n"), 0o644))

	table, err = LoadFieldTable(path)
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "H", table[0].Code)

	_, err = LoadFieldTable(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
