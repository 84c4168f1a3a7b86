package keywords

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "keywords.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, "Battery,extra column\nsolid state\n  Anode  \nbattery\n\nCathode\n")

	keywords, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"battery", "solid state", "anode", "cathode"}, keywords)
}

func TestLoad_Limit(t *testing.T) {
	path := writeCSV(t, "one\ntwo\nthree\n")

	keywords, err := Load(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, keywords)
}

func TestLoad_Empty(t *testing.T) {
	path := writeCSV(t, "")

	keywords, err := Load(path, 0)
	require.NoError(t, err)
	assert.Empty(t, keywords)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), 0)
	assert.Error(t, err)
}
