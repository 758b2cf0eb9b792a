package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validControl = `
analysis:
  start_time: 2019-09-01 00:00
  end_time: 2019-09-02 00:00
model:
  wrfchem:
    mod_type: wrfchem
    files: model_*.csv
    mapping:
      airnow:
        o3: OZONE
obs:
  airnow:
    obs_type: pt_sfc
    filename: obs_*.csv
`

func writeControl(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "control.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), errOut.String(), err
}

func TestValidateCommand(t *testing.T) {
	path := writeControl(t, validControl)

	out, _, err := execute(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
}

func TestValidateCommandBadFile(t *testing.T) {
	path := writeControl(t, "analysis:\n  start_time: 2019-09-01 00:00\n")

	_, errOut, err := execute(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, errOut, path)
}

func TestValidateCommandNeedsArgs(t *testing.T) {
	_, _, err := execute(t, "validate")
	require.Error(t, err)
}

func TestRunCommandRequiresControl(t *testing.T) {
	_, _, err := execute(t, "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "control")
}
