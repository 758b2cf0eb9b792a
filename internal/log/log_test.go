package log

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf})

	logger := WithComponent("analysis")
	logger.Info().Msg("control file loaded")

	out := buf.String()
	assert.Contains(t, out, `"component":"analysis"`)
	assert.Contains(t, out, "control file loaded")
}

func TestConfigureOnce(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Output: &buf})

	// A second call must not replace the configured writer.
	Configure(Config{Output: nil})
	base := Base()
	base.Info().Msg("still here")
	assert.Contains(t, buf.String(), "still here")
}
