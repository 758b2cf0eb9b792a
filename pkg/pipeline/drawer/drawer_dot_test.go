package drawer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verimod/verimod/pkg/pipeline"
	"github.com/verimod/verimod/pkg/pipeline/measure"
)

func TestDOTDrawer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.dot")
	d := NewDOTDrawer(path)

	require.NoError(t, d.AddStep("emit"))
	require.NoError(t, d.AddStep("collect"))
	require.NoError(t, d.AddLink("emit", "collect"))
	require.NoError(t, d.Draw())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	dot := string(raw)
	assert.Contains(t, dot, "digraph")
	assert.Contains(t, dot, `"emit"`)
	assert.Contains(t, dot, `"emit" -> "collect"`)
}

func TestDOTDrawerDuplicateStep(t *testing.T) {
	d := NewDOTDrawer(filepath.Join(t.TempDir(), "flow.dot"))

	require.NoError(t, d.AddStep("emit"))
	assert.Error(t, d.AddStep("emit"))
}

func TestPipelineDrawerOption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.dot")
	msr := measure.NewDefaultMeasure()

	pipe, err := pipeline.New(context.Background(),
		measure.PipelineMeasure(msr),
		PipelineDrawer(NewDOTDrawer(path), msr),
	)
	require.NoError(t, err)

	root, err := pipeline.AddRootStep(pipe, "emit", func(_ context.Context, out chan<- int) error {
		for i := 0; i < 3; i++ {
			out <- i
		}

		return nil
	})
	require.NoError(t, err)

	step, err := pipeline.AddStepOneToOne(pipe, "double", root, func(_ context.Context, i int) (int, error) {
		return i * 2, nil
	})
	require.NoError(t, err)

	err = pipeline.AddSink(pipe, "collect", step, func(_ context.Context, _ int) error {
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, pipe.Run())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	dot := string(raw)
	assert.Contains(t, dot, `"start"`)
	assert.Contains(t, dot, `"double"`)
	assert.Contains(t, dot, `"end"`)
}
