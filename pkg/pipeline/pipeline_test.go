package pipeline

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitInts(total int) func(ctx context.Context, out chan<- int) error {
	return func(_ context.Context, out chan<- int) error {
		for i := 0; i < total; i++ {
			out <- i
		}

		return nil
	}
}

func TestPipelineRun(t *testing.T) {
	tcs := map[string]struct {
		concurrent int
	}{
		"sequential":    {concurrent: 1},
		"sequential v2": {concurrent: 0},
		"concurrent 2":  {concurrent: 2},
		"concurrent 10": {concurrent: 10},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			pipe, err := New(context.Background())
			require.NoError(t, err)

			root, err := AddRootStep(pipe, "emit", emitInts(10))
			require.NoError(t, err)

			doubled, err := AddStepOneToOne(pipe, "double", root, func(_ context.Context, i int) (int, error) {
				return i * 2, nil
			}, StepConcurrency[int](tc.concurrent))
			require.NoError(t, err)

			var got []int
			err = AddSink(pipe, "collect", doubled, func(_ context.Context, i int) error {
				got = append(got, i)

				return nil
			})
			require.NoError(t, err)

			require.NoError(t, pipe.Run())
			assert.ElementsMatch(t, []int{0, 2, 4, 6, 8, 10, 12, 14, 16, 18}, got)
		})
	}
}

func TestPipelineStepError(t *testing.T) {
	pipe, err := New(context.Background())
	require.NoError(t, err)

	root, err := AddRootStep(pipe, "emit", emitInts(10))
	require.NoError(t, err)

	step, err := AddStepOneToOne(pipe, "fail on five", root, func(_ context.Context, i int) (int, error) {
		if i == 5 {
			return 0, errors.New("boom")
		}

		return i, nil
	})
	require.NoError(t, err)

	err = AddSink(pipe, "collect", step, func(_ context.Context, _ int) error {
		return nil
	})
	require.NoError(t, err)

	err = pipe.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPipelineOneToMany(t *testing.T) {
	pipe, err := New(context.Background())
	require.NoError(t, err)

	root, err := AddRootStep(pipe, "emit", emitInts(3))
	require.NoError(t, err)

	expanded, err := AddStepOneToMany(pipe, "expand", root, func(_ context.Context, i int) ([]int, error) {
		return []int{i, i + 100}, nil
	})
	require.NoError(t, err)

	var got []int
	err = AddSink(pipe, "collect", expanded, func(_ context.Context, i int) error {
		got = append(got, i)

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, pipe.Run())
	assert.ElementsMatch(t, []int{0, 100, 1, 101, 2, 102}, got)
}

func TestPipelineSplitter(t *testing.T) {
	pipe, err := New(context.Background())
	require.NoError(t, err)

	root, err := AddRootStep(pipe, "emit", emitInts(5))
	require.NoError(t, err)

	splitter, err := AddSplitter(pipe, "split", root, 2, SplitterBufferSize[int](5))
	require.NoError(t, err)

	var first, second []int
	firstIn, ok := splitter.Get()
	require.True(t, ok)
	err = AddSink(pipe, "first", firstIn, func(_ context.Context, i int) error {
		first = append(first, i)

		return nil
	})
	require.NoError(t, err)

	secondIn, ok := splitter.Get()
	require.True(t, ok)
	err = AddSink(pipe, "second", secondIn, func(_ context.Context, i int) error {
		second = append(second, i)

		return nil
	})
	require.NoError(t, err)

	_, ok = splitter.Get()
	assert.False(t, ok)

	require.NoError(t, pipe.Run())
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, first)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, second)
}

func TestPipelineMerger(t *testing.T) {
	pipe, err := New(context.Background())
	require.NoError(t, err)

	left, err := AddRootStep(pipe, "left", emitInts(3))
	require.NoError(t, err)
	right, err := AddRootStep(pipe, "right", func(_ context.Context, out chan<- int) error {
		for i := 100; i < 103; i++ {
			out <- i
		}

		return nil
	})
	require.NoError(t, err)

	merged, err := AddMerger(pipe, "merge", left, right)
	require.NoError(t, err)

	var got []int
	err = AddSink(pipe, "collect", merged, func(_ context.Context, i int) error {
		got = append(got, i)

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, pipe.Run())
	assert.ElementsMatch(t, []int{0, 1, 2, 100, 101, 102}, got)
}

func TestPipelineInputChecks(t *testing.T) {
	pipe, err := New(context.Background())
	require.NoError(t, err)

	_, err = AddStepOneToOne[int, int](nil, "step", nil, nil)
	assert.ErrorIs(t, err, ErrPipelineMustBeSet)

	_, err = AddStepOneToOne[int, int](pipe, "step", nil, nil)
	assert.ErrorIs(t, err, ErrInputMustBeSet)

	_, err = AddMerger[int](pipe, "merge")
	assert.ErrorIs(t, err, ErrMergerInput)
}
