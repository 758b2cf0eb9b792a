package pipeline

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/verimod/verimod/pkg/pipeline/model"
)

func prepareMerger[I any](pipe *Pipeline, output chan I, name string, steps ...*model.Step[I]) (*model.Step[I], error) {
	outputStep := &model.Step[I]{
		Details: &model.StepInfo{
			Type:       model.MergerStepType,
			Name:       name,
			Concurrent: 1,
		},
		Output: output,
	}

	stepInfos := make([]*model.StepInfo, len(steps))
	for i, step := range steps {
		stepInfos[i] = step.Details
	}

	for _, opt := range pipe.opts {
		err := opt.PrepareMerger(stepInfos, outputStep.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before merger function")
		}
	}

	return outputStep, nil
}

func runStepMerger[I any](pipe *Pipeline, errC chan<- error, step, outputStep *model.Step[I]) {
	for {
		startIter := time.Now()
		select {
		case <-pipe.ctx.Done():
			errC <- pipe.ctx.Err()

			return
		case entry, ok := <-step.Output:
			if !ok {
				return
			}
			select {
			case <-pipe.ctx.Done():
				errC <- pipe.ctx.Err()

				return
			case outputStep.Output <- entry:
				err := pipe.onMergerOutput(step.Details, outputStep.Details, time.Since(startIter))
				if err != nil {
					errC <- err

					return
				}
			}
		}
	}
}

// AddMerger merges several steps carrying the same type into a single step.
func AddMerger[I any](pipe *Pipeline, name string, steps ...*model.Step[I]) (*model.Step[I], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}
	if len(steps) == 0 {
		return nil, ErrMergerInput
	}

	output := make(chan I)
	outputStep, err := prepareMerger(pipe, output, name, steps...)
	if err != nil {
		return nil, err
	}

	errC := make(chan error, len(steps))
	decoratedError := newErrorChan(name, errC)

	var wg sync.WaitGroup
	wg.Add(len(steps))
	for _, step := range steps {
		go func(step *model.Step[I]) {
			defer wg.Done()
			runStepMerger(pipe, errC, step, outputStep)
		}(step)
	}

	go func() {
		wg.Wait()
		close(output)
		close(errC)
	}()
	pipe.errcList.add(decoratedError)

	return outputStep, nil
}
