package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/verimod/verimod/pkg/pipeline/model"
)

func prepareSink[I any](pipe *Pipeline, name string, input *model.Step[I]) (*model.Step[I], error) {
	step := &model.Step[I]{
		Details: &model.StepInfo{
			Type:       model.SinkStepType,
			Name:       name,
			Concurrent: 1,
		},
	}
	for _, opt := range pipe.opts {
		err := opt.PrepareSink(input.Details, step.Details)
		if err != nil {
			return nil, errors.Wrap(err, "unable to run before sink function")
		}
	}

	return step, nil
}

func (p *Pipeline) afterSink(step *model.StepInfo, totalDuration time.Duration) error {
	for _, opt := range p.opts {
		err := opt.AfterSink(step, totalDuration)
		if err != nil {
			return errors.Wrap(err, "unable to run after sink function")
		}
	}

	return nil
}

// AddSink consumes every input with sinkFn. It terminates a branch of the pipeline.
func AddSink[I any](pipe *Pipeline, name string, input *model.Step[I], sinkFn func(ctx context.Context, input I) error) error {
	if pipe == nil {
		return ErrPipelineMustBeSet
	}
	if input == nil {
		return ErrInputMustBeSet
	}
	step, err := prepareSink(pipe, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)
	decoratedError := newErrorChan(name, errC)
	go func() {
		defer close(errC)
	outer:
		for {
			startIter := time.Now()
			select {
			case <-pipe.ctx.Done():
				errC <- pipe.ctx.Err()

				break outer
			case in, ok := <-input.Output:
				if !ok {
					break outer
				}
				endIter := time.Since(startIter)

				startFn := time.Now()
				err := sinkFn(pipe.ctx, in)
				if err != nil {
					errC <- err

					break outer
				}
				err = pipe.onSinkOutput(input.Details, step.Details, endIter, time.Since(startFn))
				if err != nil {
					errC <- err

					break outer
				}
			}
		}
		err := pipe.afterSink(step.Details, time.Since(pipe.startTime))
		if err != nil {
			errC <- err
		}
	}()
	pipe.errcList.add(decoratedError)

	return nil
}

// AddSinkFromChan consumes the whole input channel with stepFn.
func AddSinkFromChan[I any](pipe *Pipeline, name string, input *model.Step[I], stepFn func(ctx context.Context, input <-chan I) error) error {
	if pipe == nil {
		return ErrPipelineMustBeSet
	}
	if input == nil {
		return ErrInputMustBeSet
	}
	step, err := prepareSink(pipe, name, input)
	if err != nil {
		return err
	}

	errC := make(chan error, 1)
	decoratedError := newErrorChan(name, errC)
	go func() {
		defer close(errC)
		err := stepFn(pipe.ctx, input.Output)
		if err != nil {
			errC <- err

			return
		}
		err = pipe.afterSink(step.Details, time.Since(pipe.startTime))
		if err != nil {
			errC <- err
		}
	}()
	pipe.errcList.add(decoratedError)

	return nil
}
