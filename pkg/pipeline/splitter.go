package pipeline

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/verimod/verimod/pkg/pipeline/model"
)

// Splitter duplicates every input value to a fixed number of output steps.
type Splitter[I any] struct {
	mu            sync.Mutex
	currIdx       int
	mainStep      *model.Step[I]
	splittedSteps []*model.Step[I]
	bufferSize    int
	Total         int
}

// Get returns the next unused split output. It returns false when all
// outputs have been claimed.
func (s *Splitter[I]) Get() (*model.Step[I], bool) {
	s.mu.Lock()
	defer func() {
		s.currIdx++
		s.mu.Unlock()
	}()
	if s.currIdx >= len(s.splittedSteps) {
		return nil, false
	}

	return s.splittedSteps[s.currIdx], true
}

func prepareSplitter[I any](pipe *Pipeline, input *model.Step[I], splitter *Splitter[I]) error {
	for _, opt := range pipe.opts {
		err := opt.PrepareSplitter(input.Details, splitter.mainStep.Details)
		if err != nil {
			return errors.Wrap(err, "unable to run before splitter function")
		}
	}

	return nil
}

// AddSplitter duplicates the input step into total identical output steps.
func AddSplitter[I any](pipe *Pipeline, name string, input *model.Step[I], total int, opts ...SplitterOption[I]) (*Splitter[I], error) {
	if pipe == nil {
		return nil, ErrPipelineMustBeSet
	}
	if input == nil {
		return nil, ErrInputMustBeSet
	}
	if total == 0 {
		return nil, ErrSplitterTotal
	}
	splitter := &Splitter[I]{
		Total: total,
		mainStep: &model.Step[I]{
			Details: &model.StepInfo{
				Type:       model.SplitterStepType,
				Name:       name,
				Concurrent: 1,
			},
		},
	}
	for _, opt := range opts {
		opt(splitter)
	}
	splitter.mainStep.Details.BufferSize = splitter.bufferSize

	err := prepareSplitter(pipe, input, splitter)
	if err != nil {
		return nil, err
	}

	splitter.splittedSteps = make([]*model.Step[I], total)
	for i := range splitter.splittedSteps {
		splitter.splittedSteps[i] = &model.Step[I]{
			Details: splitter.mainStep.Details,
			Output:  make(chan I, splitter.bufferSize),
		}
	}

	errC := make(chan error, 1)
	decoratedError := newErrorChan(name, errC)
	go func() {
		defer func() {
			close(errC)
			for _, split := range splitter.splittedSteps {
				close(split.Output)
			}
		}()
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
				for _, split := range splitter.splittedSteps {
					select {
					case <-pipe.ctx.Done():
						errC <- pipe.ctx.Err()

						break outer
					case split.Output <- in:
					}
				}
				err := pipe.onSplitterOutput(input.Details, splitter.mainStep.Details, time.Since(startIter), 0)
				if err != nil {
					errC <- err

					break outer
				}
			}
		}
	}()
	pipe.errcList.add(decoratedError)

	return splitter, nil
}
