package pipeline

import "github.com/verimod/verimod/pkg/pipeline/model"

// StepOption configures a single step.
type StepOption[O any] func(s *model.Step[O])

// StepConcurrency sets the number of goroutines processing the step.
func StepConcurrency[O any](concurrent int) StepOption[O] {
	return func(s *model.Step[O]) {
		s.Details.Concurrent = concurrent
	}
}

// StepKeepOpen prevents the step output channel from being closed when the
// step function returns. Useful when several producers share one channel.
func StepKeepOpen[O any]() StepOption[O] {
	return func(s *model.Step[O]) {
		s.KeepOpen = true
	}
}

// SplitterOption configures a splitter.
type SplitterOption[I any] func(s *Splitter[I])

// SplitterBufferSize sets the buffer size of every split output channel.
func SplitterBufferSize[I any](bufferSize int) SplitterOption[I] {
	return func(s *Splitter[I]) {
		s.bufferSize = bufferSize
	}
}
