package model

type stepType = string

const (
	RootStepType     stepType = "root"
	NormalStepType   stepType = "step"
	SplitterStepType stepType = "splitter"
	MergerStepType   stepType = "merger"
	SinkStepType     stepType = "sink"
)

// StepInfo describes a step for option implementations.
type StepInfo struct {
	Type       stepType
	Name       string
	Concurrent int
	BufferSize int
}

// Step is a stage of the pipeline producing values of type O.
type Step[O any] struct {
	Output   chan O
	KeepOpen bool
	Details  *StepInfo
}

var (
	// StartStep and EndStep are virtual steps used by options to anchor the
	// flow graph.
	StartStep = &Step[any]{Details: &StepInfo{Name: "start"}}
	EndStep   = &Step[any]{Details: &StepInfo{Name: "end"}}
)
