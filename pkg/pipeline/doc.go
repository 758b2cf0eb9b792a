// Package pipeline provides a channel-based pipeline for processing data.
//
// A pipeline is built from root steps that produce values, intermediate steps
// that transform them, splitters and mergers that reshape the flow, and sinks
// that consume the results. Every stage runs in its own goroutine and data is
// passed between stages through channels, so independent stages execute
// concurrently. The pipeline stops on the first error encountered by any
// stage.
//
// Cross-cutting behaviour (flow diagrams, profiling) is attached through
// options implementing model.PipelineOption.
package pipeline
