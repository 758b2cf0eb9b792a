// Package model provides the data structures shared by the pipeline package
// and its options. It defines the step descriptors exchanged between the
// pipeline and option implementations such as the flow drawer and the
// profiler.
package model
