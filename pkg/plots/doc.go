// Package plots renders verification figures as SVG documents: time series,
// box plots, Taylor diagrams and spatial maps of paired model/observation
// data.
package plots
