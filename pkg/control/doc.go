// Package control reads and validates analysis control files.
//
// A control file is a YAML document with five top-level sections: analysis
// (time window and run options), model and obs (dataset declarations keyed by
// label), plots (plot groups) and stats (statistics output). The schema is
// decoded strictly: unknown keys are rejected.
package control
