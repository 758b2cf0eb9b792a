// Package analysis drives a full verification run from a control file: it
// opens the model and obs datasets, pairs them in space and time, and renders
// the configured plot groups and statistics. Dataset loading and pairing run
// as channel pipelines so independent datasets are processed concurrently.
package analysis
