// Package stats computes verification statistics on paired model and
// observation samples. Statistics are addressed by the short names used in
// control files (MB, NMB, RMSE, ...) and carry a full display name for
// tables.
package stats
