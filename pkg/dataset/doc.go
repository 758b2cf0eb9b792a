// Package dataset provides the in-memory tabular representation of model and
// observation data. A Frame holds time-indexed rows with float variable
// columns and string site-metadata columns, read from long-format CSV files
// (one row per time and location).
package dataset
