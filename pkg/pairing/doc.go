// Package pairing matches model data with observational data along time and
// space. Surface point networks are paired by locating, for every site, the
// nearest model grid cell within the radius of influence, and joining model
// values to obs rows on exact timestamps.
package pairing
