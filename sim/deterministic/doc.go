// Package deterministic generates a population of axes from per-cohort
// aggregate statistics without sampling per axis.
//
// Counts are obtained by proportional allocation: floor every share, then
// hand the leftover units to the categories with the largest proportions.
// For small plant numbers this avoids the sampling variance of the
// stochastic generator in package sim. Only the final assignment of axes
// to plants (PlantList) draws random numbers.
package deterministic
