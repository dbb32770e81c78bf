// Package sim generates the branching architecture of a cereal plant
// population: which tiller cohorts each plant produces, the final leaf
// number of every axis, and when each axis stops growing.
//
// # Reading Guide
//
// Start with these files:
//   - axis.go: Axis, Plant and StopTime, the values handed to downstream table builders
//   - cohorts.go: stochastic decision of the tiller cohorts a plant produces
//   - leaves.go: main stem and tiller final leaf numbers
//   - death.go: thermal times at which axes stop growing (last emerged dies first)
//   - population.go: the stochastic generation pass tying the above together
//
// # Architecture
//
// Sub-packages hold the pieces that do not depend on per-axis sampling:
//   - sim/fit/: one-parameter polynomial least-squares fit with RMSE scoring
//   - sim/deterministic/: rounding-based generation of a whole population
//   - sim/export/: CSV and SQLite writers for the flat axis table
//
// # Randomness
//
// Every sampling call takes a RandomSource. Production code derives one per
// subsystem from a PartitionedRNG so that a seed reproduces a population
// bit-for-bit; tests inject scripted sources.
package sim
