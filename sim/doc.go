// Package sim provides the core discrete-event microsimulation engine:
// a virtual-time kernel dispatching timestamped self-messages to a
// per-individual process, reproducible random streams, and age-partitioned
// reporting.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - message.go: the self-message and its payload variants
//   - kernel.go: the priority queue, clock and dispatch loop
//   - rngstream.go: independent random streams with substream advancement
//
// # Architecture
//
// The sim package holds the engine and the reporting/numeric utilities;
// the disease models live in sub-packages:
//   - sim/prostate/: the prostate-cancer natural-history and screening model
//   - sim/illness/: a minimal two-state illness-death model
//   - sim/calib/: the four-stage calibration model with an explicit seed
//   - sim/store/: SQLite persistence of report frames
//
// A model implements the two-method Process interface and drives one
// Simulation per individual; the outer driver advances each stream's
// substream between individuals so runs are reproducible and
// per-individual histories are independent of batch size.
package sim
