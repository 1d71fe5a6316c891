// Package progress writes human-readable console output for a run.
// The output is for operators, not machines: its format is not a contract.
package progress
