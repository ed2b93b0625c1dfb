// Package assemble builds the Run Configuration for one training
// invocation: the complete, ordered, immutable argument set handed to the
// external training script. Construction is pure: the workflow model,
// per-kind presets and environment lookups go in, a RunConfig comes out, and
// repeated assembly from identical inputs yields an identical configuration.
package assemble
