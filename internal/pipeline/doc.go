// Package pipeline runs existence checks over many page locations at once,
// for the batch mode of the check command. Results are returned to the
// caller and never persisted.
package pipeline
