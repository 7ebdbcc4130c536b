// Package book defines the persisted document model for a manuscript
// project: the book configuration, per-chapter state, the project-wide
// aggregate, and user preferences. It also owns the chapter status state
// machine, the pure shape validators for each document kind, and the
// genre default configuration templates.
//
// Everything in this package is pure: no I/O, no hidden state. Validators
// return every violation found so callers can report them all at once.
package book
