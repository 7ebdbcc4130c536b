// Package main hosts the galley CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into state
// manager operations: project initialization, manuscript syncing, chapter
// workflow transitions, review and action bookkeeping, and configuration
// scaffolding. It centralizes configuration resolution, cross-process
// locking, and structured logging setup so subcommands can focus on user
// experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
