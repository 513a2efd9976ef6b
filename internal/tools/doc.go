// Package tools provides reusable runtime helpers shared by the seedgate commands.
//
// Ownership boundary:
// - command execution helpers
//
// - exit-code classification for failed subprocesses
package tools
