// Package operation applies structural edits to flow versions
//
// Apply is a pure function: it never modifies the version it is given and
// returns a new version that shares every unchanged part of the step tree.
// Every operation preserves the uniqueness of step names across the tree
package operation
