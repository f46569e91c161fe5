// Package builder provides a fluent API for assembling flow step trees and
// flow versions
//
// Builders are immutable: every With method returns a modified copy, so a
// partially configured builder can be reused as a template
package builder
