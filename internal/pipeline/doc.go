// Package pipeline drives lecture items through the processing stages:
// download, convert, trim, and transcript cleaning. A run is a single
// sequential sweep over the queue guarded by a file lock so concurrent
// invocations cannot corrupt intermediate outputs.
package pipeline
