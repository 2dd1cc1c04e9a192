// Package render defines the renderer contract shared by output formats and
// the Tracker view that captures controller requests as a renderable State.
package render
