// Package tui implements the interactive terminal control panel for a
// plant node. It is built with Bubble Tea and shows the node's cached
// state and moisture reading alongside a category/token picker for
// sending IR commands.
//
// The panel polls the node's REST surface on a short timer rather than
// subscribing to the telemetry stream, so it works against nodes that
// have telemetry disabled.
package tui
