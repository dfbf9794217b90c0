// Package blocks implements pulsebar's concrete data-source blocks: clock,
// volume, wifi, battery, music, package updates, system metrics, window
// manager workspaces, and static labels. Each block receives ready-to-use
// handles (a command runner, an event table) at construction and only turns
// their output into rendered markup. A failing source renders an
// urgent-styled placeholder in its normal position and never lets the
// failure escape its own update path.
package blocks

// pad surrounds a block's visible text with single spaces so adjacent
// blocks don't run together; the compositor itself inserts nothing.
func pad(s string) string {
	return " " + s + " "
}
