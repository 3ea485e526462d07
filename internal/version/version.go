// ABOUTME: Version information for micmon
// ABOUTME: Reported by the CLI and shown in the TUI header
package version

const (
	// Version is the micmon release
	Version = "0.3.0"

	// Product is the display name
	Product = "micmon"

	// Manufacturer appears in the tray tooltip
	Manufacturer = "micmon developers"
)

// String returns "product version"
func String() string {
	return Product + " " + Version
}
