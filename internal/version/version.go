// ABOUTME: Version constants for the chime engine
// ABOUTME: Single source of truth for product identity strings
package version

const (
	// Version is the engine version
	Version = "0.1.0"

	// Product is the product name reported by the binaries
	Product = "Chime"

	// Manufacturer identifies the project
	Manufacturer = "Chime Audio"
)
