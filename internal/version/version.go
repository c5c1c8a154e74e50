// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - HTTP API, Prometheus metrics, satellite targets from TLEs
// 0.2.0 - Yallop crescent zones, grid evaluation with score cache, heatmap TUI
// 0.1.0 - Initial release: celestial and surface scorers, headless point mode
