// Package buildinfo carries the build version stamped in by the linker.
package buildinfo

// Version is overridden at build time via
// -ldflags "-X shepherd/internal/support/buildinfo.Version=...".
var Version = "dev"
