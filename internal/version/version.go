// internal/version/version.go
package version

// Version is the release tag baked into the binary.
const Version = "0.6.0"
