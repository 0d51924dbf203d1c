// Package version provides build version information.
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/cosmosdb/version.Version=1.0.0"
package version
