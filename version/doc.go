// Package version carries the build version of the snapstudy binary.
//
// Version, git commit, branch, and build time are set at compile time
// via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/snapstudy/version.Version=1.0.1"
package version
