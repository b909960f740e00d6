// Package version carries the build version of the apiclient binary and
// library.
//
// Values are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/apiclient/version.Version=1.2.0 \
//	    -X github.com/kbukum/apiclient/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Unset values fall back to the module build info recorded by the Go
// toolchain.
package version
