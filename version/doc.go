// Package version reports the dbprime build version.
//
// Version and commit can be set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/dbprime/version.Version=v1.0.0"
package version
