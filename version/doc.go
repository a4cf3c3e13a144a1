// Package version reports the build identity served at /version.
//
//	go build -ldflags "-X github.com/kbukum/backend-template/version.Version=1.4.0 \
//	    -X github.com/kbukum/backend-template/version.BuildTime=2026-05-01T10:00:00Z"
//
// Without ldflags the commit and build time come from the VCS stamp in
// the binary's build info.
package version
