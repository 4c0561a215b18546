// Package version carries the build identity the release workflow stamps
// in with -ldflags. A plain source build shows "dev".
package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	Version   = "dev"                           // ex: v0.1.0
	Commit    = "none"                          // ex: abcd123
	BuildDate = time.Now().Format(time.RFC3339) // ex: 2025-08-11T18:42:00Z
	GoVersion = runtime.Version()               // go version
)

// String renders the one-line build description shown by `perchd version`
// and the startup log.
func String() string {
	return fmt.Sprintf("perchd %s (commit=%s, built=%s, go=%s)",
		Version, Commit, BuildDate, GoVersion)
}
