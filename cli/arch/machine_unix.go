//go:build unix

package arch

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// machine returns the hardware name reported by uname(2).
func machine() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return runtime.GOARCH
	}
	name := unix.ByteSliceToString(uts.Machine[:])
	if name == "" {
		return runtime.GOARCH
	}
	return name
}
