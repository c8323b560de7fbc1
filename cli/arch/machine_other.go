//go:build !unix

package arch

import "runtime"

func machine() string {
	return runtime.GOARCH
}
