//go:build !linux && !windows && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly
// +build !linux,!windows,!darwin,!freebsd,!netbsd,!openbsd,!dragonfly

package platformversion

func sysctlKernelVersion() (string, error) {
	return "", ErrSubstrateUnsupported
}

func sysctlOSBuild() (string, error) {
	return "", ErrSubstrateUnsupported
}
