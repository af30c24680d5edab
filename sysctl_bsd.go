//go:build darwin || freebsd || netbsd || openbsd || dragonfly
// +build darwin freebsd netbsd openbsd dragonfly

package platformversion

import "golang.org/x/sys/unix"

// sysctlKernelVersion 与 uname(3) 的 version 字段同源
func sysctlKernelVersion() (string, error) {
	return unix.Sysctl("kern.version")
}

// sysctlOSBuild 仅 macOS 提供 kern.osversion
func sysctlOSBuild() (string, error) {
	return unix.Sysctl("kern.osversion")
}
