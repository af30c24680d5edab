//go:build windows
// +build windows

package platformversion

import (
	"context"
	"unsafe"

	"github.com/rs/zerolog"
	"golang.org/x/sys/windows"
)

var (
	modkernel32              = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemInfo        = modkernel32.NewProc("GetSystemInfo")
	procGlobalMemoryStatusEx = modkernel32.NewProc("GlobalMemoryStatusEx")
)

// systemInfo 对应 Win32 SYSTEM_INFO
type systemInfo struct {
	ProcessorArchitecture     uint16
	Reserved                  uint16
	PageSize                  uint32
	MinimumApplicationAddress uintptr
	MaximumApplicationAddress uintptr
	ActiveProcessorMask       uintptr
	NumberOfProcessors        uint32
	ProcessorType             uint32
	AllocationGranularity     uint32
	ProcessorLevel            uint16
	ProcessorRevision         uint16
}

// memoryStatusEx 对应 Win32 MEMORYSTATUSEX
type memoryStatusEx struct {
	Length               uint32
	MemoryLoad           uint32
	TotalPhys            uint64
	AvailPhys            uint64
	TotalPageFile        uint64
	AvailPageFile        uint64
	TotalVirtual         uint64
	AvailVirtual         uint64
	AvailExtendedVirtual uint64
}

type platformSources struct{}

func defaultPlatformSources() platformSources {
	return platformSources{}
}

func platformVersion(_ context.Context, _ platformSources, _ zerolog.Logger) string {
	v := windows.RtlGetVersion()
	if v == nil {
		return "Windows Older"
	}
	return "Windows " + windowsVersionLabel(v.MajorVersion, v.MinorVersion, v.BuildNumber)
}

func collectPlatformInfo(_ context.Context, _ platformSources, info DeviceInfo, log zerolog.Logger) {
	var major, minor, build, platformID uint32
	if v := windows.RtlGetVersion(); v != nil {
		major, minor, build, platformID = v.MajorVersion, v.MinorVersion, v.BuildNumber, v.PlatformId
	}

	var si systemInfo
	procGetSystemInfo.Call(uintptr(unsafe.Pointer(&si)))

	mem := memoryStatusEx{Length: uint32(unsafe.Sizeof(memoryStatusEx{}))}
	if r, _, err := procGlobalMemoryStatusEx.Call(uintptr(unsafe.Pointer(&mem))); r == 0 {
		log.Debug().Err(err).Msg("GlobalMemoryStatusEx failed")
		mem = memoryStatusEx{}
	}

	info["computerName"] = orUnknown(computerName(log))
	info["majorVersion"] = int32(major)
	info["minorVersion"] = int32(minor)
	info["buildNumber"] = int32(build)
	info["platformId"] = int32(platformID)
	info["processorArchitecture"] = int32(si.ProcessorArchitecture)
	info["processorArchitectureString"] = processorArchitectureName(si.ProcessorArchitecture)
	info["numberOfProcessors"] = int32(si.NumberOfProcessors)
	info["totalPhysicalMemory"] = int64(mem.TotalPhys)
	info["availablePhysicalMemory"] = int64(mem.AvailPhys)
	info["totalVirtualMemory"] = int64(mem.TotalVirtual)
	info["availableVirtualMemory"] = int64(mem.AvailVirtual)
}

func computerName(log zerolog.Logger) string {
	buf := make([]uint16, 64)
	n := uint32(len(buf))
	if err := windows.GetComputerName(&buf[0], &n); err != nil {
		log.Debug().Err(err).Msg("GetComputerName failed")
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
