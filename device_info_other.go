//go:build !linux && !windows
// +build !linux,!windows

package platformversion

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// uname sysname 取值
var systemNames = map[string]string{
	"darwin":    "Darwin",
	"freebsd":   "FreeBSD",
	"openbsd":   "OpenBSD",
	"netbsd":    "NetBSD",
	"dragonfly": "DragonFly",
	"solaris":   "SunOS",
	"illumos":   "SunOS",
	"aix":       "AIX",
}

// NSProcessInfo.operatingSystem 在 macOS 上固定返回 NSMACHOperatingSystem
const machOperatingSystem = 5

// platformSources 通过 gopsutil 与 sysctl 读取，测试可替换
type platformSources struct {
	hostInfo      func(context.Context) (*host.InfoStat, error)
	virtualMemory func(context.Context) (*mem.VirtualMemoryStat, error)
	cpuCounts     func(context.Context, bool) (int, error)
	kernelVersion func() (string, error) // uname version (kern.version)
	osBuild       func() (string, error) // kern.osversion，如 23C64
}

func defaultPlatformSources() platformSources {
	return platformSources{
		hostInfo:      host.InfoWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
		cpuCounts:     cpu.CountsWithContext,
		kernelVersion: sysctlKernelVersion,
		osBuild:       sysctlOSBuild,
	}
}

func systemName() string {
	if name, ok := systemNames[runtime.GOOS]; ok {
		return name
	}
	return runtime.GOOS
}

// operatingSystemVersionString 与 NSProcessInfo 相同的格式: "Version 14.2.1 (Build 23B92)"
func operatingSystemVersionString(version string, src platformSources, log zerolog.Logger) string {
	if version == "" {
		return Unknown
	}
	s := "Version " + version
	build, err := src.osBuild()
	if err != nil {
		log.Debug().Err(err).Msg("os build failed")
	}
	if build = trim(build); build != "" {
		s += " (Build " + build + ")"
	}
	return s
}

// operatingSystem 非 macOS 平台没有对应取值，返回 0
func operatingSystem() int64 {
	if runtime.GOOS == "darwin" {
		return machOperatingSystem
	}
	return 0
}

func platformVersion(ctx context.Context, src platformSources, log zerolog.Logger) string {
	var version string
	if hi, err := src.hostInfo(ctx); err != nil {
		log.Debug().Err(err).Msg("host info failed")
	} else if hi != nil {
		version = hi.PlatformVersion
	}
	if runtime.GOOS == "darwin" {
		return "macOS " + operatingSystemVersionString(version, src, log)
	}
	return systemName() + " " + orUnknown(version)
}

func collectPlatformInfo(ctx context.Context, src platformSources, info DeviceInfo, log zerolog.Logger) {
	hi, err := src.hostInfo(ctx)
	if err != nil || hi == nil {
		log.Debug().Err(err).Msg("host info failed")
		hi = &host.InfoStat{}
	}

	var physical uint64
	if vm, err := src.virtualMemory(ctx); err != nil {
		log.Debug().Err(err).Msg("virtual memory failed")
	} else if vm != nil {
		physical = vm.Total
	}

	processors, err := src.cpuCounts(ctx, true)
	if err != nil {
		log.Debug().Err(err).Msg("cpu counts failed")
		processors = runtime.NumCPU()
	}

	kernelVersion, err := src.kernelVersion()
	if err != nil {
		log.Debug().Err(err).Msg("kernel version failed")
	}
	major, minor, patch := splitVersion(hi.PlatformVersion)

	info["operatingSystemVersionString"] = operatingSystemVersionString(hi.PlatformVersion, src, log)
	info["processorCount"] = int64(processors)
	info["activeProcessorCount"] = int64(runtime.NumCPU())
	info["physicalMemory"] = int64(physical)
	info["hostName"] = orUnknown(hi.Hostname)
	info["operatingSystem"] = operatingSystem()
	info["processName"] = filepath.Base(os.Args[0])
	info["globallyUniqueString"] = uuid.NewString()
	info["majorVersion"] = major
	info["minorVersion"] = minor
	info["patchVersion"] = patch
	info["modelIdentifier"] = orUnknown(hi.KernelArch)
	info["systemName"] = systemName()
	info["kernelVersion"] = orUnknown(trim(kernelVersion))
}
