//go:build linux
// +build linux

package platformversion

import (
	"context"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

const (
	cpuInfoPath   = "/proc/cpuinfo"
	osReleasePath = "/etc/os-release"
	cpuOnlinePath = "/sys/devices/system/cpu/online"
)

// platformSources Linux 信息源，路径与系统调用均可在测试中替换
type platformSources struct {
	cpuInfoPath   string
	osReleasePath string
	cpuOnlinePath string

	uname    func(*unix.Utsname) error
	sysinfo  func(*unix.Sysinfo_t) error
	hostname func() (string, error)
}

func defaultPlatformSources() platformSources {
	return platformSources{
		cpuInfoPath:   cpuInfoPath,
		osReleasePath: osReleasePath,
		cpuOnlinePath: cpuOnlinePath,
		uname:         unix.Uname,
		sysinfo:       unix.Sysinfo,
		hostname:      os.Hostname,
	}
}

func platformVersion(_ context.Context, src platformSources, log zerolog.Logger) string {
	var uts unix.Utsname
	if err := src.uname(&uts); err != nil {
		log.Debug().Err(err).Msg("uname failed")
		return "Linux " + Unknown
	}
	return "Linux " + unix.ByteSliceToString(uts.Release[:])
}

func collectPlatformInfo(_ context.Context, src platformSources, info DeviceInfo, log zerolog.Logger) {
	// uname
	var uts unix.Utsname
	if err := src.uname(&uts); err != nil {
		log.Debug().Err(err).Msg("uname failed")
		info["systemName"] = Unknown
		info["nodeName"] = Unknown
		info["release"] = Unknown
		info["version"] = Unknown
		info["machine"] = Unknown
	} else {
		info["systemName"] = orUnknown(unix.ByteSliceToString(uts.Sysname[:]))
		info["nodeName"] = orUnknown(unix.ByteSliceToString(uts.Nodename[:]))
		info["release"] = orUnknown(unix.ByteSliceToString(uts.Release[:]))
		info["version"] = orUnknown(unix.ByteSliceToString(uts.Version[:]))
		info["machine"] = orUnknown(unix.ByteSliceToString(uts.Machine[:]))
	}

	hostname, err := src.hostname()
	if err != nil {
		log.Debug().Err(err).Msg("hostname failed")
	}
	info["hostname"] = orUnknown(hostname)

	// 内存信息，按 mem_unit 换算为字节
	var si unix.Sysinfo_t
	if err := src.sysinfo(&si); err != nil {
		log.Debug().Err(err).Msg("sysinfo failed")
		si = unix.Sysinfo_t{}
	}
	unit := uint64(si.Unit)
	if unit == 0 {
		unit = 1
	}
	info["totalRam"] = int64(uint64(si.Totalram) * unit)
	info["freeRam"] = int64(uint64(si.Freeram) * unit)
	info["sharedRam"] = int64(uint64(si.Sharedram) * unit)
	info["bufferRam"] = int64(uint64(si.Bufferram) * unit)
	info["totalSwap"] = int64(uint64(si.Totalswap) * unit)
	info["freeSwap"] = int64(uint64(si.Freeswap) * unit)
	info["processes"] = int64(si.Procs)
	info["uptime"] = int64(si.Uptime)

	info["numberOfProcessors"] = int64(onlineProcessors(src.cpuOnlinePath))
	info["cpuModel"] = orUnknown(readCPUModel(src.cpuInfoPath))

	name, version := readOSRelease(src.osReleasePath)
	info["distributionName"] = orUnknown(name)
	info["distributionVersion"] = orUnknown(version)
}

// onlineProcessors 与 sysconf(_SC_NPROCESSORS_ONLN) 相同的来源，读取失败时退回 runtime.NumCPU
func onlineProcessors(path string) int {
	if s, err := readFileString(path); err == nil {
		if n := parseCPUList(s); n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

func readCPUModel(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	return parseCPUModel(f)
}

func readOSRelease(path string) (string, string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()
	return parseOSRelease(f)
}
