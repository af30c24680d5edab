package platformversion

import (
	"strconv"
	"strings"
)

// Windows SYSTEM_INFO.wProcessorArchitecture 取值
const (
	processorArchitectureIntel = 0
	processorArchitectureARM   = 5
	processorArchitectureIA64  = 6
	processorArchitectureAMD64 = 9
	processorArchitectureARM64 = 12
)

// windows11FirstBuild Windows 11 仍报告 10.0，只能通过构建号区分
const windows11FirstBuild = 22000

// windowsVersionLabel maps RtlGetVersion numbers to the marketing name used by
// getPlatformVersion ("Windows " + label).
func windowsVersionLabel(major, minor, build uint32) string {
	switch {
	case major >= 12:
		return "12+"
	case major >= 11:
		return "11"
	case major == 10 && build >= windows11FirstBuild:
		return "11"
	case major >= 10:
		return "10"
	case major == 6 && minor >= 2:
		return "8"
	case major >= 6:
		return "7"
	default:
		return "Older"
	}
}

func processorArchitectureName(arch uint16) string {
	switch arch {
	case processorArchitectureAMD64:
		return "x64"
	case processorArchitectureARM:
		return "ARM"
	case processorArchitectureARM64:
		return "ARM64"
	case processorArchitectureIA64:
		return "IA64"
	case processorArchitectureIntel:
		return "x86"
	default:
		return Unknown
	}
}

// splitVersion 解析 "14.2.1" 形式的版本号，缺失或非数字的部分为 0
func splitVersion(v string) (major, minor, patch int64) {
	parts := strings.SplitN(strings.TrimSpace(v), ".", 3)
	nums := make([]int64, 3)
	for i, p := range parts {
		// 去掉 "1-RELEASE" 一类的后缀
		p = strings.TrimLeft(p, " ")
		end := 0
		for end < len(p) && p[end] >= '0' && p[end] <= '9' {
			end++
		}
		if end == 0 {
			continue
		}
		n, err := strconv.ParseInt(p[:end], 10, 64)
		if err == nil {
			nums[i] = n
		}
	}
	return nums[0], nums[1], nums[2]
}
