package platformversion

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// parseCPUModel 返回 /proc/cpuinfo 中第一条 "model name" 的值
func parseCPUModel(r io.Reader) string {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, "model name") {
			continue
		}
		if parts := strings.SplitN(line, ":", 2); len(parts) == 2 {
			return strings.TrimSpace(parts[1])
		}
	}
	return ""
}

// parseOSRelease 读取 os-release 中的 NAME 与 VERSION，后出现的同名键覆盖先前的值。
// PRETTY_NAME / VERSION_ID 等不匹配（只认行首精确前缀）。
func parseOSRelease(r io.Reader) (name, version string) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "NAME="):
			name = unquote(strings.TrimPrefix(line, "NAME="))
		case strings.HasPrefix(line, "VERSION="):
			version = unquote(strings.TrimPrefix(line, "VERSION="))
		}
	}
	return name, version
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// parseCPUList 统计 "0-3,5,7-8" 形式的 CPU 列表中的 CPU 数量
func parseCPUList(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	count := 0
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return 0
		}
		if !isRange {
			count++
			continue
		}
		end, err := strconv.Atoi(hi)
		if err != nil || end < start {
			return 0
		}
		count += end - start + 1
	}
	return count
}
