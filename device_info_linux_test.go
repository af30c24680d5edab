//go:build linux
// +build linux

package platformversion

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func fakeUname(sysname, nodename, release, version, machine string) func(*unix.Utsname) error {
	return func(u *unix.Utsname) error {
		copy(u.Sysname[:], sysname)
		copy(u.Nodename[:], nodename)
		copy(u.Release[:], release)
		copy(u.Version[:], version)
		copy(u.Machine[:], machine)
		return nil
	}
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func fakeSources(t *testing.T) platformSources {
	dir := t.TempDir()
	return platformSources{
		cpuInfoPath:   writeFixture(t, dir, "cpuinfo", sampleCPUInfo),
		osReleasePath: writeFixture(t, dir, "os-release", "NAME=\"Debian GNU/Linux\"\nVERSION=\"12 (bookworm)\"\n"),
		cpuOnlinePath: writeFixture(t, dir, "online", "0-7\n"),
		uname:         fakeUname("Linux", "devbox", "6.1.0-18-amd64", "#1 SMP PREEMPT_DYNAMIC Debian 6.1.76-1", "x86_64"),
		sysinfo: func(si *unix.Sysinfo_t) error {
			si.Totalram = 2048
			si.Freeram = 1024
			si.Sharedram = 16
			si.Bufferram = 32
			si.Totalswap = 512
			si.Freeswap = 256
			si.Procs = 321
			si.Uptime = 3600
			si.Unit = 4096
			return nil
		},
		hostname: func() (string, error) { return "devbox", nil },
	}
}

func TestPlatformVersion_Linux(t *testing.T) {
	c := NewCollector(WithStableIDStore(NewStableIDStore(NewMemoryStore())), withSources(fakeSources(t)))
	assert.Equal(t, "Linux 6.1.0-18-amd64", c.PlatformVersion(context.Background()))
}

func TestPlatformVersion_LinuxUnameFailure(t *testing.T) {
	src := fakeSources(t)
	src.uname = func(*unix.Utsname) error { return errors.New("uname") }
	c := NewCollector(WithStableIDStore(NewStableIDStore(NewMemoryStore())), withSources(src))

	assert.Equal(t, "Linux "+Unknown, c.PlatformVersion(context.Background()))
}

func TestCollectDeviceInfo_Linux(t *testing.T) {
	slot := NewMemoryStoreWith("0b6f1c1e-6c53-4a3c-9d0e-1f2a3b4c5d6e")
	c := NewCollector(WithStableIDStore(NewStableIDStore(slot)), withSources(fakeSources(t)))

	info := c.CollectDeviceInfo(context.Background())

	want := DeviceInfo{
		KeyStableDeviceID:     "0b6f1c1e-6c53-4a3c-9d0e-1f2a3b4c5d6e",
		"systemName":          "Linux",
		"nodeName":            "devbox",
		"release":             "6.1.0-18-amd64",
		"version":             "#1 SMP PREEMPT_DYNAMIC Debian 6.1.76-1",
		"machine":             "x86_64",
		"hostname":            "devbox",
		"totalRam":            int64(2048 * 4096),
		"freeRam":             int64(1024 * 4096),
		"sharedRam":           int64(16 * 4096),
		"bufferRam":           int64(32 * 4096),
		"totalSwap":           int64(512 * 4096),
		"freeSwap":            int64(256 * 4096),
		"processes":           int64(321),
		"uptime":              int64(3600),
		"numberOfProcessors":  int64(8),
		"cpuModel":            "Intel(R) Core(TM) i7-8700 CPU @ 3.20GHz",
		"distributionName":    "Debian GNU/Linux",
		"distributionVersion": "12 (bookworm)",
	}
	assert.Equal(t, want, info)
	assert.Equal(t, "0b6f1c1e-6c53-4a3c-9d0e-1f2a3b4c5d6e", info.StableDeviceID())
}

func TestCollectDeviceInfo_LinuxSourcesUnavailable(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing")
	src := platformSources{
		cpuInfoPath:   missing,
		osReleasePath: missing,
		cpuOnlinePath: missing,
		uname:         func(*unix.Utsname) error { return errors.New("uname") },
		sysinfo:       func(*unix.Sysinfo_t) error { return errors.New("sysinfo") },
		hostname:      func() (string, error) { return "", errors.New("hostname") },
	}
	c := NewCollector(WithStableIDStore(NewStableIDStore(NewMemoryStore())), withSources(src))

	info := c.CollectDeviceInfo(context.Background())

	assert.Regexp(t, uuidPattern, info.StableDeviceID())
	for _, key := range []string{"systemName", "nodeName", "release", "version", "machine", "hostname", "cpuModel", "distributionName", "distributionVersion"} {
		assert.Equal(t, Unknown, info[key], key)
	}
	for _, key := range []string{"totalRam", "freeRam", "sharedRam", "bufferRam", "totalSwap", "freeSwap", "processes", "uptime"} {
		assert.Equal(t, int64(0), info[key], key)
	}
	assert.Equal(t, int64(runtime.NumCPU()), info["numberOfProcessors"])
}

func TestCollectDeviceInfo_LinuxHost(t *testing.T) {
	c := NewCollector(WithStableIDStore(NewStableIDStore(NewMemoryStore())))
	info := c.CollectDeviceInfo(context.Background())

	assert.Regexp(t, uuidPattern, info.StableDeviceID())
	assert.Equal(t, "Linux", info["systemName"])
	assert.Positive(t, info["numberOfProcessors"])
	assert.Regexp(t, `^Linux .+`, c.PlatformVersion(context.Background()))
}
