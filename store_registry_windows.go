//go:build windows
// +build windows

package platformversion

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	registrySubKey     = `Software\` + slotNamespace
	registryMutexName  = `Local\` + slotNamespace + `_` + slotName
	registryMutexWait  = 5 * time.Second
	registryRootPrefix = `HKEY_CURRENT_USER\`
)

// RegistryStore keeps the identifier as a REG_SZ value stable_device_id under
// HKEY_CURRENT_USER\Software\platform_version.
type RegistryStore struct {
	root  registry.Key
	path  string
	name  string
	mutex string
}

// NewRegistryStore 返回当前用户注册表中的默认槽位
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{
		root:  registry.CURRENT_USER,
		path:  registrySubKey,
		name:  slotName,
		mutex: registryMutexName,
	}
}

func (r *RegistryStore) Location() string {
	return registryRootPrefix + r.path + `\` + r.name
}

func (r *RegistryStore) Read() ReadResult {
	k, err := registry.OpenKey(r.root, r.path, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return NotFoundResult()
		}
		return IOErrorResult(fmt.Errorf("open key %s: %w", r.path, err))
	}
	defer k.Close()

	return r.readValue(k)
}

func (r *RegistryStore) readValue(k registry.Key) ReadResult {
	s, valtype, err := k.GetStringValue(r.name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) || errors.Is(err, registry.ErrUnexpectedType) {
			return NotFoundResult()
		}
		return IOErrorResult(fmt.Errorf("query value %s: %w", r.name, err))
	}
	// 只接受 REG_SZ，其他类型视为无效并重新生成
	if valtype != registry.SZ {
		return NotFoundResult()
	}
	if v := slotValueString(s); v != "" {
		return FoundResult(v)
	}
	return NotFoundResult()
}

func (r *RegistryStore) Write(value string) error {
	k, _, err := registry.CreateKey(r.root, r.path, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create key %s: %w", r.path, err)
	}
	defer k.Close()

	if err := k.SetStringValue(r.name, value); err != nil {
		return fmt.Errorf("set value %s: %w", r.name, err)
	}
	return nil
}

// CreateExclusive sets the value only if it is not present yet. The check-then-set runs
// under a per-session named mutex so concurrent processes of the same user serialise.
// If the mutex cannot be obtained the operation continues unguarded.
func (r *RegistryStore) CreateExclusive(value string) error {
	if release, err := acquireNamedMutex(r.mutex, registryMutexWait); err == nil {
		defer release()
	}

	k, _, err := registry.CreateKey(r.root, r.path, registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("create key %s: %w", r.path, err)
	}
	defer k.Close()

	if existing := r.readValue(k); existing.Status == SlotFound {
		return ErrSlotExists
	}
	if err := k.SetStringValue(r.name, value); err != nil {
		return fmt.Errorf("set value %s: %w", r.name, err)
	}
	return nil
}

func acquireNamedMutex(name string, timeout time.Duration) (func(), error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	// 已存在的互斥量会同时返回有效句柄与 ERROR_ALREADY_EXISTS
	h, err := windows.CreateMutex(nil, false, namePtr)
	if h == 0 {
		return nil, fmt.Errorf("create mutex %s: %w", name, err)
	}

	event, err := windows.WaitForSingleObject(h, uint32(timeout/time.Millisecond))
	if err != nil || (event != windows.WAIT_OBJECT_0 && event != windows.WAIT_ABANDONED) {
		windows.CloseHandle(h)
		if err == nil {
			err = fmt.Errorf("wait mutex %s: timed out", name)
		}
		return nil, err
	}

	return func() {
		windows.ReleaseMutex(h)
		windows.CloseHandle(h)
	}, nil
}
