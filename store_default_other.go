//go:build !windows
// +build !windows

package platformversion

// DefaultSlotStore returns the platform identifier slot: a file under the user
// configuration directory.
func DefaultSlotStore() SlotStore {
	return DefaultFileStore()
}

// RegistrySlotStore 非 Windows 平台没有注册表
func RegistrySlotStore() (SlotStore, error) {
	return nil, ErrSubstrateUnsupported
}
