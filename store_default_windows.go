//go:build windows
// +build windows

package platformversion

// DefaultSlotStore returns the platform identifier slot: the current user's registry.
func DefaultSlotStore() SlotStore {
	return NewRegistryStore()
}

// RegistrySlotStore 返回注册表槽位
func RegistrySlotStore() (SlotStore, error) {
	return NewRegistryStore(), nil
}
