package platformversion

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// MemoryStore is an in-memory SlotStore. It keeps raw content so corrupted slots
// ("\n", "   ") can be reproduced, and lets callers inject read and write failures.
type MemoryStore struct {
	mu      sync.Mutex
	name    string
	content string
	present bool
	writes  int

	ReadErr  error
	WriteErr error
}

var memoryStoreSeq uint64

// NewMemoryStore 创建空的内存槽位
func NewMemoryStore() *MemoryStore {
	seq := atomic.AddUint64(&memoryStoreSeq, 1)
	return &MemoryStore{name: fmt.Sprintf("memory://%s/%d", slotName, seq)}
}

// NewMemoryStoreWith 创建预置原始内容的内存槽位
func NewMemoryStoreWith(content string) *MemoryStore {
	m := NewMemoryStore()
	m.content = content
	m.present = true
	return m
}

func (m *MemoryStore) Location() string {
	return m.name
}

func (m *MemoryStore) Read() ReadResult {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ReadErr != nil {
		return IOErrorResult(m.ReadErr)
	}
	if !m.present {
		return NotFoundResult()
	}
	if v := slotValueString(m.content); v != "" {
		return FoundResult(v)
	}
	return NotFoundResult()
}

func (m *MemoryStore) Write(value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.content = value
	m.present = true
	m.writes++
	return nil
}

// Content 返回原始内容以及槽位是否存在
func (m *MemoryStore) Content() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.content, m.present
}

// Writes 返回成功写入次数
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
