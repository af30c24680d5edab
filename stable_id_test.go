package platformversion

import (
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func stubSlotStoreProvider(t *testing.T, fn func() SlotStore) {
	t.Helper()
	origProvider := slotStoreProvider
	defaultStoreMu.Lock()
	origStore := defaultStore
	defaultStore = nil
	defaultStoreMu.Unlock()

	slotStoreProvider = fn
	t.Cleanup(func() {
		slotStoreProvider = origProvider
		defaultStoreMu.Lock()
		defaultStore = origStore
		defaultStoreMu.Unlock()
	})
}

func fixedGenerator(ids ...string) IDGenerator {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i%len(ids)]
		i++
		return id, nil
	}
}

func TestGetOrCreate_FirstRunCreatesUUID(t *testing.T) {
	slot := NewMemoryStore()
	store := NewStableIDStore(slot)

	id := store.GetOrCreate()
	require.Regexp(t, uuidPattern, id)

	content, present := slot.Content()
	require.True(t, present)
	assert.Equal(t, id, content)
	assert.Equal(t, 1, slot.Writes())
}

func TestGetOrCreate_Idempotent(t *testing.T) {
	slot := NewMemoryStore()
	store := NewStableIDStore(slot)

	first := store.GetOrCreate()
	second := store.GetOrCreate()
	third := NewStableIDStore(slot).GetOrCreate()

	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	assert.Equal(t, 1, slot.Writes(), "a persisted id must not be rewritten")
}

func TestGetOrCreate_RegeneratesUnusableSlot(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"newline only", "\n"},
		{"empty", ""},
		{"whitespace", "   \t"},
		{"blank first line", "\nleftover"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := NewMemoryStoreWith(tt.content)
			id := NewStableIDStore(slot).GetOrCreate()

			require.Regexp(t, uuidPattern, id)
			content, _ := slot.Content()
			assert.Equal(t, id, content)
		})
	}
}

func TestGetOrCreate_ReturnsForeignContentVerbatim(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"not a uuid", "not-a-uuid", "not-a-uuid"},
		{"trailing newline", "not-a-uuid\n", "not-a-uuid"},
		{"braced guid", "{6F9619FF-8B86-D011-B42D-00C04FC964FF}", "{6F9619FF-8B86-D011-B42D-00C04FC964FF}"},
		{"first line only", "abc\ndef\n", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := NewMemoryStoreWith(tt.content)
			result := NewStableIDStore(slot).Resolve()

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, SourcePersisted, result.Source)
			assert.Zero(t, slot.Writes())
		})
	}
}

func TestResolve_WriteFailureReturnsEphemeralID(t *testing.T) {
	slot := NewMemoryStore()
	slot.WriteErr = errors.New("read-only filesystem")
	store := NewStableIDStore(slot)

	result := store.Resolve()
	require.Regexp(t, uuidPattern, result.Value)
	assert.Equal(t, SourceEphemeral, result.Source)
	assert.False(t, result.Persisted())
	assert.ErrorIs(t, result.WriteErr, slot.WriteErr)

	_, present := slot.Content()
	assert.False(t, present)

	// 未持久化时每次调用都可能得到新值
	again := store.GetOrCreate()
	assert.Regexp(t, uuidPattern, again)
}

func TestResolve_GeneratorFailureReturnsEmpty(t *testing.T) {
	genErr := errors.New("entropy exhausted")
	slot := NewMemoryStore()
	store := NewStableIDStore(slot, WithGenerator(func() (string, error) { return "", genErr }))

	result := store.Resolve()
	assert.Empty(t, result.Value)
	assert.Equal(t, SourceUnavailable, result.Source)
	assert.ErrorIs(t, result.GenerateErr, genErr)
	assert.Zero(t, slot.Writes())
}

func TestResolve_EmptyGeneratorOutputIsFailure(t *testing.T) {
	store := NewStableIDStore(NewMemoryStore(), WithGenerator(func() (string, error) { return "", nil }))

	result := store.Resolve()
	assert.Empty(t, result.Value)
	assert.ErrorIs(t, result.GenerateErr, ErrGeneratorFailed)
}

func TestResolve_ReadErrorRegenerates(t *testing.T) {
	slot := NewMemoryStore()
	slot.ReadErr = errors.New("permission denied")
	store := NewStableIDStore(slot, WithGenerator(fixedGenerator("11111111-2222-4333-8444-555555555555")))

	result := store.Resolve()
	assert.Equal(t, "11111111-2222-4333-8444-555555555555", result.Value)
	assert.Equal(t, SourceCreated, result.Source)
	assert.ErrorIs(t, result.ReadErr, slot.ReadErr)
}

// racingSlot 模拟排他创建时被其他进程抢先写入
type racingSlot struct {
	*MemoryStore
	winner string
}

func (r *racingSlot) CreateExclusive(value string) error {
	if err := r.MemoryStore.Write(r.winner); err != nil {
		return err
	}
	return ErrSlotExists
}

func TestResolve_AdoptsConcurrentWinner(t *testing.T) {
	slot := &racingSlot{MemoryStore: NewMemoryStore(), winner: "winner-id"}
	store := NewStableIDStore(slot, WithGenerator(fixedGenerator("loser-id")))

	result := store.Resolve()
	assert.Equal(t, "winner-id", result.Value)
	assert.Equal(t, SourceAdopted, result.Source)
	assert.True(t, result.Persisted())
}

func TestResolve_OverwritesExistingUnusableSlot(t *testing.T) {
	slot := &racingSlot{MemoryStore: NewMemoryStore(), winner: "\n"}
	store := NewStableIDStore(slot, WithGenerator(fixedGenerator("fresh-id")))

	result := store.Resolve()
	assert.Equal(t, "fresh-id", result.Value)
	assert.Equal(t, SourceCreated, result.Source)

	content, _ := slot.Content()
	assert.Equal(t, "fresh-id", content)
}

func TestGetOrCreate_ConcurrentCallersAgree(t *testing.T) {
	slot := NewMemoryStore()

	const n = 16
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// 每个 goroutine 使用独立实例，共享同一槽位锁
			ids[i] = NewStableIDStore(slot).GetOrCreate()
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, ids[0], ids[i])
	}
	assert.Equal(t, 1, slot.Writes())
}

func TestStableDeviceID_UsesDefaultSlot(t *testing.T) {
	slot := NewMemoryStoreWith("preset-id")
	stubSlotStoreProvider(t, func() SlotStore { return slot })

	assert.Equal(t, "preset-id", StableDeviceID())
	assert.Same(t, DefaultStableIDStore(), DefaultStableIDStore())
}

func TestNewRandomID(t *testing.T) {
	a, err := NewRandomID()
	require.NoError(t, err)
	b, err := NewRandomID()
	require.NoError(t, err)

	assert.Regexp(t, uuidPattern, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('4'), a[14], "version 4 uuid")
}
