// Package platformversion exposes host operating-system identification and hardware inventory
// (platform version string, stable per-profile device identifier, CPU/memory/OS metadata)
// to a host application runtime through a method channel named "platform_version".
//
// https://github.com/darkit/platformversion
//
// The stable device identifier is created lazily on first read and persisted per user profile:
// a file under the user configuration directory on Linux, macOS and the BSDs, a registry value
// under HKEY_CURRENT_USER on Windows. The identifier is best-effort stable. It is meant for
// telemetry correlation, never for security or licensing decisions.
package platformversion // import "github.com/darkit/platformversion"

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrGeneratorFailed 随机标识生成失败
	ErrGeneratorFailed = errors.New("platformversion: failed to generate identifier")

	defaultStoreMu sync.Mutex
	defaultStore   *StableIDStore

	// 测试可替换
	slotStoreProvider = DefaultSlotStore

	slotLocks sync.Map // location -> *sync.Mutex
)

// IDSource 描述一次读取或创建标识的结果来源
type IDSource string

const (
	SourcePersisted   IDSource = "persisted"   // 槽位中已有值
	SourceCreated     IDSource = "created"     // 新生成并写入成功
	SourceAdopted     IDSource = "adopted"     // 并发创建时采用了其他写入者的值
	SourceEphemeral   IDSource = "ephemeral"   // 新生成但未能持久化，下次调用可能不同
	SourceUnavailable IDSource = "unavailable" // 生成失败，返回空字符串
)

// StableIDResult 描述 Resolve 的完整结果与降级原因
type StableIDResult struct {
	Value       string
	Source      IDSource
	ReadErr     error
	GenerateErr error
	WriteErr    error
}

// Persisted 报告返回值当前是否已落盘
func (r *StableIDResult) Persisted() bool {
	switch r.Source {
	case SourcePersisted, SourceCreated, SourceAdopted:
		return true
	}
	return false
}

// IDGenerator 生成新的候选标识
type IDGenerator func() (string, error)

// NewRandomID returns a random (version 4) UUID in canonical lower-case text form.
func NewRandomID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneratorFailed, err)
	}
	return id.String(), nil
}

// Option 配置 StableIDStore
type Option func(*StableIDStore)

// WithGenerator 替换标识生成器
func WithGenerator(generate IDGenerator) Option {
	return func(s *StableIDStore) {
		if generate != nil {
			s.generate = generate
		}
	}
}

// WithLogger 设置日志记录器，默认不输出
func WithLogger(logger zerolog.Logger) Option {
	return func(s *StableIDStore) {
		s.log = logger
	}
}

// StableIDStore implements the get-or-create routine for the stable device identifier
// over a single SlotStore. It holds no value between calls: every call re-reads the slot.
type StableIDStore struct {
	mu       *sync.Mutex
	slot     SlotStore
	generate IDGenerator
	log      zerolog.Logger
}

// NewStableIDStore 基于给定槽位创建标识存储
func NewStableIDStore(slot SlotStore, opts ...Option) *StableIDStore {
	s := &StableIDStore{
		mu:       lockFor(slot.Location()),
		slot:     slot,
		generate: NewRandomID,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// lockFor 同一槽位位置在进程内共享一把锁，多个 StableIDStore 实例之间也互斥
func lockFor(location string) *sync.Mutex {
	mu, _ := slotLocks.LoadOrStore(location, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Slot 返回底层槽位
func (s *StableIDStore) Slot() SlotStore {
	return s.slot
}

// GetOrCreate returns the persisted identifier, creating and persisting one when the
// slot is absent or unusable. It never fails: on generator failure it returns "" and on
// write failure it returns the freshly generated, unpersisted identifier.
func (s *StableIDStore) GetOrCreate() string {
	return s.Resolve().Value
}

// Resolve 与 GetOrCreate 相同，但返回结果来源与各阶段错误
func (s *StableIDStore) Resolve() *StableIDResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.log.With().Str("slot", s.slot.Location()).Logger()

	read := s.slot.Read()
	if read.Status == SlotFound {
		log.Debug().Msg("stable device id found")
		return &StableIDResult{Value: read.Value, Source: SourcePersisted}
	}

	result := &StableIDResult{ReadErr: read.Err}
	if read.Status == SlotIOError {
		log.Warn().Err(read.Err).Msg("stable device id slot unreadable, regenerating")
	}

	id, err := s.generate()
	if err == nil && id == "" {
		err = ErrGeneratorFailed
	}
	if err != nil {
		// 生成失败：返回空字符串而不是报错
		log.Warn().Err(err).Msg("stable device id generation failed")
		result.Source = SourceUnavailable
		result.GenerateErr = err
		return result
	}

	result.Value, result.Source, result.WriteErr = s.persist(id)
	if result.WriteErr != nil {
		// 写入失败：本次返回未持久化的新值，下次调用可能得到不同的值
		log.Warn().Err(result.WriteErr).Str("id", id).Msg("stable device id not persisted")
	} else {
		log.Debug().Str("source", string(result.Source)).Msg("stable device id stored")
	}
	return result
}

func (s *StableIDStore) persist(id string) (string, IDSource, error) {
	if creator, ok := s.slot.(ExclusiveCreator); ok {
		err := creator.CreateExclusive(id)
		switch {
		case err == nil:
			return id, SourceCreated, nil
		case errors.Is(err, ErrSlotExists):
			// 其他进程抢先创建，采用其值
			if again := s.slot.Read(); again.Status == SlotFound {
				return again.Value, SourceAdopted, nil
			}
			// 槽位存在但内容无效，覆盖写入
		default:
			return id, SourceEphemeral, err
		}
	}

	if err := s.slot.Write(id); err != nil {
		return id, SourceEphemeral, err
	}
	return id, SourceCreated, nil
}

// DefaultStableIDStore 返回基于平台默认槽位的进程级存储
func DefaultStableIDStore() *StableIDStore {
	defaultStoreMu.Lock()
	defer defaultStoreMu.Unlock()

	if defaultStore == nil {
		defaultStore = NewStableIDStore(slotStoreProvider())
	}
	return defaultStore
}

// StableDeviceID returns the stable identifier of the current user profile,
// creating and persisting it on first use.
func StableDeviceID() string {
	return DefaultStableIDStore().GetOrCreate()
}
