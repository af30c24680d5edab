package platformversion

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	// slotNamespace 槽位所在的目录名 / 注册表子键名
	slotNamespace = "platform_version"
	// slotName 槽位文件名 / 注册表值名
	slotName = "stable_device_id"
)

var (
	// ErrSlotExists 排他创建时槽位已被其他写入者占用
	ErrSlotExists = errors.New("platformversion: identifier slot already exists")
	// ErrSubstrateUnsupported 当前平台不支持所请求的持久化介质
	ErrSubstrateUnsupported = errors.New("platformversion: persistence substrate not supported on this platform")
)

// SlotStatus is the outcome of reading an identifier slot.
type SlotStatus int

const (
	// SlotNotFound: the slot does not exist, or holds nothing usable (empty first line).
	SlotNotFound SlotStatus = iota
	// SlotFound: the slot holds a non-empty value.
	SlotFound
	// SlotIOError: the substrate could not be read.
	SlotIOError
)

func (s SlotStatus) String() string {
	switch s {
	case SlotFound:
		return "found"
	case SlotNotFound:
		return "not_found"
	case SlotIOError:
		return "io_error"
	default:
		return "unknown"
	}
}

// ReadResult 槽位读取结果
type ReadResult struct {
	Status SlotStatus
	Value  string
	Err    error
}

// FoundResult 构造已找到的读取结果
func FoundResult(value string) ReadResult {
	return ReadResult{Status: SlotFound, Value: value}
}

// NotFoundResult 构造未找到的读取结果
func NotFoundResult() ReadResult {
	return ReadResult{Status: SlotNotFound}
}

// IOErrorResult 构造读取失败的结果
func IOErrorResult(err error) ReadResult {
	return ReadResult{Status: SlotIOError, Err: err}
}

// SlotStore is the persistence port for the identifier: one named slot in a
// platform substrate (a file, a registry value, memory).
//
// Read performs no format validation; any non-empty first line is returned verbatim
// apart from surrounding whitespace. Write fully replaces the slot content.
type SlotStore interface {
	Read() ReadResult
	Write(value string) error
	// Location 返回便于日志定位的槽位描述（路径或注册表位置）
	Location() string
}

// ExclusiveCreator is implemented by substrates that can create the slot only if it
// does not exist yet. CreateExclusive returns ErrSlotExists when the slot is present.
type ExclusiveCreator interface {
	CreateExclusive(value string) error
}

// slotValue 取内容的第一行并去除首尾空白，空行视为无值
func slotValue(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return trim(line), nil
}

func slotValueString(s string) string {
	v, _ := slotValue(strings.NewReader(s))
	return v
}
