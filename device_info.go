package platformversion

import (
	"context"

	"github.com/rs/zerolog"
)

// Unknown 信息源不可用时字符串字段的哨兵值
const Unknown = "Unknown"

// KeyStableDeviceID 设备信息中稳定标识字段名
const KeyStableDeviceID = "stableDeviceId"

// DeviceInfo is the flat getDeviceInfo response. Values are string, int32 or int64.
type DeviceInfo map[string]any

// StableDeviceID 返回响应中的稳定标识
func (d DeviceInfo) StableDeviceID() string {
	s, _ := d[KeyStableDeviceID].(string)
	return s
}

// CollectorOption 配置 Collector
type CollectorOption func(*Collector)

// WithStableIDStore 指定稳定标识存储，默认使用平台默认槽位
func WithStableIDStore(ids *StableIDStore) CollectorOption {
	return func(c *Collector) {
		c.ids = ids
	}
}

// WithCollectorLogger 设置日志记录器
func WithCollectorLogger(logger zerolog.Logger) CollectorOption {
	return func(c *Collector) {
		c.log = logger
	}
}

// withSources 测试替换平台信息源
func withSources(src platformSources) CollectorOption {
	return func(c *Collector) {
		c.src = src
	}
}

// Collector assembles DeviceInfo from the stable identifier and read-only OS queries.
// Every field is best-effort: an unavailable source yields a sentinel, never an error.
type Collector struct {
	ids *StableIDStore
	log zerolog.Logger
	src platformSources
}

// NewCollector 创建设备信息采集器
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		log: zerolog.Nop(),
		src: defaultPlatformSources(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ids == nil {
		c.ids = DefaultStableIDStore()
	}
	return c
}

// StableIDStore 返回采集器使用的标识存储
func (c *Collector) StableIDStore() *StableIDStore {
	return c.ids
}

// CollectDeviceInfo resolves the stable identifier once and appends the platform fields.
func (c *Collector) CollectDeviceInfo(ctx context.Context) DeviceInfo {
	info := DeviceInfo{KeyStableDeviceID: c.ids.GetOrCreate()}
	collectPlatformInfo(ctx, c.src, info, c.log)
	return info
}

// PlatformVersion 返回形如 "Linux 6.1.0-18-amd64" 或 "Windows 11" 的版本字符串
func (c *Collector) PlatformVersion(ctx context.Context) string {
	return platformVersion(ctx, c.src, c.log)
}

// GetDeviceInfo 使用默认采集器获取设备信息
func GetDeviceInfo() DeviceInfo {
	return NewCollector().CollectDeviceInfo(context.Background())
}

// GetPlatformVersion 使用默认采集器获取平台版本字符串
func GetPlatformVersion() string {
	return NewCollector().PlatformVersion(context.Background())
}
