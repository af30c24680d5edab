package platformversion

import (
	"context"

	"github.com/darkit/platformversion/channel"
)

const (
	// ChannelName 宿主侧注册的通道名
	ChannelName = "platform_version"

	MethodGetPlatformVersion = "getPlatformVersion"
	MethodGetDeviceInfo      = "getDeviceInfo"
)

// Register binds getPlatformVersion and getDeviceInfo on ch to collector.
// Arguments of both methods are ignored.
func Register(ch *channel.Channel, collector *Collector) {
	ch.Handle(MethodGetPlatformVersion, func(ctx context.Context, _ channel.MethodCall) (any, error) {
		return collector.PlatformVersion(ctx), nil
	})
	ch.Handle(MethodGetDeviceInfo, func(ctx context.Context, _ channel.MethodCall) (any, error) {
		return map[string]any(collector.CollectDeviceInfo(ctx)), nil
	})
}

// NewChannel 创建名为 platform_version 的通道并注册两个方法
func NewChannel(collector *Collector, opts ...channel.Option) *channel.Channel {
	ch := channel.New(ChannelName, opts...)
	Register(ch, collector)
	return ch
}
