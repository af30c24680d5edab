// Package channel implements a named method channel: a request/response binding between a
// host application runtime and native code. Calls are routed by method name to registered
// handlers; unknown methods yield a "not implemented" response rather than an error.
package channel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// 错误码
const (
	CodeError      = "error"
	CodeBadRequest = "bad_request"
	CodePanic      = "panic"
	CodeEncode     = "encode_error"
)

// ErrNotImplemented 处理器可返回该错误表示方法未实现
var ErrNotImplemented = errors.New("channel: method not implemented")

// MethodCall 一次方法调用
type MethodCall struct {
	ID        json.RawMessage `json:"id,omitempty"`
	Method    string          `json:"method"`
	Arguments json.RawMessage `json:"args,omitempty"`
}

// ErrorDetail 错误响应体
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Response is exactly one of: a success carrying Result, an error carrying Error,
// or a "not implemented" signal.
type Response struct {
	ID             json.RawMessage `json:"id,omitempty"`
	Result         any             `json:"result,omitempty"`
	Error          *ErrorDetail    `json:"error,omitempty"`
	NotImplemented bool            `json:"notImplemented,omitempty"`
}

// Success 报告响应是否为成功结果
func (r Response) Success() bool {
	return r.Error == nil && !r.NotImplemented
}

// MethodError lets a handler choose the error code and details of its response.
type MethodError struct {
	Code    string
	Message string
	Details any
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewMethodError 创建带错误码的处理器错误
func NewMethodError(code, message string, details any) *MethodError {
	return &MethodError{Code: code, Message: message, Details: details}
}

// HandlerFunc 处理一次方法调用
type HandlerFunc func(ctx context.Context, call MethodCall) (any, error)

// Option 配置 Channel
type Option func(*Channel)

// WithLogger 设置日志记录器
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Channel) {
		c.log = logger
	}
}

// WithCodec 替换编解码器，默认 JSONCodec
func WithCodec(codec Codec) Option {
	return func(c *Channel) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// Channel routes method calls to handlers. It is safe for concurrent use.
type Channel struct {
	name  string
	log   zerolog.Logger
	codec Codec

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// New 创建指定名称的方法通道
func New(name string, opts ...Option) *Channel {
	c := &Channel{
		name:     name,
		log:      zerolog.Nop(),
		codec:    JSONCodec{},
		handlers: make(map[string]HandlerFunc),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("channel", name).Logger()
	return c
}

// Name 返回通道名称
func (c *Channel) Name() string {
	return c.name
}

// Handle registers h for method, replacing any previous handler. A nil handler removes it.
func (c *Channel) Handle(method string, h HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h == nil {
		delete(c.handlers, method)
		return
	}
	c.handlers[method] = h
}

// Methods 返回已注册的方法名（有序）
func (c *Channel) Methods() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	methods := make([]string, 0, len(c.handlers))
	for m := range c.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Invoke 以无参数方式调用方法
func (c *Channel) Invoke(ctx context.Context, method string) Response {
	return c.Dispatch(ctx, MethodCall{Method: method})
}

// Dispatch runs the handler for call.Method synchronously. It never panics:
// handler panics are reported as an error response with code "panic".
func (c *Channel) Dispatch(ctx context.Context, call MethodCall) (resp Response) {
	resp.ID = call.ID

	c.mu.RLock()
	h, ok := c.handlers[call.Method]
	c.mu.RUnlock()
	if !ok {
		c.log.Debug().Str("method", call.Method).Msg("method not implemented")
		resp.NotImplemented = true
		return resp
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Str("method", call.Method).Interface("panic", r).Msg("handler panicked")
			resp = Response{ID: call.ID, Error: &ErrorDetail{Code: CodePanic, Message: fmt.Sprint(r)}}
		}
	}()

	result, err := h(ctx, call)
	if err != nil {
		return errorResponse(call, err)
	}
	c.log.Debug().Str("method", call.Method).Msg("method handled")
	resp.Result = result
	return resp
}

func errorResponse(call MethodCall, err error) Response {
	if errors.Is(err, ErrNotImplemented) {
		return Response{ID: call.ID, NotImplemented: true}
	}
	var me *MethodError
	if errors.As(err, &me) {
		return Response{ID: call.ID, Error: &ErrorDetail{Code: me.Code, Message: me.Message, Details: me.Details}}
	}
	return Response{ID: call.ID, Error: &ErrorDetail{Code: CodeError, Message: err.Error()}}
}
