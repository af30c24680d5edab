package channel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingMethod 调用缺少方法名
var ErrMissingMethod = errors.New("channel: missing method name")

// Codec converts calls and responses to and from their wire form.
// One encoded message never contains a newline.
type Codec interface {
	DecodeCall(data []byte) (MethodCall, error)
	EncodeResponse(resp Response) ([]byte, error)
}

// JSONCodec encodes one JSON document per message:
//
//	{"id":1,"method":"getDeviceInfo"}
//	{"id":1,"result":{"stableDeviceId":"..."}}
//	{"id":2,"notImplemented":true}
type JSONCodec struct{}

func (JSONCodec) DecodeCall(data []byte) (MethodCall, error) {
	var call MethodCall
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&call); err != nil {
		return MethodCall{}, fmt.Errorf("decode call: %w", err)
	}
	if call.Method == "" {
		return call, ErrMissingMethod
	}
	return call, nil
}

func (JSONCodec) EncodeResponse(resp Response) ([]byte, error) {
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return data, nil
}
