package channel

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
)

// maxMessageSize 单条消息上限
const maxMessageSize = 1 << 20

// frame 读取到的一行；超长行只保留标记，不保留内容
type frame struct {
	line    []byte
	tooLong bool
	err     error
}

// Serve reads one call per line from r and writes one response per line to w, in order,
// until r is exhausted or ctx is done. Calls are handled synchronously.
// Malformed or oversized lines are answered with a "bad_request" error response.
//
// Reading happens on a separate goroutine so an idle r does not delay cancellation.
// That goroutine exits once r returns from its pending Read.
func (c *Channel) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	done := make(chan struct{})
	defer close(done)
	frames := readFrames(r, maxMessageSize, done)
	bw := bufio.NewWriter(w)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if f.err != nil {
				return fmt.Errorf("read call: %w", f.err)
			}
			if err := c.serveFrame(ctx, f, bw); err != nil {
				return err
			}
		}
	}
}

func (c *Channel) serveFrame(ctx context.Context, f frame, bw *bufio.Writer) error {
	var resp Response
	var call MethodCall
	if f.tooLong {
		c.log.Warn().Int("limit", maxMessageSize).Msg("oversized call discarded")
		resp = Response{Error: &ErrorDetail{Code: CodeBadRequest, Message: fmt.Sprintf("message exceeds %d bytes", maxMessageSize)}}
	} else {
		var err error
		call, err = c.codec.DecodeCall(f.line)
		if err != nil {
			c.log.Warn().Err(err).Msg("malformed call")
			resp = Response{ID: call.ID, Error: &ErrorDetail{Code: CodeBadRequest, Message: err.Error()}}
		} else {
			resp = c.Dispatch(ctx, call)
		}
	}

	out, err := c.codec.EncodeResponse(resp)
	if err != nil {
		c.log.Error().Err(err).Str("method", call.Method).Msg("response not encodable")
		out, err = c.codec.EncodeResponse(Response{ID: resp.ID, Error: &ErrorDetail{Code: CodeEncode, Message: err.Error()}})
		if err != nil {
			return err
		}
	}
	if _, err := bw.Write(out); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if err := bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush response: %w", err)
	}
	return nil
}

// readFrames 逐行读取 r，空行跳过；通道在 EOF、读错误或 done 关闭后关闭
func readFrames(r io.Reader, limit int, done <-chan struct{}) <-chan frame {
	frames := make(chan frame)
	go func() {
		defer close(frames)
		br := bufio.NewReaderSize(r, 64*1024)
		send := func(f frame) bool {
			select {
			case frames <- f:
				return true
			case <-done:
				return false
			}
		}
		for {
			line, tooLong, err := readLine(br, limit)
			if tooLong || len(line) > 0 {
				if !send(frame{line: line, tooLong: tooLong}) {
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					send(frame{err: err})
				}
				return
			}
		}
	}()
	return frames
}

// readLine 读取一行并去除首尾空白。超过 limit 的行被整行丢弃并返回 tooLong，
// 后续行不受影响。
func readLine(br *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	tooLong := false
	for {
		frag, err := br.ReadSlice('\n')
		if !tooLong {
			line = append(line, frag...)
			// 为换行符 / CRLF 留出余量
			if len(line) > limit+2 {
				tooLong = true
				line = nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if tooLong {
			return nil, true, err
		}
		line = bytes.TrimSpace(line)
		if len(line) > limit {
			return nil, true, err
		}
		return line, false, err
	}
}
