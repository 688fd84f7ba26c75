package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	appLog "datetimeday/internal/log"
)

// frame is one message read from the stream, remembering how it was framed
// so the reply can use the same framing.
type frame struct {
	body   []byte
	framed bool
}

// ServeStdio reads messages from r and writes replies to w until r reaches
// EOF or ctx is cancelled. Messages are either newline-delimited JSON or
// Content-Length framed.
//
// Returning cancels the reader goroutine's pending hand-off. A goroutine still
// blocked inside r.Read exits once that read returns.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type readResult struct {
		f   frame
		err error
	}
	frames := make(chan readResult)
	go func() {
		reader := bufio.NewReader(r)
		for {
			f, err := readMessage(reader)
			select {
			case frames <- readResult{f: f, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	appLog.Info("mcp stdio transport ready")
	for {
		select {
		case <-ctx.Done():
			return nil
		case res := <-frames:
			if res.err != nil {
				if errors.Is(res.err, io.EOF) {
					appLog.Info("stdin closed, stopping mcp transport")
					return nil
				}
				return fmt.Errorf("read message: %w", res.err)
			}
			reply, ok := s.Handle(ctx, res.f.body)
			if !ok {
				continue
			}
			if err := writeMessage(w, reply, res.f.framed); err != nil {
				return fmt.Errorf("write reply: %w", err)
			}
		}
	}
}

// readMessage returns the next non-blank message. A line that starts with a
// Content-Length header begins a framed message.
func readMessage(reader *bufio.Reader) (frame, error) {
	for {
		line, err := reader.ReadString('\n')
		trimmed := strings.TrimSpace(line)
		if err != nil {
			if errors.Is(err, io.EOF) && trimmed != "" {
				return frame{body: []byte(trimmed)}, nil
			}
			return frame{}, err
		}
		if trimmed == "" {
			continue
		}
		if isHeaderLine(trimmed) {
			body, err := readFramedBody(reader, trimmed)
			if err != nil {
				return frame{}, err
			}
			return frame{body: body, framed: true}, nil
		}
		return frame{body: []byte(trimmed)}, nil
	}
}

func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	return strings.HasPrefix(lower, "content-length:") || strings.HasPrefix(lower, "content-type:")
}

// readFramedBody consumes the remaining headers up to the blank separator
// line and then exactly Content-Length bytes.
func readFramedBody(reader *bufio.Reader, first string) ([]byte, error) {
	length := -1
	line := first
	for {
		if after, ok := strings.CutPrefix(strings.ToLower(line), "content-length:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(after))
			if err != nil || n < 0 {
				return nil, fmt.Errorf("invalid content-length %q", strings.TrimSpace(after))
			}
			length = n
		}

		next, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(next, "\r\n")
		if line == "" {
			break
		}
	}
	if length < 0 {
		return nil, errors.New("content-length header missing")
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func writeMessage(w io.Writer, body []byte, framed bool) error {
	if framed {
		if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
			return err
		}
		_, err := w.Write(body)
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
