package nfc

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const ndefLinePrefix = "ndef:"

type lineResult struct {
	line string
	err  error
}

// LineReader reads cards from a line-oriented source such as a USB
// keyboard-wedge reader or a serial device. Each line is one card: a hex
// UID, or "ndef:<text>" for a text-record payload.
type LineReader struct {
	src   io.Reader
	once  sync.Once
	lines chan lineResult

	mu     sync.Mutex
	cancel chan struct{}
}

func NewLineReader(src io.Reader) *LineReader {
	return &LineReader{
		src:   src,
		lines: make(chan lineResult),
	}
}

// OpenDevice returns the reader configured by path: "-" reads stdin, an
// empty path means no NFC hardware.
func OpenDevice(path string) (Reader, io.Closer, error) {
	switch path {
	case "":
		return Unavailable{}, io.NopCloser(nil), nil
	case "-":
		return NewLineReader(os.Stdin), io.NopCloser(nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open nfc device: %w", err)
	}
	return NewLineReader(f), f, nil
}

func (r *LineReader) IsSupported(context.Context) (bool, error) { return true, nil }
func (r *LineReader) IsEnabled(context.Context) (bool, error)   { return true, nil }

func (r *LineReader) Start(context.Context) error {
	r.once.Do(func() { go r.pump() })
	return nil
}

func (r *LineReader) RequestTag(ctx context.Context) (Tag, error) {
	_ = r.Start(ctx)

	cancel := make(chan struct{})
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	select {
	case res, ok := <-r.lines:
		if !ok {
			return Tag{}, NewError(KindReadFailure, io.EOF)
		}
		if res.err != nil {
			return Tag{}, NewError(KindReadFailure, res.err)
		}
		return parseLine(res.line)
	case <-cancel:
		return Tag{}, NewError(KindCancelled, nil)
	case <-ctx.Done():
		return Tag{}, ctx.Err()
	}
}

func (r *LineReader) CancelRequest() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		close(r.cancel)
		r.cancel = nil
	}
	return nil
}

func (r *LineReader) pump() {
	defer close(r.lines)
	scanner := bufio.NewScanner(r.src)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		r.lines <- lineResult{line: line}
	}
	if err := scanner.Err(); err != nil {
		r.lines <- lineResult{err: err}
	}
}

func parseLine(line string) (Tag, error) {
	if len(line) >= len(ndefLinePrefix) && strings.EqualFold(line[:len(ndefLinePrefix)], ndefLinePrefix) {
		payload := textRecordPrefix + strings.TrimSpace(line[len(ndefLinePrefix):])
		return Tag{NdefMessage: []NdefRecord{{TNF: 0x01, Type: []byte("T"), Payload: []byte(payload)}}}, nil
	}

	uid := strings.NewReplacer(":", "", " ", "", "-", "").Replace(line)
	id, err := hex.DecodeString(uid)
	if err != nil {
		return Tag{}, NewError(KindReadFailure, fmt.Errorf("invalid card line %q: %w", line, err))
	}
	return Tag{ID: id}, nil
}
