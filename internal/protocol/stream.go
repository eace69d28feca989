package protocol

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// Stream is the duplex byte channel the chip is reached through. The caller
// owns its lifecycle; the protocol layer only writes commands and reads
// response lines.
type Stream interface {
	Write(p []byte) (int, error)
	// ReadUntil blocks until delim is received and returns the bytes read,
	// delimiter included. It returns ErrTimeout when the transport's read
	// deadline expires first.
	ReadUntil(delim byte) ([]byte, error)
}

// lineStream adapts an io.ReadWriter to Stream.
type lineStream struct {
	rw      io.ReadWriter
	pending []byte
	buf     [256]byte
}

// NewLineStream wraps rw as a Stream. A Read returning (0, nil) is treated as
// an expired read timeout, matching serial drivers that report timeouts that way.
func NewLineStream(rw io.ReadWriter) Stream {
	return &lineStream{rw: rw}
}

func (s *lineStream) Write(p []byte) (int, error) {
	return s.rw.Write(p)
}

func (s *lineStream) ReadUntil(delim byte) ([]byte, error) {
	for {
		if i := bytes.IndexByte(s.pending, delim); i >= 0 {
			line := make([]byte, i+1)
			copy(line, s.pending[:i+1])
			s.pending = s.pending[i+1:]
			return line, nil
		}

		n, err := s.rw.Read(s.buf[:])
		s.pending = append(s.pending, s.buf[:n]...)
		if bytes.IndexByte(s.buf[:n], delim) >= 0 {
			continue
		}

		switch {
		case err == nil && n > 0:
			continue
		case err == nil, errors.Is(err, os.ErrDeadlineExceeded):
			// partial lines are dropped so they cannot prefix the next response
			partial := s.pending
			s.pending = nil
			return partial, ErrTimeout
		default:
			partial := s.pending
			s.pending = nil
			return partial, err
		}
	}
}
