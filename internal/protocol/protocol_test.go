package protocol

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	written   bytes.Buffer
	responses [][]byte
	readErr   error
	writeErr  error
}

func (f *fakeStream) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return f.written.Write(p)
}

func (f *fakeStream) ReadUntil(_ byte) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	if len(f.responses) == 0 {
		return nil, ErrTimeout
	}
	line := f.responses[0]
	f.responses = f.responses[1:]
	return line, nil
}

func newTestConn(s Stream) *Conn {
	return NewConn(s, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func TestEncode(t *testing.T) {
	tests := []struct {
		op   Opcode
		n    uint32
		want string
	}{
		{OpSelectRegister, 6, "CA6\n"},
		{OpWriteRegister, 0, "CW0\n"},
		{OpMasterIntensity, 15, "CG15\n"},
		{OpReadRegister, 11, "Cr11\n"},
		{OpLevel, 255, "EL255\n"},
		{OpWriteRegister, 4294967295, "CW4294967295\n"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(Encode(tt.op, tt.n)))
	}
}

func TestParseRegisterResponse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want uint32
	}{
		{"prefixed", "reg: 0x41\n", 0x41},
		{"bare hex", "0f: 1f\n", 0x1f},
		{"uppercase", "R:0XFF\r\n", 0xff},
		{"last colon wins", "a:b: 0x2\n", 2},
		{"no newline", "x: 43", 0x43},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRegisterResponse([]byte(tt.line))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRegisterResponseErrors(t *testing.T) {
	for _, line := range []string{"0x41\n", "reg:\n", "reg: zz\n", "", "reg: 0x\n"} {
		_, err := ParseRegisterResponse([]byte(line))
		assert.Truef(t, IsProtocol(err), "line %q: want protocol error, got %v", line, err)
	}
}

func TestWriteRegisterIssuesTwoCommands(t *testing.T) {
	s := &fakeStream{}
	c := newTestConn(s)

	require.NoError(t, c.WriteRegister(0x02, 31))
	require.NoError(t, c.WriteRegister(0x03, 10))

	assert.Equal(t, "CA2\nCW31\nCA3\nCW10\n", s.written.String())
}

func TestReadRegister(t *testing.T) {
	s := &fakeStream{responses: [][]byte{[]byte("reg: 0x41\n")}}
	c := newTestConn(s)

	v, err := c.ReadRegister(0x0b)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x41), v)
	assert.Equal(t, "Cr11\n", s.written.String())
}

func TestReadRegisterMalformed(t *testing.T) {
	s := &fakeStream{responses: [][]byte{[]byte("garbage\n")}}
	c := newTestConn(s)

	_, err := c.ReadRegister(0x0b)
	assert.True(t, IsProtocol(err))
}

func TestReadRegisterTimeoutIsProtocolError(t *testing.T) {
	c := newTestConn(&fakeStream{})

	_, err := c.ReadRegister(1)
	assert.True(t, IsProtocol(err))
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestTransportFailuresAreStreamErrors(t *testing.T) {
	broken := errors.New("device disconnected")

	c := newTestConn(&fakeStream{writeErr: broken})
	err := c.WriteRegister(1, 1)
	assert.True(t, IsStream(err))
	assert.ErrorIs(t, err, broken)

	c = newTestConn(&fakeStream{readErr: io.EOF})
	_, err = c.ReadRegister(1)
	assert.True(t, IsStream(err))
}

func TestChannelAndMasterCommands(t *testing.T) {
	s := &fakeStream{}
	c := newTestConn(s)

	require.NoError(t, c.SetChannelIntensity(14, 7))
	require.NoError(t, c.SetMasterIntensity(15))
	require.NoError(t, c.SetLevel(3))

	assert.Equal(t, "CL14\nCI7\nCG15\nEL3\n", s.written.String())
}

func TestRaw(t *testing.T) {
	s := &fakeStream{responses: [][]byte{[]byte("reg: 0x2\r\n")}}
	c := newTestConn(s)

	resp, err := c.Raw("  CG5 ")
	require.NoError(t, err)
	assert.Empty(t, resp)

	resp, err = c.Raw("Cr2")
	require.NoError(t, err)
	assert.Equal(t, "reg: 0x2", resp)

	resp, err = c.Raw("")
	require.NoError(t, err)
	assert.Empty(t, resp)

	assert.Equal(t, "CG5\nCr2\n", s.written.String())
}

func TestRawRejectsMiscasedOpcode(t *testing.T) {
	s := &fakeStream{responses: [][]byte{[]byte("reg: 0x41\n")}}
	c := newTestConn(s)

	for _, line := range []string{"CR5", "cr5", "ca6", "Cw1"} {
		_, err := c.Raw(line)
		assert.True(t, IsProtocol(err), "line %q", line)
	}
	assert.Empty(t, s.written.String())

	// the queued response still belongs to the next real read
	v, err := c.ReadRegister(0x0f)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x41), v)
}

func TestErrorFormatting(t *testing.T) {
	err := NewRangeError("channel", 16, 0, 15)
	assert.Equal(t, "RANGE_ERROR: channel 16 outside [0,15]", err.Error())
	assert.True(t, err.HasCode(ErrCodeRange))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("plain")))
}
