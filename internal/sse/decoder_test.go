package sse

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoder_SplitLine(t *testing.T) {
	d := NewDecoder()

	frames := d.Feed([]byte(`data: {"typ`))
	assert.Empty(t, frames)
	assert.Equal(t, len(`data: {"typ`), d.Buffered())

	frames = d.Feed([]byte("e\":\"message_stop\"}\n"))
	require.Len(t, frames, 1)
	assert.Equal(t, `{"type":"message_stop"}`, string(frames[0].Data))
	assert.False(t, frames[0].Done)
	assert.Zero(t, d.Buffered())
}

func TestDecoder_FiltersBlankAndComments(t *testing.T) {
	d := NewDecoder()
	input := ": keep-alive\n\n   \nevent: message_start\nid: 7\ndata: {\"type\":\"message_start\"}\n\n"

	frames := d.Feed([]byte(input))
	require.Len(t, frames, 1)
	assert.Equal(t, `{"type":"message_start"}`, string(frames[0].Data))
}

func TestDecoder_DoneSentinel(t *testing.T) {
	d := NewDecoder()
	frames := d.Feed([]byte("data: [DONE]\n"))
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Done)
	assert.Nil(t, frames[0].Data)
}

func TestDecoder_TrimsWhitespaceAndCRLF(t *testing.T) {
	d := NewDecoder()
	frames := d.Feed([]byte("  data:{\"a\":1}  \r\ndata:   [DONE]\r\n"))
	require.Len(t, frames, 2)
	assert.Equal(t, `{"a":1}`, string(frames[0].Data))
	assert.True(t, frames[1].Done)
}

func TestDecoder_ByteAtATime(t *testing.T) {
	input := "data: {\"type\":\"a\"}\n\ndata: {\"type\":\"b\"}\ndata: [DONE]\n"
	d := NewDecoder()

	var frames []Frame
	for i := 0; i < len(input); i++ {
		frames = append(frames, d.Feed([]byte{input[i]})...)
	}

	require.Len(t, frames, 3)
	assert.Equal(t, `{"type":"a"}`, string(frames[0].Data))
	assert.Equal(t, `{"type":"b"}`, string(frames[1].Data))
	assert.True(t, frames[2].Done)
}

func TestDecoder_FrameDataIsStable(t *testing.T) {
	d := NewDecoder()
	frames := d.Feed([]byte("data: first\ndata: sec"))
	require.Len(t, frames, 1)

	d.Feed([]byte("ond\n"))
	assert.Equal(t, "first", string(frames[0].Data))
}

func TestDecoder_Flush(t *testing.T) {
	d := NewDecoder()
	assert.Empty(t, d.Feed([]byte(`data: {"type":"message_stop"}`)))

	frames := d.Flush()
	require.Len(t, frames, 1)
	assert.Equal(t, `{"type":"message_stop"}`, string(frames[0].Data))
	assert.Empty(t, d.Flush())
}

func TestDecoder_FlushIgnoresComment(t *testing.T) {
	d := NewDecoder()
	d.Feed([]byte(": trailing comment"))
	assert.Empty(t, d.Flush())
}

func TestReader_Frames(t *testing.T) {
	body := "data: {\"type\":\"message_start\"}\n\ndata: {\"type\":\"message_stop\"}\n\ndata: [DONE]\n\n"
	r := NewReader(iotest.OneByteReader(strings.NewReader(body)))

	var frames []Frame
	for {
		f, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		frames = append(frames, f)
	}

	require.Len(t, frames, 3)
	assert.Equal(t, `{"type":"message_start"}`, string(frames[0].Data))
	assert.Equal(t, `{"type":"message_stop"}`, string(frames[1].Data))
	assert.True(t, frames[2].Done)
}

func TestReader_UnterminatedLastLine(t *testing.T) {
	r := NewReader(strings.NewReader("data: {\"type\":\"message_stop\"}"))

	f, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"type":"message_stop"}`, string(f.Data))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_ErrorAfterData(t *testing.T) {
	boom := errors.New("connection reset")
	src := io.MultiReader(strings.NewReader("data: {\"a\":1}\n"), iotest.ErrReader(boom))
	r := NewReader(src)

	f, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(f.Data))

	_, err = r.Next()
	assert.ErrorIs(t, err, boom)

	_, err = r.Next()
	assert.ErrorIs(t, err, boom)
}
