package sse

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEvent(t *testing.T) {
	r := NewReader(strings.NewReader("data: {\"a\":1}\n\ndata: {\"b\":2}\n\n"))

	event, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(event))

	event, err = r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(event))

	_, err = r.ReadEvent()
	assert.Equal(t, io.EOF, err)
}

func TestReadEventMultilineData(t *testing.T) {
	r := NewReader(strings.NewReader("data: line one\ndata: line two\n\n"))

	event, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", string(event))
}

func TestReadEventIgnoresNonDataFields(t *testing.T) {
	r := NewReader(strings.NewReader(": comment\nid: 42\nretry: 1000\ndata: payload\n\n"))

	event, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(event))
}

func TestReadEventCRLF(t *testing.T) {
	r := NewReader(strings.NewReader("data: payload\r\n\r\n"))

	event, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(event))
}

func TestReadEventTrailingUnterminated(t *testing.T) {
	r := NewReader(strings.NewReader("data: last"))

	event, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "last", string(event))

	_, err = r.ReadEvent()
	assert.Equal(t, io.EOF, err)
}

func TestReadEventTrailingUnterminatedJoinsPriorLines(t *testing.T) {
	r := NewReader(strings.NewReader("data: one\ndata: two"))

	event, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo", string(event))

	_, err = r.ReadEvent()
	assert.Equal(t, io.EOF, err)
}

func TestReadEventTrailingNonDataLine(t *testing.T) {
	r := NewReader(strings.NewReader("id: 42"))

	_, err := r.ReadEvent()
	assert.Equal(t, io.EOF, err)
}

func TestReadEventSkipsLeadingBlankLines(t *testing.T) {
	r := NewReader(strings.NewReader("\n\ndata: payload\n\n"))

	event, err := r.ReadEvent()
	require.NoError(t, err)
	assert.Equal(t, "payload", string(event))
}
