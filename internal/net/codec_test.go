package net

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{0x01, 0xAA, 0xBB, 0xCC}

	require.NoError(t, WriteFrame(&buf, payload))
	assert.Equal(t, []byte{6, 0}, buf.Bytes()[:2], "length header is LE total length")

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameRejectsBadLength(t *testing.T) {
	// Total length 2 means an empty payload, which is never valid.
	_, err := ReadFrame(bytes.NewReader([]byte{2, 0}))
	assert.Error(t, err)

	_, err = ReadFrame(bytes.NewReader([]byte{0, 0}))
	assert.Error(t, err)
}

func TestReadFrameShortPayload(t *testing.T) {
	// Header promises 8 payload bytes, stream carries 2.
	_, err := ReadFrame(bytes.NewReader([]byte{10, 0, 0xAA, 0xBB}))
	assert.Error(t, err)
}
