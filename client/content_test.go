package client

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestBytesContent(t *testing.T) {
	c := Bytes([]byte("abc"))
	assert.Equal(t, KindBytes, c.Kind())
	assert.EqualValues(t, 3, c.Len())

	// Buffers can be read more than once.
	for i := 0; i < 2; i++ {
		data, err := io.ReadAll(c.Reader())
		require.NoError(t, err)
		assert.Equal(t, "abc", string(data))
	}
	assert.NoError(t, c.Close())
}

func TestStreamContent(t *testing.T) {
	r := &closeTracker{Reader: strings.NewReader("abc")}
	c := Stream(r, "a.txt")
	assert.Equal(t, KindStream, c.Kind())
	assert.EqualValues(t, -1, c.Len())
	assert.Equal(t, "a.txt", c.Name())

	data, err := io.ReadAll(c.Reader())
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	require.NoError(t, c.Close())
	assert.True(t, r.closed)
}

func TestMetadataOrderAndOutput(t *testing.T) {
	m, err := decodeMetadata([]byte("url: http://pb.test/x\nsize: 5\nprivate: true\nsunset: null\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"url", "size", "private", "sunset"}, m.Keys())
	assert.Equal(t, "5", m.GetString("size"))
	assert.Equal(t, "true", m.GetString("private"))
	assert.Equal(t, "", m.GetString("sunset"))
	assert.Equal(t, "", m.GetString("missing"))

	v, ok := m.Get("size")
	require.True(t, ok)
	assert.Equal(t, 5, v)

	out, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "url: http://pb.test/x\nsize: 5\nprivate: true\nsunset: null\n", string(out))

	out, err = Metadata{}.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestMetadataScalarOutput(t *testing.T) {
	m, err := decodeMetadata([]byte("Not Found\n"))
	require.NoError(t, err)
	assert.Equal(t, "Not Found", m.Value)

	out, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "Not Found\n", string(out))

	m, err = decodeMetadata([]byte("status: ok\n"))
	require.NoError(t, err)
	assert.True(t, m.IsMapping())
	assert.Nil(t, m.Value)
}
