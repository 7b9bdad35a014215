package paste

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicID(t *testing.T) {
	now := time.Now()

	p := New([]byte("x"), "", false, "", now)
	assert.Equal(t, p.Short, p.PublicID())

	p = New([]byte("x"), "", true, "", now)
	assert.Equal(t, p.Long, p.PublicID())

	p = New([]byte("x"), "", true, "notes", now)
	assert.Equal(t, "~notes", p.PublicID())
	assert.Contains(t, p.IDs(), "~notes")
}

func TestSunset(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New([]byte("x"), "", false, "", now)
	assert.False(t, p.Expired(now.Add(24*time.Hour)))

	p.SetSunset(60, now)
	assert.False(t, p.Expired(now.Add(59*time.Second)))
	assert.True(t, p.Expired(now.Add(60*time.Second)))

	p.SetSunset(0, now)
	assert.True(t, p.ExpiresAt.IsZero())
}

func TestMetadata(t *testing.T) {
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	p := New([]byte("hello"), "", false, "", now)
	m := p.Metadata("http://pb.test/", StatusCreated)

	got := map[string]interface{}{}
	for _, item := range m {
		got[item.Key.(string)] = item.Value
	}
	assert.Equal(t, "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d", got["digest"])
	assert.Equal(t, 5, got["size"])
	assert.Equal(t, StatusCreated, got["status"])
	assert.Equal(t, "http://pb.test/"+p.Short, got["url"])
	assert.Equal(t, p.UUID, got["uuid"])
	assert.NotContains(t, got, "sunset")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate([]byte("ok")))

	err := Validate(nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, err.(*ValidationError).StatusCode)

	err = Validate([]byte(strings.Repeat("a", 5_000_001)))
	require.Error(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, err.(*ValidationError).StatusCode)
}

func TestParseSunset(t *testing.T) {
	n, err := ParseSunset("")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = ParseSunset("3600")
	require.NoError(t, err)
	assert.EqualValues(t, 3600, n)

	_, err = ParseSunset("soon")
	assert.Error(t, err)
	_, err = ParseSunset("-5")
	assert.Error(t, err)
}
