package httpserver

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"

	"github.com/tombowditch/ptpb/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv := httptest.NewServer(NewHandler(store.NewMemory(), "", logger))
	t.Cleanup(srv.Close)
	return srv
}

func multipartBody(t *testing.T, fields map[string]string) (string, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if k == "c" {
			part, err := mw.CreateFormFile("c", "paste.txt")
			require.NoError(t, err)
			_, err = part.Write([]byte(v))
			require.NoError(t, err)
			continue
		}
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return mw.FormDataContentType(), &buf
}

func send(t *testing.T, method, url string, fields map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var body io.Reader
	contentType := ""
	if fields != nil {
		contentType, body = multipartBody(t, fields)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestCreateGetUpdateDelete(t *testing.T) {
	srv := newTestServer(t)

	status, meta := send(t, http.MethodPost, srv.URL+"/", map[string]string{"c": "hello"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "created", meta["status"])
	assert.Equal(t, 5, meta["size"])
	url := meta["url"].(string)
	uuid := meta["uuid"].(string)
	require.True(t, strings.HasPrefix(url, srv.URL+"/"))

	status, body := get(t, url)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "hello", body)

	status, meta = send(t, http.MethodPut, srv.URL+"/"+uuid, map[string]string{"c": "bye"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "updated", meta["status"])

	_, body = get(t, url)
	assert.Equal(t, "bye", body)

	status, meta = send(t, http.MethodDelete, srv.URL+"/"+uuid, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "deleted", meta["status"])

	status, body = get(t, url)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "status: not found\n", body)

	status, meta = send(t, http.MethodDelete, srv.URL+"/"+uuid, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not found", meta["status"])
}

func TestCreateLabel(t *testing.T) {
	srv := newTestServer(t)

	status, meta := send(t, http.MethodPost, srv.URL+"/~notes", map[string]string{"c": "vanity"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, srv.URL+"/~notes", meta["url"])

	_, body := get(t, srv.URL+"/~notes")
	assert.Equal(t, "vanity", body)

	status, meta = send(t, http.MethodPost, srv.URL+"/~notes", map[string]string{"c": "again"})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already exists", meta["status"])

	status, _ = send(t, http.MethodPost, srv.URL+"/notes", map[string]string{"c": "x"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreatePrivateSunset(t *testing.T) {
	srv := newTestServer(t)

	status, meta := send(t, http.MethodPost, srv.URL+"/", map[string]string{"c": "secret", "p": "1", "sunset": "60"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, srv.URL+"/"+meta["long"].(string), meta["url"])
	require.Contains(t, meta, "sunset")

	sunset, err := time.Parse(time.RFC3339, meta["sunset"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), sunset, 5*time.Second)
}

func TestCreateRejectsBadForms(t *testing.T) {
	srv := newTestServer(t)

	status, meta := send(t, http.MethodPost, srv.URL+"/", map[string]string{"p": "1"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "empty body", meta["status"])

	status, meta = send(t, http.MethodPost, srv.URL+"/", map[string]string{"c": "x", "sunset": "later"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid sunset", meta["status"])

	status, meta = send(t, http.MethodPut, srv.URL+"/nope", map[string]string{"c": "x"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not found", meta["status"])
}

func TestCreateURLEncoded(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.PostForm(srv.URL+"/", map[string][]string{"c": {"plain form"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	meta := map[string]interface{}{}
	require.NoError(t, yaml.Unmarshal(raw, &meta))
	_, body := get(t, meta["url"].(string))
	assert.Equal(t, "plain form", body)
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t)
	status, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "commandline pastebin")
}

// countingLimiter allows the first n writes per key.
type countingLimiter struct {
	mu   sync.Mutex
	n    int
	seen map[string]int
}

func (l *countingLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[key]++
	return l.seen[key] <= l.n
}

func TestWriteRateLimit(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	limiter := &countingLimiter{n: 1, seen: map[string]int{}}
	srv := httptest.NewServer(NewHandler(store.NewMemory(), "", logger, WithLimiter(limiter)))
	t.Cleanup(srv.Close)

	status, meta := send(t, http.MethodPost, srv.URL+"/", map[string]string{"c": "first"})
	require.Equal(t, http.StatusOK, status)
	url := meta["url"].(string)
	uuid := meta["uuid"].(string)

	status, meta = send(t, http.MethodPost, srv.URL+"/", map[string]string{"c": "second"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "rate limit exceeded", meta["status"])

	status, meta = send(t, http.MethodPut, srv.URL+"/"+uuid, map[string]string{"c": "changed"})
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "rate limit exceeded", meta["status"])

	// Reads and deletes are not limited.
	status, body := get(t, url)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "first", body)

	status, meta = send(t, http.MethodDelete, srv.URL+"/"+uuid, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "deleted", meta["status"])

	assert.Equal(t, 3, limiter.seen["127.0.0.1"])
}
