package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleAndFile(t *testing.T) {
	t.Parallel()

	var (
		console bytes.Buffer
		path    = filepath.Join(t.TempDir(), "logs", "results.log")
	)

	log, err := New(Options{
		Level:         "debug",
		Console:       true,
		ConsoleWriter: &console,
		File:          true,
		FilePath:      path,
	})
	require.NoError(t, err)

	log.WithField("test", "users").Debug("test passed")
	require.NoError(t, log.Close())

	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.Contains(t, console.String(), "test passed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "test=users")
}

func TestNew_InvalidLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
}

type lokiServer struct {
	mu       sync.Mutex
	pushes   []lokiPush
	username string
	password string
}

func (s *lokiServer) handler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var push lokiPush
		if err := json.NewDecoder(r.Body).Decode(&push); err != nil {
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		s.mu.Lock()
		s.pushes = append(s.pushes, push)
		s.username, s.password, _ = r.BasicAuth()
		s.mu.Unlock()

		w.WriteHeader(status)
	}
}

func TestLokiHook_PushesOnClose(t *testing.T) {
	t.Parallel()

	srv := &lokiServer{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, lokiPushPath, r.URL.Path)
		srv.handler(http.StatusNoContent)(w, r)
	}))
	defer ts.Close()

	log, err := New(Options{
		Level: "info",
		Loki: &LokiConfig{
			Host:          ts.URL + "/",
			Username:      "user",
			Password:      "pass",
			Tags:          map[string]string{"application": "query-validator"},
			FlushInterval: time.Hour,
		},
	})
	require.NoError(t, err)

	log.Info("test passed")
	log.Error("test failed")
	log.Debug("filtered by level")
	require.NoError(t, log.Close())

	srv.mu.Lock()
	defer srv.mu.Unlock()

	require.Len(t, srv.pushes, 1)
	assert.Equal(t, "user", srv.username)
	assert.Equal(t, "pass", srv.password)

	streams := srv.pushes[0].Streams
	require.Len(t, streams, 2)
	assert.Equal(t, map[string]string{"application": "query-validator", "level": "info"}, streams[0].Stream)
	assert.Equal(t, "error", streams[1].Stream["level"])
	require.Len(t, streams[0].Values, 1)
	assert.Contains(t, streams[0].Values[0][1], "test passed")
}

func TestLokiHook_BatchSizeTriggersPush(t *testing.T) {
	t.Parallel()

	srv := &lokiServer{}
	ts := httptest.NewServer(srv.handler(http.StatusNoContent))
	defer ts.Close()

	hook := NewLokiHook(LokiConfig{Host: ts.URL, BatchSize: 2, FlushInterval: time.Hour})

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	log.AddHook(hook)

	for i := 0; i < 4; i++ {
		log.Info("entry")
	}

	require.NoError(t, hook.Close())

	srv.mu.Lock()
	defer srv.mu.Unlock()

	total := 0
	for _, push := range srv.pushes {
		for _, stream := range push.Streams {
			total += len(stream.Values)
		}
	}

	assert.Equal(t, 4, total)
	assert.GreaterOrEqual(t, len(srv.pushes), 2)
}

func TestLokiHook_FailuresDoNotPropagate(t *testing.T) {
	t.Parallel()

	srv := &lokiServer{}
	ts := httptest.NewServer(srv.handler(http.StatusInternalServerError))
	defer ts.Close()

	var (
		mu     sync.Mutex
		failed []error
	)

	hook := NewLokiHook(LokiConfig{
		Host: ts.URL,
		OnError: func(err error) {
			mu.Lock()
			defer mu.Unlock()

			failed = append(failed, err)
		},
	})

	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	log.AddHook(hook)

	log.Warn("still logged")
	require.NoError(t, hook.Close())

	// Entries after Close are ignored.
	log.Warn("after close")

	mu.Lock()
	defer mu.Unlock()

	require.Len(t, failed, 1)
	require.ErrorIs(t, failed[0], errPushRejected)
	assert.Zero(t, hook.Dropped())
}
