package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	lokiPushPath         = "/loki/api/v1/push"
	defaultLokiBatchSize = 100
	defaultLokiInterval  = time.Second
	defaultLokiTimeout   = 5 * time.Second
	lokiBufferSize       = 1024
)

var errPushRejected = errors.New("loki rejected push")

// LokiConfig configures pushing log entries to a Loki server.
type LokiConfig struct {
	Host     string
	Username string
	Password string
	// Tags are attached to every stream alongside the entry level.
	Tags map[string]string

	BatchSize     int
	FlushInterval time.Duration
	Client        *http.Client
	// OnError receives push failures. Defaults to printing on stderr.
	OnError func(error)
}

// LokiHook is a logrus hook batching entries to Loki's push API. It never
// blocks logging: entries beyond the buffer are dropped and push errors are
// reported through OnError only.
type LokiHook struct {
	cfg       LokiConfig
	url       string
	formatter logrus.Formatter

	entries chan lokiEntry
	done    chan struct{}
	closed  atomic.Bool
	dropped atomic.Int64

	closeOnce sync.Once
	wg        sync.WaitGroup
}

type lokiEntry struct {
	level string
	ts    time.Time
	line  string
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][2]string       `json:"values"`
}

type lokiPush struct {
	Streams []lokiStream `json:"streams"`
}

// NewLokiHook creates the hook and starts its flush loop.
func NewLokiHook(cfg LokiConfig) *LokiHook {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultLokiBatchSize
	}

	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultLokiInterval
	}

	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: defaultLokiTimeout}
	}

	if cfg.OnError == nil {
		cfg.OnError = func(err error) {
			fmt.Fprintf(os.Stderr, "loki: %v\n", err)
		}
	}

	h := &LokiHook{
		cfg:       cfg,
		url:       strings.TrimRight(cfg.Host, "/") + lokiPushPath,
		formatter: &logrus.JSONFormatter{},
		entries:   make(chan lokiEntry, lokiBufferSize),
		done:      make(chan struct{}),
	}

	h.wg.Add(1)

	go h.run()

	return h
}

// Levels implements logrus.Hook.
func (h *LokiHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook.
func (h *LokiHook) Fire(entry *logrus.Entry) error {
	if h.closed.Load() {
		return nil
	}

	line, err := h.formatter.Format(entry)
	if err != nil {
		h.dropped.Add(1)

		return nil
	}

	select {
	case h.entries <- lokiEntry{level: entry.Level.String(), ts: entry.Time, line: strings.TrimRight(string(line), "\n")}:
	default:
		h.dropped.Add(1)
	}

	return nil
}

// Dropped returns the number of entries that were never queued.
func (h *LokiHook) Dropped() int64 {
	return h.dropped.Load()
}

// Close stops accepting entries and flushes what is queued.
func (h *LokiHook) Close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		close(h.done)
		h.wg.Wait()
	})

	return nil
}

func (h *LokiHook) run() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]lokiEntry, 0, h.cfg.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}

		if err := h.push(batch); err != nil {
			h.cfg.OnError(err)
		}

		batch = batch[:0]
	}

	for {
		select {
		case e := <-h.entries:
			batch = append(batch, e)
			if len(batch) >= h.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-h.done:
			for {
				select {
				case e := <-h.entries:
					batch = append(batch, e)
				default:
					flush()

					return
				}
			}
		}
	}
}

func (h *LokiHook) push(batch []lokiEntry) error {
	byLevel := make(map[string]*lokiStream)
	order := make([]string, 0, 4)

	for _, e := range batch {
		stream, ok := byLevel[e.level]
		if !ok {
			labels := make(map[string]string, len(h.cfg.Tags)+1)
			for k, v := range h.cfg.Tags {
				labels[k] = v
			}

			labels["level"] = e.level

			stream = &lokiStream{Stream: labels}
			byLevel[e.level] = stream
			order = append(order, e.level)
		}

		stream.Values = append(stream.Values, [2]string{strconv.FormatInt(e.ts.UnixNano(), 10), e.line})
	}

	payload := lokiPush{Streams: make([]lokiStream, 0, len(order))}
	for _, level := range order {
		payload.Streams = append(payload.Streams, *byLevel[level])
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding push: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultLokiTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building push request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	if h.cfg.Username != "" {
		req.SetBasicAuth(h.cfg.Username, h.cfg.Password)
	}

	resp, err := h.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("pushing %d entries: %w", len(batch), err)
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", errPushRejected, resp.Status)
	}

	return nil
}

// Compile-time interface compliance check
var _ logrus.Hook = (*LokiHook)(nil)
