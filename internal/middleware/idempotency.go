package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"
)

// IdempotencyStore caches responses by Idempotency-Key so that retried
// trigger requests replay the original outcome instead of running the
// pipeline twice. Concurrent duplicates block until the first request
// finishes and then replay its response.
type IdempotencyStore struct {
	mu      sync.Mutex
	results map[string]*idempotencyResult
	ttl     time.Duration
	stopCh  chan struct{}
}

type idempotencyResult struct {
	status    int
	header    http.Header
	body      []byte
	expiresOn time.Time
	done      chan struct{} // closed once the leader's response is recorded
}

func (res *idempotencyResult) settled() bool {
	select {
	case <-res.done:
		return true
	default:
		return false
	}
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long replays stay available (default 24h)
	Cleanup time.Duration // Expired entry sweep interval (default 1h)
}

// NewIdempotencyStore creates an idempotency store and starts its sweeper
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}

	store := &IdempotencyStore{
		results: make(map[string]*idempotencyResult),
		ttl:     cfg.TTL,
		stopCh:  make(chan struct{}),
	}

	go store.sweep(cfg.Cleanup)

	return store
}

// Stop terminates the sweeper goroutine
func (s *IdempotencyStore) Stop() {
	close(s.stopCh)
}

func (s *IdempotencyStore) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.dropExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *IdempotencyStore) dropExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for key, res := range s.results {
		if res.settled() && res.expiresOn.Before(now) {
			delete(s.results, key)
		}
	}
}

// begin returns the existing result for key, or registers the caller as the
// leader for it. leader is true when the caller must execute the request and
// record the outcome via finish.
func (s *IdempotencyStore) begin(key string) (res *idempotencyResult, leader bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.results[key]; ok {
		if !existing.settled() || existing.expiresOn.After(time.Now()) {
			return existing, false
		}
		// Expired between sweeps; this caller takes over the key
	}

	res = &idempotencyResult{done: make(chan struct{})}
	s.results[key] = res
	return res, true
}

// finish records the leader's response and releases any waiting duplicates
func (s *IdempotencyStore) finish(res *idempotencyResult, status int, header http.Header, body []byte) {
	s.mu.Lock()
	res.status = status
	res.header = header.Clone()
	res.body = body
	res.expiresOn = time.Now().Add(s.ttl)
	s.mu.Unlock()
	close(res.done)
}

// fingerprint binds the caller's key to the exact request it was first used
// with, so reusing a key with a different body yields a distinct entry rather
// than a bogus replay
func fingerprint(caller, idempotencyKey, method, path string, body []byte) string {
	h := sha256.New()
	for _, part := range []string{caller, idempotencyKey, method, path} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// replayRecorder captures the leader's response while streaming it through
type replayRecorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rec *replayRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (rec *replayRecorder) Write(b []byte) (int, error) {
	rec.body.Write(b)
	return rec.ResponseWriter.Write(b)
}

func writeReplay(w http.ResponseWriter, res *idempotencyResult) {
	for name, values := range res.header {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}
	w.Header().Set("X-Idempotency-Replayed", "true")
	w.WriteHeader(res.status)
	_, _ = w.Write(res.body)
}

// Idempotency returns middleware that deduplicates mutating requests carrying
// an Idempotency-Key header. Requests without the header pass through.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost && r.Method != http.MethodPatch {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := r.Header.Get("Idempotency-Key")
			if idempotencyKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := fingerprint(ClientKey(r), idempotencyKey, r.Method, r.URL.Path, body)

			res, leader := store.begin(key)
			if !leader {
				<-res.done
				writeReplay(w, res)
				return
			}

			rec := &replayRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			store.finish(res, rec.status, rec.Header(), rec.body.Bytes())
		})
	}
}
