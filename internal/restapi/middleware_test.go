package restapi

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressionMiddleware(t *testing.T) {
	largeResponse := strings.Repeat(`{"vehicle": "bus"}`, 1000)
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(largeResponse))
	})

	t.Run("compresses response when gzip accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(testHandler).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))

		reader, err := gzip.NewReader(bytes.NewReader(recorder.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = reader.Close() }()

		decompressed, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, largeResponse, string(decompressed))
		assert.Less(t, recorder.Body.Len(), len(largeResponse))
	})

	t.Run("does not compress when gzip not accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		recorder := httptest.NewRecorder()

		CompressionMiddleware(testHandler).ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, largeResponse, recorder.Body.String())
	})

	t.Run("small responses stay uncompressed", func(t *testing.T) {
		small := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(small).ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
	})

	t.Run("other media types stay uncompressed", func(t *testing.T) {
		tile := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte(largeResponse))
		})
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		CompressionMiddleware(tile).ServeHTTP(recorder, req)

		assert.Empty(t, recorder.Header().Get("Content-Encoding"))
		assert.Equal(t, largeResponse, recorder.Body.String())
	})
}

func TestSecurityHeaders(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := securityHeaders(next)

	t.Run("sets headers", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
		assert.NotEmpty(t, recorder.Header().Get("Content-Security-Policy"))
		assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight allows session mutations", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/where/session.json", nil)
		req.Header.Set("Origin", "https://map.example.com")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
		methods := recorder.Header().Get("Access-Control-Allow-Methods")
		assert.Contains(t, methods, "POST")
		assert.Contains(t, methods, "DELETE")
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		rl := NewRateLimitMiddleware(5, time.Second)
		defer rl.Stop()
		handler := rl.Handler(okHandler())

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?key=test-api-key", nil))
			assert.Equal(t, http.StatusOK, w.Code, "request %d should be allowed", i+1)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		rl := NewRateLimitMiddleware(3, time.Second)
		defer rl.Stop()
		handler := rl.Handler(okHandler())

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?key=test-api-key", nil))
			require.Equal(t, http.StatusOK, w.Code)
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?key=test-api-key", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "1", w.Header().Get("Retry-After"))
		assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, float64(http.StatusTooManyRequests), body["code"])
	})

	t.Run("keys are limited separately", func(t *testing.T) {
		rl := NewRateLimitMiddleware(1, time.Second)
		defer rl.Stop()
		handler := rl.Handler(okHandler())

		for _, key := range []string{"a", "b", ""} {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?key="+key, nil))
			assert.Equal(t, http.StatusOK, w.Code, "key %q", key)
		}

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?key=a", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
	})

	t.Run("zero disables limiting", func(t *testing.T) {
		rl := NewRateLimitMiddleware(0, time.Second)
		defer rl.Stop()
		handler := rl.Handler(okHandler())

		for i := 0; i < 50; i++ {
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?key=k", nil))
			require.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("concurrent requests", func(t *testing.T) {
		rl := NewRateLimitMiddleware(10, time.Minute)
		defer rl.Stop()
		handler := rl.Handler(okHandler())

		var mu sync.Mutex
		allowed := 0
		var wg sync.WaitGroup
		for i := 0; i < 30; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?key=shared", nil))
				if w.Code == http.StatusOK {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 10, allowed)
	})

	t.Run("idle limiters are evicted", func(t *testing.T) {
		rl := NewRateLimitMiddleware(2, time.Millisecond)
		defer rl.Stop()
		rl.getLimiter("idle")
		rl.evictIdle()

		rl.mu.RLock()
		defer rl.mu.RUnlock()
		assert.Empty(t, rl.limiters)
	})

	t.Run("stop is idempotent", func(t *testing.T) {
		rl := NewRateLimitMiddleware(2, time.Second)
		assert.NotPanics(t, func() {
			rl.Stop()
			rl.Stop()
		})
	})
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := NewRequestLoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/where/current-time.json?key=secret", nil)
	req.Header.Set("User-Agent", "map-client/1.0")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "/api/where/current-time.json", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
	assert.Equal(t, "map-client/1.0", entry["user_agent"])
	assert.Equal(t, float64(len("short and stout")), entry["bytes"])
	assert.NotContains(t, buf.String(), "secret")
}

func TestHandlerChainCompressesLargeResponses(t *testing.T) {
	api := createTestApi(t)
	for i := 0; i < 40; i++ {
		api.GtfsManager.MockAddVehicle(fmt.Sprintf("bus_%02d", i), "north_1", "10", 35.0, 33.0, testNow)
	}
	id := createSession(t, api)

	req := httptest.NewRequest(http.MethodGet, "/api/where/vehicles-for-session/"+id+"?key="+testKey, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	recorder := httptest.NewRecorder()
	api.Handler().ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
}
