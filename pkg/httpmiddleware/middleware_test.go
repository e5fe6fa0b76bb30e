package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-faster/sdk/zctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWrap_Order(t *testing.T) {
	var calls []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		calls = append(calls, "handler")
	}), mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner", "handler"}, calls)
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := Wrap(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), InjectLogger(zap.New(core)), Recovery())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/carts", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "close", w.Header().Get("Connection"))
	assert.JSONEq(t, `{"code":500,"message":"internal error"}`, w.Body.String())
	require.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestRecovery_AbortHandler(t *testing.T) {
	h := Recovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	tests := []struct {
		name     string
		incoming string
		reuse    bool
	}{
		{name: "generated", incoming: ""},
		{name: "reused", incoming: "req-42", reuse: true},
		{name: "too long", incoming: strings.Repeat("a", 129)},
		{name: "control characters", incoming: "a\tb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				r.Header.Set(RequestIDHeader, tt.incoming)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			got := w.Header().Get(RequestIDHeader)
			assert.Equal(t, got, seen)
			if tt.reuse {
				assert.Equal(t, tt.incoming, got)
			} else {
				assert.Len(t, got, 36)
			}
		})
	}
}

func TestInjectLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := Wrap(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		zctx.From(r.Context()).Info("Handled")
	}), RequestID(), InjectLogger(zap.New(core)))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(RequestIDHeader, "abc")
	h.ServeHTTP(httptest.NewRecorder(), r)

	entries := logs.FilterMessage("Handled").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["request_id"])
}

func TestLogRequests(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/carts/{id}", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})
	mux.HandleFunc("GET /api/fail", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	find := MakeRouteFinder(mux)

	core, logs := observer.New(zapcore.DebugLevel)
	h := Wrap(mux, InjectLogger(zap.New(core)), LogRequests(find))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/carts/1", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/fail", nil))

	ok := logs.FilterMessage("Request").All()
	require.Len(t, ok, 1)
	fields := ok[0].ContextMap()
	assert.Equal(t, "GET /api/carts/{id}", fields["route"])
	assert.EqualValues(t, http.StatusOK, fields["status"])
	assert.EqualValues(t, 2, fields["size"])

	failed := logs.FilterMessage("Request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.ErrorLevel, failed[0].Level)
}

func TestInstrument(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := Instrument("storefront", MakeRouteFinder(mux),
		nooptrace.NewTracerProvider(), noop.NewMeterProvider())(mux)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name       string
		cfg        CORSConfig
		method     string
		headers    map[string]string
		wantStatus int
		wantHeader map[string]string
	}{
		{
			name:       "any origin",
			method:     http.MethodGet,
			headers:    map[string]string{"Origin": "https://shop.example"},
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{"Access-Control-Allow-Origin": "*"},
		},
		{
			name:       "allowed origin keeps configured case",
			cfg:        CORSConfig{Origins: []string{"https://Shop.example"}},
			method:     http.MethodGet,
			headers:    map[string]string{"Origin": "https://shop.example"},
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{"Access-Control-Allow-Origin": "https://Shop.example", "Vary": "Origin"},
		},
		{
			name:       "disallowed origin",
			cfg:        CORSConfig{Origins: []string{"https://shop.example"}},
			method:     http.MethodGet,
			headers:    map[string]string{"Origin": "https://evil.example"},
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name:   "preflight",
			cfg:    CORSConfig{Headers: []string{"Content-Type", "api_key"}, MaxAge: 600},
			method: http.MethodOptions,
			headers: map[string]string{
				"Origin":                        "https://shop.example",
				"Access-Control-Request-Method": "DELETE",
			},
			wantStatus: http.StatusNoContent,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":  "*",
				"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
				"Access-Control-Allow-Headers": "Content-Type, api_key",
				"Access-Control-Max-Age":       "600",
			},
		},
		{
			name:   "credentials echo origin",
			cfg:    CORSConfig{AllowCredentials: true},
			method: http.MethodOptions,
			headers: map[string]string{
				"Origin":                         "https://shop.example",
				"Access-Control-Request-Method":  "POST",
				"Access-Control-Request-Headers": "X-Custom",
			},
			wantStatus: http.StatusNoContent,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":      "https://shop.example",
				"Access-Control-Allow-Credentials": "true",
				"Access-Control-Allow-Headers":     "X-Custom",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(tt.cfg)(okHandler())
			r := httptest.NewRequest(tt.method, "/api/products", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			for k, v := range tt.wantHeader {
				assert.Equal(t, v, w.Header().Get(k), k)
			}
		})
	}
}
