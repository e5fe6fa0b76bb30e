package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures CORS.
type CORSConfig struct {
	// Origins allowed to call the API. Empty or "*" allows any origin.
	Origins []string
	// Methods sent on preflight. Defaults to the methods the API serves.
	Methods []string
	// Headers sent on preflight. When empty the requested headers are echoed.
	Headers []string
	// AllowCredentials echoes the exact origin instead of "*".
	AllowCredentials bool
	// MaxAge caches preflight results, in seconds. Zero omits the header.
	MaxAge int
}

// CORS answers preflight requests and sets Access-Control headers on
// cross-origin requests from allowed origins.
func CORS(cfg CORSConfig) Middleware {
	anyOrigin := len(cfg.Origins) == 0
	origins := make(map[string]string, len(cfg.Origins))
	for _, o := range cfg.Origins {
		if o == "*" {
			anyOrigin = true
			continue
		}
		origins[strings.ToLower(o)] = o
	}
	// A credentialed response may not use the wildcard.
	echoOrigin := cfg.AllowCredentials || !anyOrigin

	methods := "GET, POST, PUT, DELETE, OPTIONS"
	if len(cfg.Methods) > 0 {
		methods = strings.Join(cfg.Methods, ", ")
	}
	headers := strings.Join(cfg.Headers, ", ")

	allow := func(origin string) string {
		if o, ok := origins[strings.ToLower(origin)]; ok {
			return o
		}
		if !anyOrigin {
			return ""
		}
		if echoOrigin {
			return origin
		}
		return "*"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if echoOrigin {
				h.Add("Vary", "Origin")
			}

			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			allowed := allow(origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Add("Vary", "Access-Control-Request-Method")
				h.Add("Vary", "Access-Control-Request-Headers")
				if allowed != "" {
					h.Set("Access-Control-Allow-Origin", allowed)
					h.Set("Access-Control-Allow-Methods", methods)
					if headers != "" {
						h.Set("Access-Control-Allow-Headers", headers)
					} else if req := r.Header.Get("Access-Control-Request-Headers"); req != "" {
						h.Set("Access-Control-Allow-Headers", req)
					}
					if cfg.AllowCredentials {
						h.Set("Access-Control-Allow-Credentials", "true")
					}
					if cfg.MaxAge > 0 {
						h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if allowed != "" {
				h.Set("Access-Control-Allow-Origin", allowed)
				if cfg.AllowCredentials {
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
