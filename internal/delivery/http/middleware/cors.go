package middleware

import (
	"net/http"
	"strings"
)

// CORSPolicy decides which browser origins may call the API. An entry of "*" admits
// every origin but then credentials are not allowed, as browsers require.
type CORSPolicy struct {
	origins  map[string]struct{}
	anyOrigin bool
	Methods  []string
	Headers  []string
	MaxAge   string
}

// NewCORSPolicy normalizes origins (trimmed, trailing slash removed, blanks dropped).
func NewCORSPolicy(origins []string) *CORSPolicy {
	p := &CORSPolicy{
		origins: make(map[string]struct{}, len(origins)),
		Methods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		Headers: []string{"Authorization", "Content-Type", "Accept"},
		MaxAge:  "86400",
	}
	for _, o := range origins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			p.anyOrigin = true
		default:
			p.origins[o] = struct{}{}
		}
	}
	return p
}

func (p *CORSPolicy) allows(origin string) bool {
	if origin == "" {
		return false
	}
	if p.anyOrigin {
		return true
	}
	_, ok := p.origins[origin]
	return ok
}

// Handler answers preflight requests itself and decorates every other response
// from next with the allow headers.
func (p *CORSPolicy) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		h := w.Header()
		h.Add("Vary", "Origin")
		allowed := p.allows(origin)
		if allowed {
			if p.anyOrigin {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if allowed {
				h.Set("Access-Control-Allow-Methods", strings.Join(p.Methods, ", "))
				h.Set("Access-Control-Allow-Headers", strings.Join(p.Headers, ", "))
				h.Set("Access-Control-Max-Age", p.MaxAge)
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CORS wraps next with a policy built from allowedOrigins.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	return NewCORSPolicy(allowedOrigins).Handler(next)
}
