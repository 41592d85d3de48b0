package web

import (
	"net/http"
	"net/http/httputil"
	"net/url"
)

// newBackendProxy forwards the few browser-facing backend routes (draft images,
// the OAuth callback) so they work on the dashboard's origin. The target is
// read per request so SetAPIURL applies immediately.
func (s *Server) newBackendProxy() *httputil.ReverseProxy {
	p := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			target, err := url.Parse(s.client.BaseURL())
			if err != nil {
				return
			}
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.log.ErrorContext(r.Context(), "backend proxy failed", "path", r.URL.Path, "err", err)
			http.Error(w, "backend unavailable", http.StatusBadGateway)
		},
	}
	if hc := s.cfg.HTTPClient; hc != nil && hc.Transport != nil {
		p.Transport = hc.Transport
	}
	return p
}
