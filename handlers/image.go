package handlers

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// posterHosts are the image CDNs that title documents reference.
var posterHosts = []string{
	"m.media-amazon.com",
	"ia.media-imdb.com",
	"img.youtube.com",
}

// ImageHandler is a stateless pass-through for poster images referenced by
// title records. No transcoding or resizing happens here; the upstream bytes
// and content type are relayed as-is.
type ImageHandler struct {
	httpc        *http.Client
	allowedHosts []string
}

// NewImageHandler builds the proxy. extraHosts widens the allowlist beyond
// the known poster CDNs, e.g. with the configured upstream API host.
func NewImageHandler(extraHosts ...string) *ImageHandler {
	hosts := append([]string{}, posterHosts...)
	for _, h := range extraHosts {
		if h != "" {
			hosts = append(hosts, h)
		}
	}
	return &ImageHandler{
		httpc:        &http.Client{Timeout: 30 * time.Second},
		allowedHosts: hosts,
	}
}

// hostAllowed reports whether an image may be fetched from host. Subdomains
// of an allowed host are allowed too.
func (h *ImageHandler) hostAllowed(host string) bool {
	for _, allowed := range h.allowedHosts {
		if strings.EqualFold(host, allowed) || strings.HasSuffix(strings.ToLower(host), "."+strings.ToLower(allowed)) {
			return true
		}
	}
	return false
}

// Proxy handles GET /api/image?url=.
func (h *ImageHandler) Proxy(w http.ResponseWriter, r *http.Request) {
	sourceURL := r.URL.Query().Get("url")
	if sourceURL == "" {
		http.Error(w, "url parameter required", http.StatusBadRequest)
		return
	}

	parsed, err := url.Parse(sourceURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	if !h.hostAllowed(parsed.Hostname()) {
		http.Error(w, "URL not allowed", http.StatusForbidden)
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, sourceURL, nil)
	if err != nil {
		http.Error(w, "invalid url", http.StatusBadRequest)
		return
	}

	resp, err := h.httpc.Do(req)
	if err != nil {
		log.Printf("[image] fetch failed for %s: %v", sourceURL, err)
		http.Error(w, "image fetch failed", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		http.Error(w, "image fetch failed", http.StatusBadGateway)
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("[image] copy failed for %s: %v", sourceURL, err)
	}
}
