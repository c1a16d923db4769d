package assets

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// URLScheme prefixes every object URL issued by a URLRegistry.
const URLScheme = "blob:serenity/"

type blobEntry struct {
	data []byte
	mime string
}

// URLRegistry maps object URLs to in-memory blobs.
type URLRegistry struct {
	mu    sync.RWMutex
	blobs map[string]blobEntry
}

// NewURLRegistry returns an empty registry.
func NewURLRegistry() *URLRegistry {
	return &URLRegistry{blobs: make(map[string]blobEntry)}
}

// Create registers blob and returns a fresh object URL for it.
func (r *URLRegistry) Create(blob []byte, mime string) string {
	url := URLScheme + uuid.NewString()
	r.mu.Lock()
	r.blobs[url] = blobEntry{data: blob, mime: mime}
	r.mu.Unlock()
	return url
}

// Revoke forgets url. Revoking an unknown url is a no-op.
func (r *URLRegistry) Revoke(url string) {
	r.mu.Lock()
	delete(r.blobs, url)
	r.mu.Unlock()
}

// Resolve returns the blob and mime type registered for url.
func (r *URLRegistry) Resolve(url string) ([]byte, string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.blobs[url]
	return e.data, e.mime, ok
}

// Len returns the number of live URLs.
func (r *URLRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blobs)
}

// HTTPPath returns the path under which Handler serves url.
func HTTPPath(url string) string {
	return "/blob/" + strings.TrimPrefix(url, URLScheme)
}

// Handler serves registered blobs at /blob/{id}, where id is the part of
// the object URL after URLScheme. Revoked URLs return 404.
func (r *URLRegistry) Handler() http.Handler {
	router := chi.NewRouter()
	router.Get("/blob/{id}", func(w http.ResponseWriter, req *http.Request) {
		data, mime, ok := r.Resolve(URLScheme + chi.URLParam(req, "id"))
		if !ok {
			http.NotFound(w, req)
			return
		}
		w.Header().Set("Content-Type", mime)
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(data)
	})
	return router
}
