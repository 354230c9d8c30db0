package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/camden-git/personasapi/media"
	"github.com/go-chi/chi/v5"
)

// AssetServer serves stored persona images. it is mounted on a wildcard route
// and expects the wildcard to hold the path relative to the storage root:
//
//	r.Get("/storage/*", AssetServer(store))
//
// so the reference "storage/imagenes/x.jpg" kept on a persona is also its URL.
func AssetServer(store media.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := chi.URLParam(r, "*")

		if relativePath == "" || strings.Contains(relativePath, "..") {
			http.Error(w, "Invalid asset path", http.StatusBadRequest)
			return
		}

		file, info, err := store.Get(relativePath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				http.NotFound(w, r)
				return
			}
			if errors.Is(err, media.ErrAccessDenied) {
				log.Printf("SECURITY: Attempted asset access outside storage: Request='%s'", r.URL.Path)
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			log.Printf("Error opening asset %s: %v", relativePath, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		defer file.Close()

		cacheDuration := 24 * time.Hour
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))

		http.ServeContent(w, r, info.Name(), info.ModTime(), file)
	}
}
