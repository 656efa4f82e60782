package main

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/TheRealTwizzy/raiderdle/internal/daily"
	"github.com/TheRealTwizzy/raiderdle/internal/icons"
)

const maxProxiedImage = 10 << 20

func iconsListHandler(svc *daily.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.Icons()
		if err != nil {
			log.Error("listing icons failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
			return
		}
		if list == nil {
			list = []icons.Icon{}
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func iconImageHandler(dir *icons.Dir, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		full, err := dir.Path(r.PathValue("filename"))
		if errors.Is(err, icons.ErrForbidden) {
			writeError(w, http.StatusForbidden, "FORBIDDEN")
			return
		}
		if err != nil {
			log.Error("resolving icon failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
			return
		}
		info, err := os.Stat(full)
		if errors.Is(err, fs.ErrNotExist) || (err == nil && info.IsDir()) {
			writeError(w, http.StatusNotFound, "NOT_FOUND")
			return
		}
		if err != nil {
			log.Error("serving icon failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR")
			return
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		http.ServeFile(w, r, full)
	}
}

var imageTypes = map[string]string{
	".webp": "image/webp",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// guessImageType falls back to PNG when the extension says nothing.
func guessImageType(rawURL string) string {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if ct, ok := imageTypes[strings.ToLower(path.Ext(p))]; ok {
		return ct
	}
	return "image/png"
}

// imageProxyHandler relays remote images for the browser. Any failure is a
// bare 404 so the frontend can fall back to its placeholder.
func imageProxyHandler(client *http.Client, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		target := r.URL.Query().Get("url")
		if target == "" {
			writeError(w, http.StatusBadRequest, "MISSING_URL")
			return
		}
		if !isProxyableURL(target) {
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}

		req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
		if err != nil {
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}
		res, err := client.Do(req)
		if err != nil {
			log.Warn("image proxy fetch failed", zap.String("url", target), zap.Error(err))
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}
		defer res.Body.Close()
		if res.StatusCode < 200 || res.StatusCode > 299 {
			log.Warn("image proxy upstream status", zap.String("url", target), zap.Int("status", res.StatusCode))
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}

		body, err := io.ReadAll(io.LimitReader(res.Body, maxProxiedImage))
		if err != nil {
			log.Warn("image proxy read failed", zap.String("url", target), zap.Error(err))
			http.Error(w, "Image not found", http.StatusNotFound)
			return
		}

		contentType := res.Header.Get("Content-Type")
		if contentType == "" {
			contentType = guessImageType(target)
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}
}
