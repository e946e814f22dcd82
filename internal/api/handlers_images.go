package api

import (
	"net/http"
	"strconv"

	"github.com/lox/towerdash/internal/chart"
	"github.com/lox/towerdash/internal/insights"
)

// handleCategoryChart serves the recommendation category bar chart for
// the whole dataset. Charts are cached on disk by their category counts.
func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	recs, err := s.records(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cats := insights.Categories(recs)
	key := chart.Key(cats, s.classifier)

	if s.chartCache != nil {
		if data, ok := s.chartCache.Get(key); ok {
			s.servePNG(w, r, key, data)
			return
		}
	}

	data, err := chart.Categories(cats, s.classifier)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.chartCache != nil {
		if err := s.chartCache.Set(key, data); err != nil {
			s.logger.Warn("cache chart", "key", key, "error", err)
		}
	}
	s.servePNG(w, r, key, data)
}

func (s *Server) servePNG(w http.ResponseWriter, r *http.Request, key string, data []byte) {
	etag := `"` + key + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
