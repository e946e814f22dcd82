package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/lox/towerdash/internal/metrics"
)

// handleReportPDF serves the current view as a PDF attachment. The ETag is
// the view's fingerprint, so an unchanged view answers 304.
func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.records(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	view, err := s.filter(recs, q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, err := s.renderer.Document(view)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics.DocumentsRendered.Inc()
	metrics.DocumentBytes.Observe(float64(len(doc.Bytes)))

	etag := `"` + doc.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", doc.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Bytes)))
	w.Write(doc.Bytes)

	s.logger.Info("report exported",
		"rows", len(doc.Blocks),
		"pages", doc.Pages,
		"bytes", len(doc.Bytes),
		"truncated", view.Truncated,
		"request_id", RequestID(r.Context()),
	)
}
