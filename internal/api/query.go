package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/lox/towerdash/internal/report"
)

// Query parameters shared by the page, the JSON API and the PDF export.
const (
	paramStart  = "start"
	paramEnd    = "end"
	paramSearch = "q"
)

// parseQuery reads start, end (YYYY-MM-DD) and q from the URL. The
// preview limit is filled in by the server.
func parseQuery(r *http.Request) (report.Query, error) {
	v := r.URL.Query()
	rng, err := report.ParseDateRange(v.Get(paramStart), v.Get(paramEnd))
	if err != nil {
		return report.Query{}, err
	}
	return report.Query{Range: rng, Search: strings.TrimSpace(v.Get(paramSearch))}, nil
}

// queryString re-encodes the user's filter so links carry it.
func queryString(r *http.Request) string {
	in := r.URL.Query()
	out := url.Values{}
	for _, k := range []string{paramStart, paramEnd, paramSearch} {
		if s := strings.TrimSpace(in.Get(k)); s != "" {
			out.Set(k, s)
		}
	}
	return out.Encode()
}

type errorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Notice string `json:"notice,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps engine errors onto status codes: validation is the
// caller's fault, an empty view has nothing to serve, anything else is ours.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *report.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, report.ErrEmptyView):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Notice: report.NoticeNoResults})
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
