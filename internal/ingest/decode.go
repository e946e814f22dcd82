package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/lox/towerdash/internal/models"
)

// Format is the serialisation of a pipeline export.
type Format int

const (
	FormatJSON Format = iota
	FormatJSONLines
	FormatCSV
)

func (f Format) String() string {
	switch f {
	case FormatJSONLines:
		return "jsonl"
	case FormatCSV:
		return "csv"
	default:
		return "json"
	}
}

// FormatFor guesses the format from a file name or URL path.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".jsonl", ".ndjson":
		return FormatJSONLines
	default:
		return FormatJSON
	}
}

// Decode reads every record from r. Malformed documents fail; bad values
// inside a well-formed row are zeroed and left for ValidateRecord to flag.
func Decode(r io.Reader, f Format) ([]models.TowerRecord, error) {
	switch f {
	case FormatCSV:
		return decodeCSV(r)
	case FormatJSONLines:
		return decodeJSONLines(r)
	default:
		return decodeJSON(r)
	}
}

// rawRecord mirrors the pipeline's JSON row. tower_id and timestamp vary
// in type between exports so they are decoded by hand; a mistyped value
// elsewhere zeroes that field rather than failing the load.
type rawRecord struct {
	TowerID           json.RawMessage `json:"tower_id"`
	Operator          flexString      `json:"operator"`
	NetworkType       flexString      `json:"network_type"`
	Timestamp         json.RawMessage `json:"timestamp"`
	Recommendation    flexString      `json:"recommendation"`
	LatencySec        flexFloat       `json:"latency_sec"`
	DownloadSpeedMbps flexFloat       `json:"download_speed_mbps"`
	UploadSpeedMbps   flexFloat       `json:"upload_speed_mbps"`
	TowerLoadPercent  flexFloat       `json:"tower_load_percent"`
	DroppedCalls      flexFloat       `json:"dropped_calls"`
	PacketLossPercent flexFloat       `json:"packet_loss_percent"`
	Cluster           flexFloat       `json:"cluster"`
	Anomaly           flexFloat       `json:"anomaly"`
	PCA1              flexFloat       `json:"pca1"`
	PCA2              flexFloat       `json:"pca2"`
	Latitude          flexFloat       `json:"latitude"`
	Longitude         flexFloat       `json:"longitude"`
}

func (raw rawRecord) record() models.TowerRecord {
	return models.TowerRecord{
		TowerID:           rawTowerID(raw.TowerID),
		Operator:          string(raw.Operator),
		NetworkType:       string(raw.NetworkType),
		Timestamp:         rawTimestamp(raw.Timestamp),
		Recommendation:    string(raw.Recommendation),
		LatencySec:        float64(raw.LatencySec),
		DownloadSpeedMbps: float64(raw.DownloadSpeedMbps),
		UploadSpeedMbps:   float64(raw.UploadSpeedMbps),
		TowerLoadPercent:  float64(raw.TowerLoadPercent),
		DroppedCalls:      float64(raw.DroppedCalls),
		PacketLossPercent: float64(raw.PacketLossPercent),
		Cluster:           int(raw.Cluster),
		Anomaly:           int(raw.Anomaly),
		PCA1:              float64(raw.PCA1),
		PCA2:              float64(raw.PCA2),
		Latitude:          float64(raw.Latitude),
		Longitude:         float64(raw.Longitude),
	}
}

// flexFloat accepts a JSON number, a numeric string or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}

// flexString accepts a JSON string; any other value decodes as "".
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		*f = ""
		return nil
	}
	*f = flexString(s)
	return nil
}

func decodeJSON(r io.Reader) ([]models.TowerRecord, error) {
	var raws []rawRecord
	if err := json.NewDecoder(r).Decode(&raws); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	out := make([]models.TowerRecord, 0, len(raws))
	for _, raw := range raws {
		out = append(out, raw.record())
	}
	return out, nil
}

func decodeJSONLines(r io.Reader) ([]models.TowerRecord, error) {
	var out []models.TowerRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var raw rawRecord
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil, fmt.Errorf("decode jsonl line %d: %w", line, err)
		}
		out = append(out, raw.record())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}
	return out, nil
}

func decodeCSV(r io.Reader) ([]models.TowerRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, required := range []string{"tower_id", "recommendation"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("csv: missing column %q", required)
		}
	}

	var out []models.TowerRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		get := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		num := func(name string) float64 {
			v, err := strconv.ParseFloat(strings.TrimSpace(get(name)), 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return 0
			}
			return v
		}
		ts, _ := ParseTimestamp(get("timestamp"))
		out = append(out, models.TowerRecord{
			TowerID:           get("tower_id"),
			Operator:          get("operator"),
			NetworkType:       get("network_type"),
			Timestamp:         ts,
			Recommendation:    get("recommendation"),
			LatencySec:        num("latency_sec"),
			DownloadSpeedMbps: num("download_speed_mbps"),
			UploadSpeedMbps:   num("upload_speed_mbps"),
			TowerLoadPercent:  num("tower_load_percent"),
			DroppedCalls:      num("dropped_calls"),
			PacketLossPercent: num("packet_loss_percent"),
			Cluster:           int(num("cluster")),
			Anomaly:           int(num("anomaly")),
			PCA1:              num("pca1"),
			PCA2:              num("pca2"),
			Latitude:          num("latitude"),
			Longitude:         num("longitude"),
		})
	}
	return out, nil
}

// rawTowerID stringifies a tower_id. Integral numbers lose their ".0".
func rawTowerID(b json.RawMessage) string {
	s := strings.TrimSpace(string(b))
	switch {
	case s == "" || s == "null":
		return ""
	case strings.HasPrefix(s, `"`):
		var out string
		if err := json.Unmarshal(b, &out); err != nil {
			return ""
		}
		return out
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return s
}

func rawTimestamp(b json.RawMessage) time.Time {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		return time.Time{}
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return time.Time{}
		}
	}
	t, _ := ParseTimestamp(s)
	return t
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC 3339, the pandas naive layouts, a bare date, or
// epoch milliseconds. Naive times are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.UnixMilli(int64(f)).UTC(), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
