// Package insights computes the dashboard's aggregate views over tower
// records: headline KPIs, recommendation categories, per-cluster means and
// per-operator time series.
package insights

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lox/towerdash/internal/models"
)

// Summary holds the headline KPIs. Means are rounded to two decimals.
type Summary struct {
	Towers          int     `json:"towers"`
	Records         int     `json:"records"`
	Anomalies       int     `json:"anomalies"`
	AvgLatencySec   float64 `json:"avg_latency_sec"`
	AvgDownloadMbps float64 `json:"avg_download_speed_mbps"`
	AvgDroppedCalls float64 `json:"avg_dropped_calls"`
}

func Summarize(records []models.TowerRecord) Summary {
	s := Summary{Records: len(records)}
	if len(records) == 0 {
		return s
	}

	towers := make(map[string]struct{}, len(records))
	var latency, download, dropped float64
	for _, r := range records {
		if r.TowerID != "" {
			towers[r.TowerID] = struct{}{}
		}
		if r.IsAnomaly() {
			s.Anomalies++
		}
		latency += r.LatencySec
		download += r.DownloadSpeedMbps
		dropped += r.DroppedCalls
	}

	n := float64(len(records))
	s.Towers = len(towers)
	s.AvgLatencySec = round2(latency / n)
	s.AvgDownloadMbps = round2(download / n)
	s.AvgDroppedCalls = round2(dropped / n)
	return s
}

// CategoryCount is how many records share a recommendation category.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Category is the part of a recommendation before the first arrow.
func Category(recommendation string) string {
	head, _, _ := strings.Cut(recommendation, "→")
	return strings.TrimSpace(head)
}

// Categories counts recommendation categories, most common first and
// then by name. Blank recommendations are skipped.
func Categories(records []models.TowerRecord) []CategoryCount {
	counts := make(map[string]int)
	for _, r := range records {
		if c := Category(r.Recommendation); c != "" {
			counts[c]++
		}
	}

	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ClusterStats are the mean metrics of one cluster.
type ClusterStats struct {
	Cluster         int     `json:"cluster"`
	Records         int     `json:"records"`
	AvgLatencySec   float64 `json:"latency_sec"`
	AvgDownloadMbps float64 `json:"download_speed_mbps"`
	AvgLoadPercent  float64 `json:"tower_load_percent"`
	AvgDroppedCalls float64 `json:"dropped_calls"`
}

// Clusters groups records by cluster label, ordered by label.
func Clusters(records []models.TowerRecord) []ClusterStats {
	byCluster := make(map[int]*ClusterStats)
	for _, r := range records {
		cs, ok := byCluster[r.Cluster]
		if !ok {
			cs = &ClusterStats{Cluster: r.Cluster}
			byCluster[r.Cluster] = cs
		}
		cs.Records++
		cs.AvgLatencySec += r.LatencySec
		cs.AvgDownloadMbps += r.DownloadSpeedMbps
		cs.AvgLoadPercent += r.TowerLoadPercent
		cs.AvgDroppedCalls += r.DroppedCalls
	}

	out := make([]ClusterStats, 0, len(byCluster))
	for _, cs := range byCluster {
		n := float64(cs.Records)
		cs.AvgLatencySec = round2(cs.AvgLatencySec / n)
		cs.AvgDownloadMbps = round2(cs.AvgDownloadMbps / n)
		cs.AvgLoadPercent = round2(cs.AvgLoadPercent / n)
		cs.AvgDroppedCalls = round2(cs.AvgDroppedCalls / n)
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Cluster < out[j].Cluster })
	return out
}

// Metric names a plottable column.
type Metric string

const (
	MetricLatency      Metric = "latency_sec"
	MetricDownload     Metric = "download_speed_mbps"
	MetricDroppedCalls Metric = "dropped_calls"
)

// Metrics lists the plottable columns in display order.
var Metrics = []Metric{MetricLatency, MetricDownload, MetricDroppedCalls}

func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q: must be one of latency_sec, download_speed_mbps, dropped_calls", s)
}

func (m Metric) value(r models.TowerRecord) float64 {
	switch m {
	case MetricDownload:
		return r.DownloadSpeedMbps
	case MetricDroppedCalls:
		return r.DroppedCalls
	default:
		return r.LatencySec
	}
}

type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is one operator's readings over time.
type Series struct {
	Operator string  `json:"operator"`
	Points   []Point `json:"points"`
}

// SeriesFor returns one series per operator, sorted by operator, with
// points in time order. Records without a timestamp are skipped.
func SeriesFor(records []models.TowerRecord, metric string) ([]Series, error) {
	m, err := ParseMetric(metric)
	if err != nil {
		return nil, err
	}

	byOp := make(map[string][]Point)
	for _, r := range records {
		if r.Timestamp.IsZero() {
			continue
		}
		byOp[r.Operator] = append(byOp[r.Operator], Point{Time: r.Timestamp, Value: m.value(r)})
	}

	out := make([]Series, 0, len(byOp))
	for op, pts := range byOp {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })
		out = append(out, Series{Operator: op, Points: pts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operator < out[j].Operator })
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
