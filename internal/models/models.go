package models

import "time"

// TowerRecord is one row of the analytics table produced by the upstream
// cleaning/clustering pipeline. Identity fields and Recommendation drive
// filtering and reporting; the metric fields are carried through untouched.
type TowerRecord struct {
	TowerID        string    `json:"tower_id"`
	Operator       string    `json:"operator"`
	NetworkType    string    `json:"network_type"` // "4G", "5G", ...
	Timestamp      time.Time `json:"timestamp"`
	Recommendation string    `json:"recommendation"`

	LatencySec        float64 `json:"latency_sec"`
	DownloadSpeedMbps float64 `json:"download_speed_mbps"`
	UploadSpeedMbps   float64 `json:"upload_speed_mbps"`
	TowerLoadPercent  float64 `json:"tower_load_percent"`
	DroppedCalls      float64 `json:"dropped_calls"`
	PacketLossPercent float64 `json:"packet_loss_percent"`

	Cluster   int     `json:"cluster"`
	Anomaly   int     `json:"anomaly"` // 1 normal, -1 anomaly
	PCA1      float64 `json:"pca1"`
	PCA2      float64 `json:"pca2"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsAnomaly reports whether the pipeline flagged the row as an outlier.
func (r TowerRecord) IsAnomaly() bool {
	return r.Anomaly == -1
}
