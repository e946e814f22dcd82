package ingest

import (
	"encoding/json"
	"strings"

	"github.com/lox/towerdash/internal/htmlutil"
	"github.com/lox/towerdash/internal/models"
)

const (
	FlagMissingTowerID       = "missing_tower_id"
	FlagMissingTimestamp     = "missing_timestamp"
	FlagLatencyNegative      = "latency_negative"
	FlagSpeedNegative        = "speed_negative"
	FlagLoadOutOfRange       = "load_out_of_range"
	FlagDroppedCallsNegative = "dropped_calls_negative"
)

// Normalize trims identity fields and reduces markup in the recommendation
// to plain text. Severity markers are left in place.
func Normalize(rec models.TowerRecord) models.TowerRecord {
	rec.TowerID = strings.TrimSpace(rec.TowerID)
	rec.Operator = strings.TrimSpace(rec.Operator)
	rec.NetworkType = strings.TrimSpace(rec.NetworkType)
	rec.Recommendation = htmlutil.ToText(rec.Recommendation)
	return rec
}

// ValidateRecord returns quality flags for rec. Flagged rows are still
// loaded; the flags are for logging and the store.
func ValidateRecord(rec models.TowerRecord) []string {
	var flags []string

	if rec.TowerID == "" {
		flags = append(flags, FlagMissingTowerID)
	}
	if rec.Timestamp.IsZero() {
		flags = append(flags, FlagMissingTimestamp)
	}
	if rec.LatencySec < 0 {
		flags = append(flags, FlagLatencyNegative)
	}
	if rec.DownloadSpeedMbps < 0 || rec.UploadSpeedMbps < 0 {
		flags = append(flags, FlagSpeedNegative)
	}
	if rec.TowerLoadPercent < 0 || rec.TowerLoadPercent > 100 {
		flags = append(flags, FlagLoadOutOfRange)
	}
	if rec.DroppedCalls < 0 {
		flags = append(flags, FlagDroppedCallsNegative)
	}

	return flags
}

func QualityFlagsToJSON(flags []string) string {
	if len(flags) == 0 {
		return ""
	}
	b, _ := json.Marshal(flags)
	return string(b)
}
