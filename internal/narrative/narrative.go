// Package narrative produces the "Network Performance Story" shown under
// the dashboard.
package narrative

import (
	"context"

	"github.com/lox/towerdash/internal/insights"
)

// Generator writes a short story from the current KPIs and categories.
type Generator interface {
	Story(ctx context.Context, sum insights.Summary, cats []insights.CategoryCount) (string, error)
}

// Static always returns the fixed story.
type Static struct{}

func (Static) Story(context.Context, insights.Summary, []insights.CategoryCount) (string, error) {
	return StaticStory, nil
}

// StaticStory is the analysts' write-up of the reference dataset, in
// Markdown.
const StaticStory = `Our analysis of telecom tower usage reveals some interesting patterns:

- **5G towers** generally perform well, but a few outliers show speeds as low as **10 Mbps**, behaving more like 3G towers. These anomalies likely indicate **faulty configuration or backhaul congestion**.
- In **4G/LTE towers**, several sites report **latencies above 0.7 seconds**, far beyond the expected 50-100 ms range. Such towers contribute to **customer complaints about call drops and slow browsing**.
- Towers with **>85% load** consistently show **reduced speeds** and **increased dropped calls**, proving that **overloaded towers degrade service quality**.
- Geospatial mapping highlights that rural towers are more prone to **packet loss (>10%)**, suggesting weaker infrastructure in remote regions.
- The clustering analysis divided towers into groups: **Healthy High-Speed Towers, Overloaded Towers, Latency-Prone Towers, and Old Maintenance-Due Towers**.
- Finally, our **automated recommendation engine** provides actionable insights, from **load balancing upgrades** to **dispatching engineers** for anomaly-prone towers.

This story demonstrates how raw operational data can be transformed into **business decisions** that directly improve **network reliability and customer experience**.`
