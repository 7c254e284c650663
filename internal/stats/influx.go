package stats

import (
	"context"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/unarmedpuppy/homelab-ai-sub013/internal/config"
	"github.com/unarmedpuppy/homelab-ai-sub013/internal/models"
)

// InfluxExporter writes rollups to an InfluxDB bucket, one point per
// day/agent pair.
type InfluxExporter struct {
	client      influxdb2.Client
	write       api.WriteAPIBlocking
	measurement string
}

func NewInfluxExporter(cfg config.InfluxConfig) *InfluxExporter {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &InfluxExporter{
		client:      client,
		write:       client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		measurement: cfg.Measurement,
	}
}

// Export writes one point per rollup, tagged by agent and timestamped at
// midnight UTC of the rollup day. Re-exports overwrite the same series
// points instead of duplicating them.
func (e *InfluxExporter) Export(ctx context.Context, rollups []models.ActivityRollup) error {
	points := make([]*write.Point, 0, len(rollups))
	for _, r := range rollups {
		day, err := time.Parse("2006-01-02", r.Day)
		if err != nil {
			return fmt.Errorf("stats: influx: bad rollup day %q: %w", r.Day, err)
		}
		points = append(points, influxdb2.NewPoint(
			e.measurement,
			map[string]string{"agent_id": r.AgentID},
			map[string]interface{}{
				"sent":         r.Sent,
				"received":     r.Received,
				"acknowledged": r.Acknowledged,
				"resolved":     r.Resolved,
				"pending":      r.Pending,
			},
			day,
		))
	}
	if len(points) == 0 {
		return nil
	}
	if err := e.write.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("stats: influx write: %w", err)
	}
	return nil
}

// Close releases the underlying HTTP client. Safe to call once after the
// final Export.
func (e *InfluxExporter) Close() {
	e.client.Close()
}
