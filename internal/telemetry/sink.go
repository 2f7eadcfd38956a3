// Package telemetry publishes poll results to pluggable destinations:
// console, partitioned JSON files, Kafka, or Parquet archives (local or S3).
// Telemetry is fire-and-forget; a sink failure never fails a poll.
package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/witnessmenow/bridge-traffic-display/internal/models"
)

const (
	TopicSamples      = "traffic_samples"
	TopicColorChanges = "color_changes"
)

// Sink receives serialized sample events keyed by topic.
type Sink interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// SampleEvent is the wire form of one poll result.
type SampleEvent struct {
	ID                   string `json:"id"`
	Timestamp            int64  `json:"timestamp"`
	Origin               string `json:"origin"`
	Destination          string `json:"destination"`
	DurationSec          int    `json:"duration_sec"`
	DurationInTrafficSec int    `json:"duration_in_traffic_sec"`
	DeltaSec             int    `json:"delta_sec"`
	Color                string `json:"color"`
}

func NewSampleEvent(sample models.TrafficSample, color models.ColorState) SampleEvent {
	return SampleEvent{
		ID:                   sample.ID,
		Timestamp:            sample.SampledAt.Unix(),
		Origin:               sample.Route.Origin.String(),
		Destination:          sample.Route.Destination.String(),
		DurationSec:          sample.DurationWithoutTraffic,
		DurationInTrafficSec: sample.DurationWithTraffic,
		DeltaSec:             sample.Delta(),
		Color:                color.String(),
	}
}

// NopSink discards everything. Used when telemetry is not configured.
type NopSink struct{}

func (NopSink) WriteMessage(string, []byte) error { return nil }
func (NopSink) Close() error                      { return nil }

// ConsoleSink writes one line per event, prefixed with the topic.
type ConsoleSink struct {
	w io.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (c *ConsoleSink) WriteMessage(topic string, msg []byte) error {
	_, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg)
	return err
}

func (c *ConsoleSink) Close() error { return nil }

// JSONFileSink appends newline-delimited JSON under
// <base>/<folder>/<topic>/year=/month=/day=/hour= partitions.
type JSONFileSink struct {
	basePath string
	folder   string
	files    map[string]*os.File
}

func NewJSONFileSink(basePath, folder string) *JSONFileSink {
	return &JSONFileSink{
		basePath: basePath,
		folder:   folder,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONFileSink) WriteMessage(topic string, msg []byte) error {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}

	timestamp, ok := event["timestamp"].(float64)
	if !ok {
		return fmt.Errorf("invalid timestamp")
	}

	fullPath := filepath.Join(j.basePath, j.folder, topic, partitionPath(int64(timestamp)))
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return err
	}

	fileKey := topic + "_" + partitionPath(int64(timestamp))
	file, ok := j.files[fileKey]
	if !ok {
		var err error
		file, err = os.OpenFile(filepath.Join(fullPath, "data.json"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err := file.WriteString("\n")
	return err
}

func (j *JSONFileSink) Close() error {
	for _, file := range j.files {
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

func partitionPath(unix int64) string {
	t := time.Unix(unix, 0)
	year, month, day := t.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, t.Hour())
}

// ForConfig picks the sink the config asks for. Kafka wins over file formats
// when both are set.
func ForConfig(cfg *models.Config) (Sink, error) {
	if cfg.KafkaEnabled {
		return NewKafkaSink(cfg.KafkaBrokerList)
	}

	switch cfg.OutputFormat {
	case "":
		return NopSink{}, nil
	case "console":
		return NewConsoleSink(os.Stdout), nil
	case "json":
		return NewJSONFileSink(cfg.OutputPath, cfg.OutputFolder), nil
	case "parquet":
		return NewParquetSink(cfg)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.OutputFormat)
	}
}
