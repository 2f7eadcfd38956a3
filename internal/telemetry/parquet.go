package telemetry

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/witnessmenow/bridge-traffic-display/internal/cloudwriter"
	"github.com/witnessmenow/bridge-traffic-display/internal/models"
)

// parquetSampleRecord is the archive schema; both topics share it.
type parquetSampleRecord struct {
	ID                   string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Timestamp            int64  `parquet:"name=timestamp, type=INT64"`
	Origin               string `parquet:"name=origin, type=BYTE_ARRAY, convertedtype=UTF8"`
	Destination          string `parquet:"name=destination, type=BYTE_ARRAY, convertedtype=UTF8"`
	DurationSec          int32  `parquet:"name=duration_sec, type=INT32"`
	DurationInTrafficSec int32  `parquet:"name=duration_in_traffic_sec, type=INT32"`
	DeltaSec             int32  `parquet:"name=delta_sec, type=INT32"`
	Color                string `parquet:"name=color, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// ParquetSink archives sample events as Parquet, one file per topic, locally
// or in a cloud bucket.
type ParquetSink struct {
	mu       sync.Mutex
	basePath string
	folder   string
	writers  map[string]*writer.ParquetWriter
	files    map[string]source.ParquetFile

	cloudFactory cloudwriter.Factory
	bucketName   string
}

func NewParquetSink(cfg *models.Config) (*ParquetSink, error) {
	p := &ParquetSink{
		basePath: cfg.OutputPath,
		folder:   cfg.OutputFolder,
		writers:  make(map[string]*writer.ParquetWriter),
		files:    make(map[string]source.ParquetFile),
	}

	if cfg.OutputDestination != "local" {
		switch cfg.CloudStorage.Provider {
		case "s3":
			factory, err := cloudwriter.NewS3Factory(cfg.CloudStorage.Region)
			if err != nil {
				return nil, fmt.Errorf("create cloud writer factory: %w", err)
			}
			p.cloudFactory = factory
			p.bucketName = cfg.CloudStorage.BucketName
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.CloudStorage.Provider)
		}
	}

	return p, nil
}

func (p *ParquetSink) WriteMessage(topic string, msg []byte) error {
	var event SampleEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Errorf("decode sample event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	pw, ok := p.writers[topic]
	if !ok {
		var err error
		pw, err = p.newWriter(topic)
		if err != nil {
			return err
		}
		p.writers[topic] = pw
	}

	rec := parquetSampleRecord{
		ID:                   event.ID,
		Timestamp:            event.Timestamp,
		Origin:               event.Origin,
		Destination:          event.Destination,
		DurationSec:          int32(event.DurationSec),
		DurationInTrafficSec: int32(event.DurationInTrafficSec),
		DeltaSec:             int32(event.DeltaSec),
		Color:                event.Color,
	}
	if err := pw.Write(rec); err != nil {
		return fmt.Errorf("write parquet record: %w", err)
	}
	return nil
}

func (p *ParquetSink) newWriter(topic string) (*writer.ParquetWriter, error) {
	var fw source.ParquetFile
	var err error

	if p.cloudFactory != nil {
		objectPath := filepath.Join(p.folder, topic, "data.parquet")
		cw, err := p.cloudFactory.NewWriter(p.bucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("create cloud file writer: %w", err)
		}
		fw = newCloudParquetFile(cw)
	} else {
		filePath := filepath.Join(p.basePath, p.folder, topic+".parquet")
		fw, err = local.NewLocalFileWriter(filePath)
		if err != nil {
			return nil, fmt.Errorf("create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(parquetSampleRecord), 2)
	if err != nil {
		return nil, fmt.Errorf("create parquet writer: %w", err)
	}

	p.files[topic] = fw
	return pw, nil
}

func (p *ParquetSink) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, pw := range p.writers {
		if err := pw.WriteStop(); err != nil && firstErr == nil {
			firstErr = err
		}
		if fw, ok := p.files[topic]; ok {
			if err := fw.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	p.writers = make(map[string]*writer.ParquetWriter)
	p.files = make(map[string]source.ParquetFile)
	return firstErr
}

// cloudParquetFile adapts a cloud writer to the parquet source interface.
// Cloud objects are write-once: reads and seeks from the end are not
// supported.
type cloudParquetFile struct {
	cloudWriter cloudwriter.Writer
	offset      int64
}

func newCloudParquetFile(cw cloudwriter.Writer) *cloudParquetFile {
	return &cloudParquetFile{cloudWriter: cw}
}

func (c *cloudParquetFile) Open(name string) (source.ParquetFile, error)   { return c, nil }
func (c *cloudParquetFile) Create(name string) (source.ParquetFile, error) { return c, nil }

func (c *cloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *cloudParquetFile) Read(p []byte) (int, error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *cloudParquetFile) Write(p []byte) (int, error) {
	return c.cloudWriter.Write(p)
}

func (c *cloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}
