// Package storage persists extraction results as per-entity, timestamped
// artifacts. Every write goes through a temp file in the target
// directory followed by a rename, so readers never observe a partial
// artifact.
//
// Layout: <root>/<ENTITY>/<kind>_<ENTITY>_<YYYY-MM-DD_HH-MM-SS>.<ext>
// where ext follows the configured format (csv, parquet, json).
// Free-text results are always written as .txt, whatever the format.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/use-agent/finspider/config"
	"github.com/use-agent/finspider/models"
)

// Sink writes results under a single artifact root.
type Sink struct {
	root   string
	format string
	logger *slog.Logger

	now func() time.Time
}

// NewSink creates a sink for the configured root and format. The format
// is assumed validated by config.Validate.
func NewSink(cfg config.OutputConfig, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{
		root:   cfg.Dir,
		format: cfg.Format,
		logger: logger,
		now:    time.Now,
	}
}

// Save persists one result for an entity and returns the artifact path.
// Failures carry the STORAGE_FAILED code.
func (s *Sink) Save(entity string, res *models.Result) (string, error) {
	entity = strings.ToUpper(strings.TrimSpace(entity))
	dir := filepath.Join(s.root, entity)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", storageErr("creating "+dir, err)
	}

	base := fmt.Sprintf("%s_%s_%s", res.Dataset, entity, s.now().Format("2006-01-02_15-04-05"))
	ext := s.ext(res)
	name := base + "." + ext
	path := filepath.Join(dir, name)
	// Two writes within one second must still yield two artifacts.
	for n := 2; ; n++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			break
		}
		name = fmt.Sprintf("%s_%d.%s", base, n, ext)
		path = filepath.Join(dir, name)
	}

	tmp, err := os.CreateTemp(dir, name+".tmp-*")
	if err != nil {
		return "", storageErr("creating temp file in "+dir, err)
	}
	defer os.Remove(tmp.Name())

	if err := s.encode(tmp, res); err != nil {
		tmp.Close()
		return "", storageErr("encoding "+name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", storageErr("closing "+name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", storageErr("publishing "+name, err)
	}

	s.logger.Debug("artifact written",
		"entity", entity, "dataset", res.Dataset, "path", path, "rows", res.RowCount())
	return path, nil
}

func (s *Sink) ext(res *models.Result) string {
	if res.Shape == models.ShapeText {
		return "txt"
	}
	return s.format
}

func (s *Sink) encode(w io.Writer, res *models.Result) error {
	if res.Shape == models.ShapeText {
		_, err := io.WriteString(w, res.Text+"\n")
		return err
	}
	switch s.format {
	case "csv":
		return encodeCSV(w, res)
	case "json":
		return encodeJSON(w, res)
	case "parquet":
		return encodeParquet(w, res)
	default:
		return fmt.Errorf("unknown output format %q", s.format)
	}
}

// tabular normalizes a result to header + rows. List results become a
// single "ticker" column.
func tabular(res *models.Result) (columns []string, rows [][]string) {
	if res.Shape == models.ShapeList {
		columns = []string{"ticker"}
		rows = make([][]string, len(res.Values))
		for i, v := range res.Values {
			rows[i] = []string{v}
		}
		return columns, rows
	}
	return res.Columns, res.Rows
}

func encodeCSV(w io.Writer, res *models.Result) error {
	columns, rows := tabular(res)
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonArtifact keeps column order explicit; JSON objects would not.
type jsonArtifact struct {
	Dataset     models.Dataset `json:"dataset"`
	ExtractedAt time.Time      `json:"extracted_at"`
	Columns     []string       `json:"columns"`
	Rows        [][]string     `json:"rows"`
}

func encodeJSON(w io.Writer, res *models.Result) error {
	columns, rows := tabular(res)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonArtifact{
		Dataset:     res.Dataset,
		ExtractedAt: res.ExtractedAt,
		Columns:     columns,
		Rows:        rows,
	})
}

func storageErr(msg string, err error) error {
	return models.NewScrapeError(models.ErrCodeStorage, msg, err)
}
