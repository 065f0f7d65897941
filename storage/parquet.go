package storage

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/use-agent/finspider/models"
)

// encodeParquet writes a result with a schema built from its columns.
// Column sets vary per dataset (and, for statements, per ticker), so
// the schema cannot be a static Go struct; everything is written as
// optional UTF-8 strings.
func encodeParquet(w io.Writer, res *models.Result) error {
	columns, rows := tabular(res)
	if len(columns) == 0 {
		return fmt.Errorf("parquet artifact needs at least one column")
	}

	group := parquet.Group{}
	for _, c := range columns {
		group[c] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema(string(res.Dataset), group)

	pw := parquet.NewGenericWriter[map[string]any](w, schema)
	records := make([]map[string]any, len(rows))
	for i, row := range rows {
		rec := make(map[string]any, len(columns))
		for j, c := range columns {
			rec[c] = row[j]
		}
		records[i] = rec
	}
	if len(records) > 0 {
		if _, err := pw.Write(records); err != nil {
			return err
		}
	}
	return pw.Close()
}
