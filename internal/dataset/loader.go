package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const fetchTimeout = 30 * time.Second

// Load reads a dataset from a local CSV file or, when source is an
// http(s) URL, downloads it first.
func Load(ctx context.Context, source string) (*Dataset, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		body, err := fetchCSV(ctx, source)
		if err != nil {
			return nil, err
		}
		return readCSV(bytes.NewReader(body), source)
	}
	return LoadCSV(source)
}

// LoadCSV reads a dataset from a local CSV file with a header row.
func LoadCSV(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return readCSV(file, path)
}

func readCSV(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	indices := make(map[string]int, len(header))
	columns := make([]string, len(header))
	for i, col := range header {
		name := strings.TrimSpace(col)
		indices[name] = i
		columns[i] = name
	}

	ds := &Dataset{Columns: columns}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		row := make(map[string]string, len(columns))
		for name, idx := range indices {
			if idx < len(record) {
				row[name] = strings.TrimSpace(record[idx])
			}
		}
		ds.Rows = append(ds.Rows, row)
	}

	log.Info().
		Str("source", source).
		Int("rows", len(ds.Rows)).
		Int("columns", len(ds.Columns)).
		Msg("dataset loaded")

	return ds, nil
}

func fetchCSV(ctx context.Context, url string) ([]byte, error) {
	client := resty.New().
		SetTimeout(fetchTimeout).
		SetRetryCount(3).
		SetRetryWaitTime(500 * time.Millisecond)

	resp, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset from %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch dataset from %s: status %s", url, resp.Status())
	}

	log.Info().Str("url", url).Int("bytes", len(resp.Body())).Msg("dataset downloaded")
	return resp.Body(), nil
}
