// Package export renders tabular datasets as CSV or PDF documents.
package export

import (
	"fmt"
	"strings"
)

// Format selects an output encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat accepts "csv" or "pdf" in any case. Empty defaults to CSV.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", value)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Column describes one output column. Numeric columns are right aligned in PDFs.
type Column struct {
	Key     string
	Title   string
	Numeric bool
}

// Dataset defines tabular export content.
type Dataset struct {
	Title    string
	Subtitle string
	Columns  []Column
	Rows     []map[string]string
}

// File is a rendered document.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Renderer encodes a dataset.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}

// Render encodes data in format and names the file after base.
func Render(format Format, base string, data Dataset) (*File, error) {
	var renderer Renderer
	switch format {
	case FormatCSV:
		renderer = NewCSVExporter()
	case FormatPDF:
		renderer = NewPDFExporter()
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	payload, err := renderer.Render(data)
	if err != nil {
		return nil, err
	}
	return &File{Name: base + "." + string(format), ContentType: format.ContentType(), Data: payload}, nil
}

func (d Dataset) validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset requires at least one column")
	}
	return nil
}
