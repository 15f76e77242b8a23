package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tealeg/xlsx"
)

// Export formats accepted by HistoryStore.Export.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var exportHeaders = []string{"id", "videoId", "url", "title", "cover", "downloadUrl", "author", "createdAt"}

// exportHistory renders items in the requested format and returns the bytes
// plus the matching content type.
func exportHistory(items []HistoryItem, format string) ([]byte, string, error) {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("encode export: %w", err)
		}
		return data, "application/json", nil

	case FormatCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(exportHeaders); err != nil {
			return nil, "", err
		}
		for _, item := range items {
			record := []string{
				item.ID, item.VideoID, item.URL, item.Title,
				item.Cover, item.DownloadURL, item.Author,
				item.CreatedAt.Format(time.RFC3339),
			}
			if err := w.Write(record); err != nil {
				return nil, "", err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "text/csv", nil

	case FormatXLSX:
		file := xlsx.NewFile()
		sheet, err := file.AddSheet("History")
		if err != nil {
			return nil, "", err
		}

		headerRow := sheet.AddRow()
		for _, h := range exportHeaders {
			headerRow.AddCell().Value = h
		}
		for _, item := range items {
			row := sheet.AddRow()
			row.AddCell().Value = item.ID
			row.AddCell().Value = item.VideoID
			row.AddCell().Value = item.URL
			row.AddCell().Value = item.Title
			row.AddCell().Value = item.Cover
			row.AddCell().Value = item.DownloadURL
			row.AddCell().Value = item.Author
			row.AddCell().Value = item.CreatedAt.Format(time.RFC3339)
		}

		var buf bytes.Buffer
		if err := file.Write(&buf); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	default:
		return nil, "", fmt.Errorf("unsupported export format: %s", format)
	}
}
