package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"vetdesk/internal/clinic"
)

// SchemaVersion identifies the CSV export format version. Increment when
// adding columns or changing the format.
const SchemaVersion = "1"

// csvColumns defines the column order for treatment-history exports.
var csvColumns = []string{
	"schemaVersion",
	"customerName",
	"petName",
	"performedAt",
	"description",
	"medication",
	"priceUsd",
	"nextDueAt",
	"createdAt",
}

// CSVExporter exports a customer's treatment history to CSV.
type CSVExporter struct{}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Export writes the records to the given writer in CSV format.
func (e *CSVExporter) Export(w io.Writer, records []clinic.TreatmentRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(e.recordToRow(record)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return writer.Error()
}

func (e *CSVExporter) recordToRow(record clinic.TreatmentRecord) []string {
	row := make([]string, len(csvColumns))
	row[0] = SchemaVersion
	row[1] = record.CustomerName
	row[2] = record.PetName
	row[3] = record.PerformedAt.UTC().Format(time.RFC3339)
	row[4] = record.Description
	row[5] = record.Medication
	if record.PriceCents != nil {
		row[6] = strconv.FormatFloat(float64(*record.PriceCents)/100, 'f', 2, 64)
	}
	if record.NextDueAt != nil {
		row[7] = record.NextDueAt.UTC().Format(time.RFC3339)
	}
	row[8] = record.CreatedAt.UTC().Format(time.RFC3339)
	return row
}
