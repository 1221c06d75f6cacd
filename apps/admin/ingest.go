package main

import (
	"context"
	"fmt"
	"os"
)

// ingest runs a CSV file through the ingestion pipeline and prints the report.
func (cli *commandLine) ingest(path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	report, err := cli.ingestSvc.IngestCSV(context.Background(), string(body))
	if err != nil {
		return err
	}
	fmt.Printf("ingested %s: %d rows (%d inserted, %d updated, %d failed)\n",
		path, report.TotalRows, report.Inserted, report.Updated, len(report.Errors))
	for _, rowErr := range report.Errors {
		fmt.Printf("  row %d: %s\n", rowErr.Row, rowErr.Error)
	}
	return nil
}
