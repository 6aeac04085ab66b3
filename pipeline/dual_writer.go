package pipeline

import (
	"fmt"

	"auction-etl/models"
)

// DualWriter emits the bulk-load .dat files and the .csv inspection copy
// in one pass.
type DualWriter struct {
	datWriter *DatWriter
	csvWriter *CSVWriter
}

// NewDualWriter creates both writer sets under the same directory.
func NewDualWriter(dir, delim string) (*DualWriter, error) {
	datWriter, err := NewDatWriter(dir, delim)
	if err != nil {
		return nil, fmt.Errorf("create dat writer: %w", err)
	}

	csvWriter, err := NewCSVWriter(dir)
	if err != nil {
		datWriter.Close()
		return nil, fmt.Errorf("create csv writer: %w", err)
	}

	return &DualWriter{
		datWriter: datWriter,
		csvWriter: csvWriter,
	}, nil
}

// Write writes the tables in both formats.
func (dw *DualWriter) Write(tables *models.Batch) error {
	if err := dw.datWriter.Write(tables); err != nil {
		return fmt.Errorf("dat write failed: %w", err)
	}
	if err := dw.csvWriter.Write(tables); err != nil {
		return fmt.Errorf("csv write failed: %w", err)
	}
	return nil
}

// Close closes both writers.
func (dw *DualWriter) Close() error {
	var errs []error

	if err := dw.datWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("dat close failed: %w", err))
	}
	if err := dw.csvWriter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("csv close failed: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors: %v", errs)
	}
	return nil
}

// Validate validates both output sets.
func (dw *DualWriter) Validate() error {
	var errs []error

	if err := dw.datWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("dat validation failed: %w", err))
	}
	if err := dw.csvWriter.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("csv validation failed: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation errors: %v", errs)
	}
	return nil
}
