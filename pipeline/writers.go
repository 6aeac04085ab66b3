package pipeline

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"auction-etl/models"
)

// Table names double as output file basenames.
const (
	TableUsers      = "users"
	TableItems      = "items"
	TableCategories = "item_categories"
	TableBids       = "bids"
)

var tableColumns = map[string][]string{
	TableUsers:      {"user_id", "rating", "location", "country"},
	TableItems:      {"item_id", "name", "currently", "first_bid", "number_of_bids", "country", "started", "ends", "seller_user_id", "description"},
	TableCategories: {"item_id", "category_name"},
	TableBids:       {"bidder_user_id", "item_id", "bid_time", "bid_amount"},
}

var tableOrder = []string{TableUsers, TableItems, TableCategories, TableBids}

// OutputWriter defines the interface for table output.
type OutputWriter interface {
	Write(tables *models.Batch) error
	Close() error
	Validate() error
}

// DatWriter emits the bulk-load contract: one <table>.dat file per
// table, rows newline-terminated, every field double-quoted and joined
// by the delimiter. No header row is written; the downstream import
// maps columns positionally.
type DatWriter struct {
	dir   string
	delim string
	files map[string]*os.File
	bufs  map[string]*bufio.Writer
}

// NewDatWriter creates the four .dat files under dir.
func NewDatWriter(dir, delim string) (*DatWriter, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	dw := &DatWriter{
		dir:   dir,
		delim: delim,
		files: make(map[string]*os.File, len(tableOrder)),
		bufs:  make(map[string]*bufio.Writer, len(tableOrder)),
	}
	for _, table := range tableOrder {
		f, err := os.Create(filepath.Join(dir, table+".dat"))
		if err != nil {
			dw.Close()
			return nil, fmt.Errorf("create dat file: %w", err)
		}
		dw.files[table] = f
		dw.bufs[table] = bufio.NewWriter(f)
	}
	return dw, nil
}

// Write appends all rows to their table files.
func (dw *DatWriter) Write(tables *models.Batch) error {
	for _, u := range tables.Users {
		if err := dw.writeRow(TableUsers, u.Fields()); err != nil {
			return err
		}
	}
	for _, i := range tables.Items {
		if err := dw.writeRow(TableItems, i.Fields()); err != nil {
			return err
		}
	}
	for _, c := range tables.Categories {
		if err := dw.writeRow(TableCategories, c.Fields()); err != nil {
			return err
		}
	}
	for _, b := range tables.Bids {
		if err := dw.writeRow(TableBids, b.Fields()); err != nil {
			return err
		}
	}
	return nil
}

func (dw *DatWriter) writeRow(table string, fields []sql.NullString) error {
	buf := dw.bufs[table]
	for i, f := range fields {
		if i > 0 {
			if _, err := buf.WriteString(dw.delim); err != nil {
				return fmt.Errorf("write %s row: %w", table, err)
			}
		}
		if _, err := buf.WriteString(escapeField(f)); err != nil {
			return fmt.Errorf("write %s row: %w", table, err)
		}
	}
	if err := buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("write %s row: %w", table, err)
	}
	return nil
}

// Close flushes and closes every table file.
func (dw *DatWriter) Close() error {
	var firstErr error
	for _, table := range tableOrder {
		if buf, ok := dw.bufs[table]; ok {
			if err := buf.Flush(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("flush %s: %w", table, err)
			}
		}
		if f, ok := dw.files[table]; ok {
			if err := f.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close %s: %w", table, err)
			}
		}
	}
	return firstErr
}

// Validate ensures all four table files exist on disk. Empty files are
// legitimate: a dataset can have no bids.
func (dw *DatWriter) Validate() error {
	for _, table := range tableOrder {
		if _, err := os.Stat(filepath.Join(dw.dir, table+".dat")); err != nil {
			return fmt.Errorf("stat %s output: %w", table, err)
		}
	}
	return nil
}

// escapeField renders one field for the load contract: wrapped in double
// quotes, embedded quotes doubled, newlines and carriage returns replaced
// by single spaces. Null serializes as an empty quoted field.
func escapeField(f sql.NullString) string {
	if !f.Valid {
		return `""`
	}
	s := strings.ReplaceAll(f.String, `"`, `""`)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return `"` + s + `"`
}

// CSVWriter emits an RFC-4180 copy of the tables with header rows, for
// inspection rather than bulk loading.
type CSVWriter struct {
	dir     string
	files   map[string]*os.File
	writers map[string]*csv.Writer
}

// NewCSVWriter creates the four .csv files under dir and writes their
// header rows.
func NewCSVWriter(dir string) (*CSVWriter, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}

	cw := &CSVWriter{
		dir:     dir,
		files:   make(map[string]*os.File, len(tableOrder)),
		writers: make(map[string]*csv.Writer, len(tableOrder)),
	}
	for _, table := range tableOrder {
		f, err := os.Create(filepath.Join(dir, table+".csv"))
		if err != nil {
			cw.Close()
			return nil, fmt.Errorf("create csv file: %w", err)
		}
		w := csv.NewWriter(f)
		if err := w.Write(tableColumns[table]); err != nil {
			f.Close()
			cw.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
		cw.files[table] = f
		cw.writers[table] = w
	}
	return cw, nil
}

// Write appends all rows to their table files.
func (cw *CSVWriter) Write(tables *models.Batch) error {
	for _, u := range tables.Users {
		if err := cw.writeRow(TableUsers, u.Fields()); err != nil {
			return err
		}
	}
	for _, i := range tables.Items {
		if err := cw.writeRow(TableItems, i.Fields()); err != nil {
			return err
		}
	}
	for _, c := range tables.Categories {
		if err := cw.writeRow(TableCategories, c.Fields()); err != nil {
			return err
		}
	}
	for _, b := range tables.Bids {
		if err := cw.writeRow(TableBids, b.Fields()); err != nil {
			return err
		}
	}
	return nil
}

func (cw *CSVWriter) writeRow(table string, fields []sql.NullString) error {
	record := make([]string, len(fields))
	for i, f := range fields {
		record[i] = f.String // zero value for null
	}
	if err := cw.writers[table].Write(record); err != nil {
		return fmt.Errorf("write %s csv row: %w", table, err)
	}
	return nil
}

// Close flushes and closes every table file.
func (cw *CSVWriter) Close() error {
	var firstErr error
	for _, table := range tableOrder {
		if w, ok := cw.writers[table]; ok {
			w.Flush()
			if err := w.Error(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("flush %s csv: %w", table, err)
			}
		}
		if f, ok := cw.files[table]; ok {
			if err := f.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close %s csv: %w", table, err)
			}
		}
	}
	return firstErr
}

// Validate ensures every table file is intact on disk.
func (cw *CSVWriter) Validate() error {
	for _, table := range tableOrder {
		if _, err := os.Stat(filepath.Join(cw.dir, table+".csv")); err != nil {
			return fmt.Errorf("stat %s output: %w", table, err)
		}
	}
	return nil
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}
