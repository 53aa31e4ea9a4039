package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Octrafic/qakit/internal/infra/storage"
)

// Column names of the test matrix. Matching is case-sensitive.
const (
	ColumnStatus      = "Status"
	ColumnPriority    = "Priority"
	ColumnFeature     = "Feature"
	ColumnRole        = "Role"
	ColumnDeviceSize  = "Device Size"
	ColumnDescription = "Test Case Description"
	ColumnTicket      = "Ticket Link"
)

// RequiredColumns lists every column the analyzer reads
var RequiredColumns = []string{
	ColumnStatus,
	ColumnPriority,
	ColumnFeature,
	ColumnRole,
	ColumnDeviceSize,
	ColumnDescription,
	ColumnTicket,
}

// ErrMissingColumns is returned when the header lacks required columns
var ErrMissingColumns = errors.New("missing required columns")

// Record is one row of the test matrix
type Record struct {
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	Feature     string `json:"feature"`
	Role        string `json:"role"`
	DeviceSize  string `json:"device_size"`
	Description string `json:"description"`
	Ticket      string `json:"ticket,omitempty"`
}

// LoadFile reads the test matrix at path
func LoadFile(path string) ([]Record, error) {
	if err := storage.ValidateFilePath(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	records, err := Load(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Load parses CSV with a header row. The header is checked against
// RequiredColumns before any row is read; extra columns are ignored.
func Load(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(RequiredColumns, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	// a repeated column name resolves to its rightmost cell present in the row
	index := make(map[string][]int, len(header))
	for i, name := range header {
		index[name] = append(index[name], i)
	}

	var missing []string
	for _, name := range RequiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	field := func(row []string, name string) string {
		cols := index[name]
		for j := len(cols) - 1; j >= 0; j-- {
			if cols[j] < len(row) {
				return row[cols[j]]
			}
		}
		return ""
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}

		records = append(records, Record{
			Status:      field(row, ColumnStatus),
			Priority:    field(row, ColumnPriority),
			Feature:     field(row, ColumnFeature),
			Role:        field(row, ColumnRole),
			DeviceSize:  field(row, ColumnDeviceSize),
			Description: field(row, ColumnDescription),
			Ticket:      field(row, ColumnTicket),
		})
	}

	return records, nil
}
