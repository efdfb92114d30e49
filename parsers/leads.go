package parsers

import (
	"encoding/csv"
	"io"
	"strings"
)

// RawRow is one data line of the legacy lead sheet in its fixed column
// order. LineNumber is the 1-based position in the source file (the header
// is line 1) and exists only for issue reporting.
type RawRow struct {
	LineNumber     int
	ContactDate    string
	Name           string
	ContactHandle  string
	Source         string
	BudgetSent     string
	Outcome        string
	ContactQuality string
	ClosedValue    string
	Note           string
}

// rawRowColumns is the fixed column count of the legacy sheet
const rawRowColumns = 9

// ParseLeadRows reads the legacy lead sheet from an io.Reader and streams
// rows via channel. The header line, blank lines, and noise rows whose date
// and name columns are both empty are skipped. Quoted fields may contain the
// delimiter and doubled quotes.
// Returns two channels: one for rows, one for non-fatal parse errors.
// Caller must consume both channels to avoid goroutine leak.
func ParseLeadRows(reader io.Reader) (<-chan RawRow, <-chan error) {
	rows := make(chan RawRow, 100) // Buffered for better throughput
	errs := make(chan error, 1)

	go func() {
		defer close(rows)
		defer close(errs)

		csvReader := csv.NewReader(reader)
		csvReader.ReuseRecord = true   // Reuse slice for better performance
		csvReader.FieldsPerRecord = -1 // Allow variable number of fields

		// Read and discard the header line
		if _, err := csvReader.Read(); err != nil {
			if err != io.EOF {
				errs <- err
			}
			return
		}

		lineNum := 1
		for {
			record, err := csvReader.Read()
			lineNum++
			if err == io.EOF {
				break
			}
			if err != nil {
				errs <- err
				continue // Skip malformed rows, continue processing
			}

			cols := make([]string, rawRowColumns)
			for i := 0; i < rawRowColumns && i < len(record); i++ {
				cols[i] = strings.TrimSpace(record[i])
			}

			row := RawRow{
				LineNumber:     lineNum,
				ContactDate:    cols[0],
				Name:           cols[1],
				ContactHandle:  cols[2],
				Source:         cols[3],
				BudgetSent:     cols[4],
				Outcome:        cols[5],
				ContactQuality: cols[6],
				ClosedValue:    cols[7],
				Note:           cols[8],
			}

			// Rows without a date or a name carry no lead
			if row.ContactDate == "" && row.Name == "" {
				continue
			}

			rows <- row
		}
	}()

	return rows, errs
}
