// Package parsers provides a streaming parser for the legacy lead sheets.
//
// The parser is designed for memory-efficient processing of large files by
// streaming rows through a Go channel, avoiding the need to load entire
// files into memory.
//
// It returns two channels:
//   - A rows channel that streams parsed RawRow values
//   - An errors channel for non-fatal parsing errors
//
// Callers must consume both channels to avoid goroutine leaks.
//
// Example usage:
//
//	file, _ := os.Open("leads.csv")
//	defer file.Close()
//	rows, errs := parsers.ParseLeadRows(file)
//
//	go func() {
//	    for err := range errs {
//	        log.Printf("CSV error: %v", err)
//	    }
//	}()
//
//	for row := range rows {
//	    // Process each RawRow
//	    fmt.Println(row.Name)
//	}
package parsers
