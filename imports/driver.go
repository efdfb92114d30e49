package imports

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"lead-import-export/common"
	"lead-import-export/leads"
	"lead-import-export/parsers"

	"github.com/gosimple/slug"
)

// LeadStore is the persistence collaborator the driver writes through
type LeadStore interface {
	CountByOwner(ownerID string) (int64, error)
	CreateBatch(batch []leads.LeadModel) error
	ExistingHandles(ownerID string, candidates []string) ([]string, error)
}

// Result summarizes one import run. When Err is set, BatchesCommitted tells
// how far the run got; committed batches stay committed.
type Result struct {
	TotalRows         int
	Created           int
	SkippedDuplicates int
	DefaultedFields   int
	BatchesPlanned    int
	BatchesCommitted  int
	ArtifactFiles     []string // offline mode only
	Report            common.RowReport
	Err               error
}

// Driver orchestrates the lead import pipeline: parse, map, resume-cursor
// lookup, batch planning, then sequential persistence or SQL rendering.
type Driver struct {
	store     LeadStore
	batchSize int
	year      int
}

// NewDriver builds a driver around an injected store. year is the calendar
// year assumed for the dataset's day/month contact dates.
func NewDriver(store LeadStore, batchSize, year int) *Driver {
	return &Driver{store: store, batchSize: batchSize, year: year}
}

// collect parses and maps the whole source into canonical leads
func (d *Driver) collect(ownerID string, source io.Reader, res *Result) []leads.LeadModel {
	rows, errs := parsers.ParseLeadRows(source)
	go func() {
		for err := range errs {
			log.Printf("import: skipping malformed line: %v", err)
		}
	}()

	var mapped []leads.LeadModel
	for row := range rows {
		res.TotalRows++
		mr := leads.MapRow(row, ownerID, d.year)
		res.DefaultedFields += mr.DefaultedFields
		res.Report.Issues = append(res.Report.Issues, mr.Issues...)
		mapped = append(mapped, mr.Lead)
	}
	return mapped
}

// Run imports the source through the store (online mode). Batches are
// submitted strictly sequentially; the first persistence failure halts the
// run and is reported with its batch number.
func (d *Driver) Run(ownerID string, source io.Reader) Result {
	var res Result
	mapped := d.collect(ownerID, source, &res)

	persisted, err := d.store.CountByOwner(ownerID)
	if err != nil {
		res.Err = fmt.Errorf("reading resume cursor: %w", err)
		return res
	}

	batches := PlanBatches(mapped, d.batchSize, int(persisted))
	res.BatchesPlanned = len(batches)

	for _, b := range batches {
		fresh, skipped, err := d.splitDuplicates(ownerID, b.Leads)
		if err != nil {
			res.Err = fmt.Errorf("batch %d: checking duplicates: %w", b.Number, err)
			return res
		}
		res.SkippedDuplicates += skipped

		if err := d.store.CreateBatch(fresh); err != nil {
			res.Err = fmt.Errorf("batch %d: %w", b.Number, err)
			return res
		}
		res.BatchesCommitted++
		res.Created += len(fresh)
		log.Printf("import: batch %d committed (%d created, %d duplicates)", b.Number, len(fresh), skipped)
	}

	return res
}

// splitDuplicates partitions a batch into leads to insert and leads whose
// contact handle the owner already has. Leads without a handle are always
// fresh; duplicates are a normal outcome, not an error.
func (d *Driver) splitDuplicates(ownerID string, batch []leads.LeadModel) ([]leads.LeadModel, int, error) {
	var candidates []string
	for _, l := range batch {
		if l.ContactHandle != nil {
			candidates = append(candidates, *l.ContactHandle)
		}
	}

	existing, err := d.store.ExistingHandles(ownerID, candidates)
	if err != nil {
		return nil, 0, err
	}

	known := make(map[string]bool, len(existing))
	for _, h := range existing {
		known[h] = true
	}

	fresh := make([]leads.LeadModel, 0, len(batch))
	skipped := 0
	for _, l := range batch {
		if l.ContactHandle != nil && known[*l.ContactHandle] {
			skipped++
			continue
		}
		fresh = append(fresh, l)
	}
	return fresh, skipped, nil
}

// Export renders the source into SQL artifacts instead of writing through
// the store (offline mode): one bulk-insert file per batch plus a final
// verification statement. label names the dataset and is slugified into the
// artifact filenames.
func (d *Driver) Export(ownerID string, source io.Reader, outDir, label string) Result {
	var res Result
	mapped := d.collect(ownerID, source, &res)

	persisted, err := d.store.CountByOwner(ownerID)
	if err != nil {
		res.Err = fmt.Errorf("reading resume cursor: %w", err)
		return res
	}

	batches := PlanBatches(mapped, d.batchSize, int(persisted))
	res.BatchesPlanned = len(batches)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		res.Err = err
		return res
	}

	prefix := slug.Make(label)
	for _, b := range batches {
		name := fmt.Sprintf("%s_batch_%03d.sql", prefix, b.Number)
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, []byte(leads.EmitInsert(b.Leads)), 0644); err != nil {
			res.Err = fmt.Errorf("batch %d: %w", b.Number, err)
			return res
		}
		res.BatchesCommitted++
		res.Created += len(b.Leads)
		res.ArtifactFiles = append(res.ArtifactFiles, name)
	}

	verify := fmt.Sprintf("%s_verify.sql", prefix)
	if err := os.WriteFile(filepath.Join(outDir, verify), []byte(leads.EmitVerification(ownerID)), 0644); err != nil {
		res.Err = err
		return res
	}
	res.ArtifactFiles = append(res.ArtifactFiles, verify)

	return res
}
