package imports

import "lead-import-export/leads"

// Batch is one fixed-size group of leads submitted as a single insert group
type Batch struct {
	Number int
	Leads  []leads.LeadModel
}

// PlanBatches skips the first alreadyPersisted records and partitions the
// remainder into consecutive batches of batchSize (the last may be shorter).
// Numbering is 1-based and continues past the full batches the persisted
// count already covers, so a rerun after a partial failure yields
// non-overlapping batch numbers.
//
// Callers must present records in the same stable order every run; the plan
// itself is deterministic.
func PlanBatches(records []leads.LeadModel, batchSize, alreadyPersisted int) []Batch {
	if batchSize <= 0 || alreadyPersisted < 0 || alreadyPersisted >= len(records) {
		return nil
	}

	remaining := records[alreadyPersisted:]
	startNumber := alreadyPersisted/batchSize + 1

	var batches []Batch
	for i := 0; i < len(remaining); i += batchSize {
		end := i + batchSize
		if end > len(remaining) {
			end = len(remaining)
		}
		batches = append(batches, Batch{
			Number: startNumber + i/batchSize,
			Leads:  remaining[i:end],
		})
	}

	return batches
}
