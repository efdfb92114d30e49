package imports

import (
	"fmt"
	"testing"

	"lead-import-export/leads"

	"github.com/stretchr/testify/assert"
)

func makeLeads(n int) []leads.LeadModel {
	out := make([]leads.LeadModel, n)
	for i := range out {
		out[i] = leads.LeadModel{
			OwnerID: "owner-1",
			Name:    fmt.Sprintf("Lead %02d", i+1),
		}
	}
	return out
}

func batchSizes(batches []Batch) []int {
	sizes := make([]int, len(batches))
	for i, b := range batches {
		sizes[i] = len(b.Leads)
	}
	return sizes
}

func TestPlanBatches_SplitsElevenIntoThree(t *testing.T) {
	batches := PlanBatches(makeLeads(11), 5, 0)

	assert.Equal(t, []int{5, 5, 1}, batchSizes(batches))
	assert.Equal(t, 1, batches[0].Number)
	assert.Equal(t, 2, batches[1].Number)
	assert.Equal(t, 3, batches[2].Number)
}

func TestPlanBatches_ResumeSkipsPersistedAndContinuesNumbering(t *testing.T) {
	records := makeLeads(11)
	batches := PlanBatches(records, 5, 5)

	assert.Equal(t, []int{5, 1}, batchSizes(batches))
	assert.Equal(t, 2, batches[0].Number)
	assert.Equal(t, 3, batches[1].Number)

	// Rows 6-11 exactly, none repeated or skipped
	var names []string
	for _, b := range batches {
		for _, l := range b.Leads {
			names = append(names, l.Name)
		}
	}
	assert.Equal(t, []string{"Lead 06", "Lead 07", "Lead 08", "Lead 09", "Lead 10", "Lead 11"}, names)
}

func TestPlanBatches_Deterministic(t *testing.T) {
	records := makeLeads(23)

	a := PlanBatches(records, 7, 7)
	b := PlanBatches(records, 7, 7)
	assert.Equal(t, a, b)
}

func TestPlanBatches_ExactMultiple(t *testing.T) {
	batches := PlanBatches(makeLeads(10), 5, 0)
	assert.Equal(t, []int{5, 5}, batchSizes(batches))
}

func TestPlanBatches_EdgeCases(t *testing.T) {
	records := makeLeads(3)

	assert.Nil(t, PlanBatches(records, 0, 0), "non-positive batch size")
	assert.Nil(t, PlanBatches(records, 5, -1), "negative cursor")
	assert.Nil(t, PlanBatches(records, 5, 3), "everything already persisted")
	assert.Nil(t, PlanBatches(records, 5, 4), "cursor past the input")
	assert.Nil(t, PlanBatches(nil, 5, 0), "no input")

	single := PlanBatches(records, 5, 0)
	assert.Equal(t, []int{3}, batchSizes(single), "single short batch")
	assert.Equal(t, 1, single[0].Number)
}
