package dto

// Import row outcomes
const (
	ImportCreated          = "CREATED"
	ImportSkippedDuplicate = "SKIPPED_DUPLICATE"
	ImportFailed           = "FAILED"
)

// SheetImportRequest points an import at a Google Sheet
type SheetImportRequest struct {
	SpreadsheetID string `json:"spreadsheetId" binding:"required"`
	Range         string `json:"range"`
}

// ImportRowResult is the outcome of one spreadsheet row. Row is 1-based and
// counts the header row.
type ImportRowResult struct {
	Row    int    `json:"row"`
	Key    string `json:"key"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// ImportReport summarises a bulk import
type ImportReport struct {
	Kind    string            `json:"kind"`
	Total   int               `json:"total"`
	Created int               `json:"created"`
	Skipped int               `json:"skipped"`
	Failed  int               `json:"failed"`
	Rows    []ImportRowResult `json:"rows"`

	// Interrupted is set when the request deadline stopped the batch early
	Interrupted bool `json:"interrupted,omitempty"`
}

// Add records a row outcome and updates the totals
func (r *ImportReport) Add(res ImportRowResult) {
	r.Rows = append(r.Rows, res)
	r.Total++
	switch res.Status {
	case ImportCreated:
		r.Created++
	case ImportSkippedDuplicate:
		r.Skipped++
	default:
		r.Failed++
	}
}
