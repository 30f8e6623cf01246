package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

var recordNamespace = uuid.MustParse("7f1d3c52-5a8e-4e0b-9d7c-2b6f0c8e4a91")

// PlacementRecord is a denormalised ledger entry used for reporting
type PlacementRecord struct {
	ID           string    `json:"id"`
	StudentName  string    `json:"studentName"`
	RollNumber   string    `json:"rollNumber"`
	Department   string    `json:"department"`
	CompanyName  string    `json:"companyName"`
	Package      string    `json:"package"`
	AcademicYear string    `json:"academicYear"`
	CreatedBy    string    `json:"createdBy,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RecordID derives the ledger id from roll number, company and academic year,
// so the same placement always maps to the same document.
func RecordID(rollNumber, companyName, academicYear string) string {
	key := strings.Join([]string{
		strings.ToUpper(strings.TrimSpace(rollNumber)),
		strings.ToLower(strings.TrimSpace(companyName)),
		strings.TrimSpace(academicYear),
	}, "|")
	return uuid.NewSHA1(recordNamespace, []byte(key)).String()
}
