package dto

import "github.com/yigit/placementportal/internal/app/models"

// PlacementRecordRequest creates or replaces a ledger entry
type PlacementRecordRequest struct {
	StudentName  string `json:"studentName" binding:"required,max=100"`
	RollNumber   string `json:"rollNumber" binding:"required,max=20"`
	Department   string `json:"department" binding:"required,max=50"`
	CompanyName  string `json:"companyName" binding:"required,max=200"`
	Package      string `json:"package" binding:"required,max=50"`
	AcademicYear string `json:"academicYear" binding:"required,max=20"`
}

// RecordListQuery filters the ledger
type RecordListQuery struct {
	Department   string `form:"department"`
	AcademicYear string `form:"academicYear"`
	CompanyName  string `form:"companyName"`
	Search       string `form:"search"`
}

// CountEntry is one bucket of a summary
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RecordSummary aggregates the ledger
type RecordSummary struct {
	Total          int                     `json:"total"`
	ByDepartment   []CountEntry            `json:"byDepartment"`
	ByCompany      []CountEntry            `json:"byCompany"`
	HighestPackage float64                 `json:"highestPackage"`
	HighestRecord  *models.PlacementRecord `json:"highestRecord,omitempty"`
}
