// Package eligibility decides whether a student may apply to a drive or join a
// training, and provides the composable predicates used to filter rosters and
// drive listings. Everything here is pure: inputs come in as parameters and no
// function performs I/O or mutates its arguments.
package eligibility

import (
	"fmt"
	"math"
	"strings"
)

// Student carries the academic attributes the predicates consume.
// Nil numeric attributes are evaluated as zero.
type Student struct {
	UID             string
	CGPA            *float64
	Tenth           *float64
	Twelfth         *float64
	StandingArrears *int
	Department      string
	Year            int
}

// Criteria is the eligibility schema attached to a company drive.
type Criteria struct {
	MinCGPA         float64  `json:"minCGPA"`
	SSLC            float64  `json:"sslc"`
	HSC             float64  `json:"hsc"`
	BacklogsAllowed int      `json:"backlogsAllowed"`
	Branches        []string `json:"branches"`
}

// TrainingCriteria restricts a training to branches and a single year of study.
// A zero TargetYear admits every year.
type TrainingCriteria struct {
	Branches   []string `json:"branches"`
	TargetYear int      `json:"year"`
}

// Result is the outcome of an evaluation. Reason is set only when Eligible is false.
type Result struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason,omitempty"`
}

// Evaluate checks a student against drive criteria. Checks run in a fixed order
// (CGPA, 10th, 12th, arrears, branch) and the first failure is reported.
func Evaluate(s Student, c Criteria) Result {
	if cgpa := number(s.CGPA); cgpa < c.MinCGPA {
		return reject("CGPA %.2f is below the required %.2f", cgpa, c.MinCGPA)
	}
	if tenth := number(s.Tenth); tenth < c.SSLC {
		return reject("10th mark %.2f%% is below the required %.2f%%", tenth, c.SSLC)
	}
	if twelfth := number(s.Twelfth); twelfth < c.HSC {
		return reject("12th mark %.2f%% is below the required %.2f%%", twelfth, c.HSC)
	}
	if arrears := count(s.StandingArrears); arrears > c.BacklogsAllowed {
		return reject("%d standing arrears exceed the allowed %d", arrears, c.BacklogsAllowed)
	}
	if !BranchAllowed(s.Department, c.Branches) {
		return branchRejection(s.Department)
	}
	return Result{Eligible: true}
}

// EvaluateTraining checks branch membership first, then the target year.
func EvaluateTraining(s Student, c TrainingCriteria) Result {
	if !BranchAllowed(s.Department, c.Branches) {
		return branchRejection(s.Department)
	}
	if c.TargetYear != 0 && s.Year != c.TargetYear {
		return reject("training is for year %d students, student is in year %d", c.TargetYear, s.Year)
	}
	return Result{Eligible: true}
}

// BranchAllowed reports whether department is in branches. An empty set admits
// every department. Comparison ignores case and surrounding whitespace.
func BranchAllowed(department string, branches []string) bool {
	if len(branches) == 0 {
		return true
	}
	dept := strings.TrimSpace(department)
	for _, b := range branches {
		if strings.EqualFold(strings.TrimSpace(b), dept) {
			return true
		}
	}
	return false
}

func branchRejection(department string) Result {
	if strings.TrimSpace(department) == "" {
		return reject("department is not set on the profile")
	}
	return reject("department %s is not among the eligible branches", department)
}

func reject(format string, args ...interface{}) Result {
	return Result{Eligible: false, Reason: fmt.Sprintf(format, args...)}
}

func number(v *float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return 0
	}
	return *v
}

func count(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
