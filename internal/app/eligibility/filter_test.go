package eligibility

import (
	"reflect"
	"testing"
)

type candidate struct {
	student Student
	status  RegistrationStatus
}

func candidates() []candidate {
	mk := func(uid, dept string, cgpa float64, status RegistrationStatus) candidate {
		s := Student{UID: uid, CGPA: f(cgpa), Tenth: f(90), Twelfth: f(90), StandingArrears: n(0), Department: dept}
		return candidate{student: s, status: status}
	}
	return []candidate{
		mk("a", "CSE", 8.1, StatusOptedIn),
		mk("b", "CSE", 6.0, StatusNotRegistered),
		mk("c", "ECE", 9.0, StatusOptedOut),
		mk("d", "ECE", 5.0, StatusOptedIn),
		mk("e", "MECH", 8.5, StatusInconsistent),
	}
}

func uids(cs []candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.student.UID)
	}
	return out
}

func TestApply_CompositionIsCommutative(t *testing.T) {
	crit := Criteria{MinCGPA: 7}
	eligibleOnly := ByEligibility(EligibilityEligible, func(c candidate) Result { return Evaluate(c.student, crit) })
	inCSE := ByField("CSE", func(c candidate) string { return c.student.Department })

	ab := Apply(Apply(candidates(), eligibleOnly), inCSE)
	ba := Apply(Apply(candidates(), inCSE), eligibleOnly)
	both := Apply(candidates(), inCSE, eligibleOnly)

	if !reflect.DeepEqual(uids(ab), uids(ba)) || !reflect.DeepEqual(uids(ab), uids(both)) {
		t.Fatalf("Expected identical results, got %v / %v / %v", uids(ab), uids(ba), uids(both))
	}
	if !reflect.DeepEqual(uids(ab), []string{"a"}) {
		t.Errorf("Expected [a], got %v", uids(ab))
	}
}

func TestApply_EmptyFiltersAreNoOps(t *testing.T) {
	all := candidates()
	got := Apply(all,
		ByEligibility(EligibilityAny, func(c candidate) Result { return Result{} }),
		ByRegistration("", func(c candidate) RegistrationStatus { return c.status }),
		ByField("", func(c candidate) string { return c.student.Department }),
		ByMinSalary[candidate]("  ", func(c candidate) string { return "" }),
	)
	if len(got) != len(all) {
		t.Errorf("Expected %d items, got %d", len(all), len(got))
	}
}

func TestByRegistration(t *testing.T) {
	status := func(c candidate) RegistrationStatus { return c.status }
	tests := []struct {
		want     RegistrationStatus
		expected []string
	}{
		{StatusOptedIn, []string{"a", "d"}},
		{StatusOptedOut, []string{"c"}},
		{StatusNotRegistered, []string{"b"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			got := uids(Apply(candidates(), ByRegistration(tt.want, status)))
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestByEligibility_NotEligible(t *testing.T) {
	crit := Criteria{MinCGPA: 7}
	got := uids(Apply(candidates(), ByEligibility(EligibilityNotEligible, func(c candidate) Result {
		return Evaluate(c.student, crit)
	})))
	if !reflect.DeepEqual(got, []string{"b", "d"}) {
		t.Errorf("Expected [b d], got %v", got)
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name       string
		applicants []string
		optedOut   []string
		expected   RegistrationStatus
	}{
		{"neither", nil, nil, StatusNotRegistered},
		{"applicant", []string{"x", "u"}, nil, StatusOptedIn},
		{"opted out", nil, []string{"u"}, StatusOptedOut},
		{"both sets", []string{"u"}, []string{"u"}, StatusInconsistent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf("u", tt.applicants, tt.optedOut); got != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestParseSalary(t *testing.T) {
	tests := []struct {
		in       string
		expected float64
	}{
		{"10 LPA", 10},
		{"4.5 - 6 LPA", 4.5},
		{"INR 12,00,000", 1200000},
		{"CTC: 7.25", 7.25},
		{".5 LPA", 0.5},
		{"Rs. 6 LPA", 6},
		{"", 0},
		{"Not disclosed", 0},
	}

	for _, tt := range tests {
		if got := ParseSalary(tt.in); got != tt.expected {
			t.Errorf("ParseSalary(%q): expected %v, got %v", tt.in, tt.expected, got)
		}
	}
}

func TestByMinSalary(t *testing.T) {
	salary := func(s string) string { return s }

	if Matches("10 LPA", ByMinSalary("12", salary)) {
		t.Error("Expected 10 LPA to be excluded by minimum 12")
	}
	if !Matches("10 LPA", ByMinSalary("5", salary)) {
		t.Error("Expected 10 LPA to be included by minimum 5")
	}
	if Matches("", ByMinSalary("1", salary)) {
		t.Error("Expected absent salary to be treated as 0")
	}
}

func TestParseFilters(t *testing.T) {
	if f, err := ParseEligibilityFilter("Eligible"); err != nil || f != EligibilityEligible {
		t.Errorf("Unexpected eligibility parse: %v %v", f, err)
	}
	if _, err := ParseEligibilityFilter("maybe"); err == nil {
		t.Error("Expected error for unknown eligibility filter")
	}
	if s, err := ParseRegistrationFilter("not-registered"); err != nil || s != StatusNotRegistered {
		t.Errorf("Unexpected registration parse: %v %v", s, err)
	}
	if s, err := ParseRegistrationFilter(""); err != nil || s != "" {
		t.Errorf("Expected empty registration filter, got %v %v", s, err)
	}
	if _, err := ParseRegistrationFilter("waitlisted"); err == nil {
		t.Error("Expected error for unknown registration filter")
	}
}
