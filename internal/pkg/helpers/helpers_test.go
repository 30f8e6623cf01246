package helpers

import (
	"reflect"
	"testing"
	"time"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	tests := []struct {
		page, size int
		want       []int
		totalPages int
	}{
		{1, 2, []int{1, 2}, 3},
		{3, 2, []int{5}, 3},
		{4, 2, []int{}, 3},
		{0, 0, []int{1, 2, 3, 4, 5}, 1},
	}
	for _, tt := range tests {
		got, info := Paginate(items, tt.page, tt.size)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Paginate(%d,%d) = %v, want %v", tt.page, tt.size, got, tt.want)
		}
		if info.TotalPages != tt.totalPages || info.TotalItems != 5 {
			t.Errorf("Paginate(%d,%d) info = %+v", tt.page, tt.size, info)
		}
	}
}

func TestParseTimeParam(t *testing.T) {
	if got, err := ParseTimeParam(""); got != nil || err != nil {
		t.Errorf("Expected nil, nil for empty input")
	}
	got, err := ParseTimeParam("2024-03-01")
	if err != nil || !got.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected date parse: %v %v", got, err)
	}
	if _, err := ParseTimeParam("yesterday"); err == nil {
		t.Errorf("Expected error")
	}
}

func TestInRange(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(48 * time.Hour)
	if !InRange(from.Add(time.Hour), &from, &to) || InRange(to.Add(time.Second), &from, &to) || !InRange(to, nil, nil) {
		t.Errorf("InRange gave unexpected results")
	}
}
