package service

import "testing"

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, perPage         int
		wantPage, wantPerPage int
	}{
		{0, 0, 1, 10},
		{-3, 20, 1, 20},
		{2, 500, 2, 100},
		{4, 25, 4, 25},
	}
	for _, tc := range tests {
		page, perPage := clampPage(tc.page, tc.perPage)
		if page != tc.wantPage || perPage != tc.wantPerPage {
			t.Errorf("clampPage(%d, %d) = %d, %d; want %d, %d",
				tc.page, tc.perPage, page, perPage, tc.wantPage, tc.wantPerPage)
		}
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		total, perPage, wantPages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
	}
	for _, tc := range tests {
		p := paginate(1, tc.perPage, tc.total)
		if p.TotalPages != tc.wantPages || p.TotalItems != tc.total {
			t.Errorf("paginate(total=%d) = %+v, want %d pages", tc.total, p, tc.wantPages)
		}
	}
}
