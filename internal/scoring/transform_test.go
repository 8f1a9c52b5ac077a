package scoring

import "testing"

func TestTransformIO(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "[1, 2, 3]", want: "1 2 3"},
		{in: "[1,2,3]", want: "1 2 3"},
		{in: "  hello   world  ", want: "hello world"},
		{in: "5\n1 2 3 4 5\n", want: "5 1 2 3 4 5"},
		{in: "[[1,2],[3,4]] # matrix", want: "1 2 3 4 matrix"},
		{in: "", want: ""},
		{in: "[],#", want: ""},
	}

	for _, tc := range tests {
		if got := TransformIO(tc.in); got != tc.want {
			t.Errorf("TransformIO(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOutputMatches(t *testing.T) {
	tests := []struct {
		actual   string
		expected string
		want     bool
	}{
		{actual: "YES\n", expected: "yes", want: true},
		{actual: "1 2 3", expected: "[1, 2, 3]", want: true},
		{actual: "  42 ", expected: "42", want: true},
		{actual: "42", expected: "43", want: false},
		{actual: "", expected: "0", want: false},
	}

	for _, tc := range tests {
		if got := OutputMatches(tc.actual, tc.expected); got != tc.want {
			t.Errorf("OutputMatches(%q, %q) = %v, want %v", tc.actual, tc.expected, got, tc.want)
		}
	}
}
