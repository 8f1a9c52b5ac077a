package scoring

import "strings"

// bracketNotation are the characters authors use to write arrays and
// comments in test cases ("[1, 2, 3] # three items").
const bracketNotation = "[],#"

// TransformIO turns author-friendly notation into the literal text the
// sandbox reads or writes: brackets, commas and '#' become spaces, then runs
// of whitespace collapse to one space and the ends are trimmed. The same
// transform is applied to the test input, the expected output and the
// program's actual output.
func TransformIO(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(bracketNotation, r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// OutputMatches compares actual program output with the expected output of a
// test case: both sides are transformed, then compared case-insensitively.
func OutputMatches(actual, expected string) bool {
	return strings.EqualFold(TransformIO(actual), TransformIO(expected))
}
