package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is a parsed dice expression.
//
// Invariant: Count >= 1 and Sides >= 2. At most one of KeepHighest and
// KeepLowest is non-zero, and either is < Count.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int
	KeepLowest  int
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:(kh|kl)(\d+))?([+-]\d+)?$`)

// Parse reads expressions of the form "d20", "2d6+3", "4d6kh3" or "2d20kl1-1".
//
// Postcondition: returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}

	e := Expression{Raw: expr, Count: 1}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", expr)
		}
		e.Count = n
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q", expr)
	}
	e.Sides = sides

	if m[3] != "" {
		keep, err := strconv.Atoi(m[4])
		if err != nil || keep <= 0 || keep >= e.Count {
			return Expression{}, fmt.Errorf("dice: keep value in %q must be > 0 and < %d", expr, e.Count)
		}
		if m[3] == "kh" {
			e.KeepHighest = keep
		} else {
			e.KeepLowest = keep
		}
	}
	if m[5] != "" {
		mod, err := strconv.Atoi(m[5])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
		e.Modifier = mod
	}
	return e, nil
}

// MustParse is Parse for static expressions; it panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return e
}
