// Package dice provides the randomness used by battles: sources, dice
// expressions, a logging roller, and the d20 roll modifications actions carry.
package dice

import (
	"fmt"
	"strings"
)

// RollResult is the audit record of one evaluated dice expression.
//
// Invariant: Total() == sum(Dice) + Modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total returns the kept dice plus the flat modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String renders the result as "2d6+3 [4 5] +3 = 12".
func (r RollResult) String() string {
	expr := r.Expression
	if expr == "" {
		expr = "roll"
	}
	parts := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return fmt.Sprintf("%s [%s] %+d = %d", expr, strings.Join(parts, " "), r.Modifier, r.Total())
}
