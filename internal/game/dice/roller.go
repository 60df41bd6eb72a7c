package dice

import (
	"slices"

	"go.uber.org/zap"
)

// Roll evaluates expr against src.
//
// Precondition: expr came from Parse.
// Postcondition: len(Dice) is Count, KeepHighest or KeepLowest as applicable.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}
	kept := rolled
	switch {
	case expr.KeepHighest > 0:
		kept = slices.Clone(rolled)
		slices.Sort(kept)
		slices.Reverse(kept)
		kept = kept[:expr.KeepHighest]
	case expr.KeepLowest > 0:
		kept = slices.Clone(rolled)
		slices.Sort(kept)
		kept = kept[:expr.KeepLowest]
	}
	return RollResult{Expression: expr.Raw, Dice: kept, Modifier: expr.Modifier}
}

// RollExpr parses and rolls expr in one call.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// Roller rolls against a Source and logs every result at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller wraps src. A nil logger disables logging.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Source exposes the wrapped source for components that draw directly.
func (r *Roller) Source() Source {
	return r.src
}

// Roll evaluates expr and logs the outcome.
func (r *Roller) Roll(expr Expression) RollResult {
	res := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}

// RollExpr parses expr and rolls it.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}

// D20 rolls and logs a single d20.
func (r *Roller) D20() int {
	v := D20(r.src)
	r.logger.Debug("d20 roll", zap.Int("natural", v))
	return v
}
