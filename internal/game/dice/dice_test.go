package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dungeonfighter/internal/game/dice"
)

// seqSrc returns its values in order, wrapping around. Values are the raw
// Intn results, so a d20 face f is encoded as f-1.
type seqSrc struct {
	vals []int
	i    int
}

func (s *seqSrc) Intn(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func faces(fs ...int) *seqSrc {
	vals := make([]int, len(fs))
	for i, f := range fs {
		vals[i] = f - 1
	}
	return &seqSrc{vals: vals}
}

func TestRollResult_TotalAndString(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, 12, r.Total())
	assert.Equal(t, "2d6+3 [4 5] +3 = 12", r.String())
	assert.Equal(t, "roll [] +0 = 0", dice.RollResult{}.String())
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want dice.Expression
	}{
		{"d20", dice.Expression{Raw: "d20", Count: 1, Sides: 20}},
		{"2d6+3", dice.Expression{Raw: "2d6+3", Count: 2, Sides: 6, Modifier: 3}},
		{"4d6kh3", dice.Expression{Raw: "4d6kh3", Count: 4, Sides: 6, KeepHighest: 3}},
		{"2d20kl1-1", dice.Expression{Raw: "2d20kl1-1", Count: 2, Sides: 20, KeepLowest: 1, Modifier: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "20", "0d6", "2d1", "2d6kh2", "d6kh1", "2dx"} {
		_, err := dice.Parse(in)
		assert.Error(t, err, in)
	}
	assert.Panics(t, func() { dice.MustParse("nope") })
}

func TestRoll_KeepHighestAndLowest(t *testing.T) {
	res := dice.Roll(dice.MustParse("4d6kh3"), faces(2, 6, 1, 4))
	assert.Equal(t, []int{6, 4, 2}, res.Dice)

	res = dice.Roll(dice.MustParse("2d20kl1+2"), faces(15, 7))
	assert.Equal(t, []int{7}, res.Dice)
	assert.Equal(t, 9, res.Total())
}

func TestRoll_TotalWithinBounds_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 8).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		seed := rapid.Uint64().Draw(rt, "seed")
		expr := dice.Expression{Raw: "x", Count: count, Sides: sides}
		res := dice.Roll(expr, dice.NewSeededSource(seed))
		assert.GreaterOrEqual(rt, res.Total(), count)
		assert.LessOrEqual(rt, res.Total(), count*sides)
	})
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestD20_Range(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 500; i++ {
		v := dice.D20(src)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 20)
	}
	assert.Panics(t, func() { src.Intn(0) })
}

func TestChance_Bounds(t *testing.T) {
	src := dice.NewSeededSource(1)
	assert.False(t, dice.Chance(src, 0))
	assert.True(t, dice.Chance(src, 1))
	assert.Equal(t, -1, dice.Pick(src, 0))
}

func TestRoller_LogsAndRolls(t *testing.T) {
	r := dice.NewLoggedRoller(faces(3, 4), nil)
	res, err := r.RollExpr("2d6+1")
	require.NoError(t, err)
	assert.Equal(t, 8, res.Total())
	_, err = r.RollExpr("bad")
	assert.Error(t, err)
}
