package dice

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Source supplies uniformly distributed integers.
type Source interface {
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand. It is safe for
// concurrent use and is not reproducible.
func NewCryptoSource() Source {
	return cryptoSource{}
}

func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(v.Int64())
}

type seededSource struct {
	rng *mrand.Rand
}

// NewSeededSource returns a reproducible Source for a single battle.
//
// Two sources built from the same seed produce the same sequence. The
// returned Source is not safe for concurrent use; each battle owns its own.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	return s.rng.IntN(n)
}

// D20 rolls one twenty-sided die.
//
// Postcondition: result is in [1, 20].
func D20(src Source) int {
	return src.Intn(20) + 1
}

// Chance reports whether an event with probability p happens.
// p <= 0 never happens and p >= 1 always happens.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return float64(src.Intn(10000)) < p*10000
}

// Pick returns a uniform index in [0, n), or -1 when n <= 0.
func Pick(src Source, n int) int {
	if n <= 0 {
		return -1
	}
	return src.Intn(n)
}
