package effect

// RollModifier sums the per-stack roll modifiers.
func RollModifier(s *ActiveSet) int {
	total := 0
	for _, a := range s.All() {
		total += a.Def.RollModifier * a.Stacks
	}
	return total
}

// ArmorModifier sums the per-stack armor modifiers.
func ArmorModifier(s *ActiveSet) int {
	total := 0
	for _, a := range s.All() {
		total += a.Def.ArmorModifier * a.Stacks
	}
	return total
}

// StrengthModifier sums the per-stack strength modifiers.
func StrengthModifier(s *ActiveSet) int {
	total := 0
	for _, a := range s.All() {
		total += a.Def.StrengthModifier * a.Stacks
	}
	return total
}

// DamageTakenMultiplier multiplies every non-zero damage-taken multiplier.
//
// Postcondition: result > 0.
func DamageTakenMultiplier(s *ActiveSet) float64 {
	m := 1.0
	for _, a := range s.All() {
		if a.Def.DamageTakenMultiplier > 0 {
			m *= a.Def.DamageTakenMultiplier
		}
	}
	return m
}

// SpeedMultiplier multiplies every non-zero speed multiplier. Values above
// one make the owner act less often.
func SpeedMultiplier(s *ActiveSet) float64 {
	m := 1.0
	for _, a := range s.All() {
		if a.Def.SpeedMultiplier > 0 {
			m *= a.Def.SpeedMultiplier
		}
	}
	return m
}

// TickDamage is the damage over time dealt at the start of the owner's turn.
func TickDamage(s *ActiveSet) int {
	total := 0
	for _, a := range s.All() {
		total += a.Def.TickDamage * a.Stacks
	}
	return total
}

// TickHeal is the healing over time applied at the start of the owner's turn.
func TickHeal(s *ActiveSet) int {
	total := 0
	for _, a := range s.All() {
		total += a.Def.TickHeal * a.Stacks
	}
	return total
}

// ReflectPercent returns the largest reflect fraction.
func ReflectPercent(s *ActiveSet) float64 {
	p := 0.0
	for _, a := range s.All() {
		p = max(p, a.Def.ReflectPercent)
	}
	return p
}

// ConfusionChance returns the largest confusion chance.
func ConfusionChance(s *ActiveSet) float64 {
	p := 0.0
	for _, a := range s.All() {
		p = max(p, a.Def.ConfusionChance)
	}
	return p
}

// SkipsTurn reports whether any effect prevents acting (stun).
func SkipsTurn(s *ActiveSet) bool {
	for _, a := range s.All() {
		if a.Def.SkipsTurn {
			return true
		}
	}
	return false
}

// BlocksCombo reports whether any effect forbids combo actions (silence).
func BlocksCombo(s *ActiveSet) bool {
	for _, a := range s.All() {
		if a.Def.BlocksCombo {
			return true
		}
	}
	return false
}

// IgnoresArmor reports whether incoming hits bypass armor (pierce).
func IgnoresArmor(s *ActiveSet) bool {
	for _, a := range s.All() {
		if a.Def.IgnoresArmor {
			return true
		}
	}
	return false
}
