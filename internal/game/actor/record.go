package actor

// Record accumulates one actor's statistics over a battle.
type Record struct {
	Turns          int
	Actions        int
	Hits           int
	Misses         int
	CriticalHits   int
	CriticalMisses int
	ComboHits      int
	DamageDealt    int
	DamageTaken    int
	HealingDone    int
	OneShotKills   int
	Kills          int
}
