// Package metadata serializes validated run statistics into the fixed
// 64-slot integer array the external leaderboard stores opaquely alongside a
// score.
//
// The layout is a versioned contract with the downstream consumer. Slot
// meanings are frozen; changing any offset is a breaking change that needs a
// new layout version, never a silent redefinition.
//
//	slots  0..23  weapon block: 8 weapons x {kills, damage, acquired_ms}
//	slots 24..41  ability block: 6 abilities x {uses, utility, kills}
//	slots 42..45  summary block: total kills, total damage,
//	              total ability uses, final time ms
//	slots 46..55  per-round kill block: one slot per round
//	slots 56..63  reserved, always zero
package metadata

import (
	"fmt"

	"scoregate/internal/submission/models"
)

// Slots is the array capacity the leaderboard accepts.
const Slots = 64

const (
	weaponBlockStart  = 0
	weaponFields      = 3
	abilityBlockStart = 24
	abilityFields     = 3
	summaryBlockStart = 42
	roundBlockStart   = 46
	roundBlockSlots   = 10
)

// Pack maps a validated submission onto the slot layout. It is deterministic:
// the same submission always yields the same array, and unused slots are
// always zero. Pack assumes the submission has passed validation; it still
// refuses shapes that cannot fit the layout.
func Pack(sub *models.Submission) ([Slots]int32, error) {
	var out [Slots]int32

	if len(sub.RoundKills) != roundBlockSlots {
		return out, fmt.Errorf("pack metadata: have %d round kill entries, layout holds %d",
			len(sub.RoundKills), roundBlockSlots)
	}

	for i, tag := range models.WeaponTags {
		w := sub.Weapons[tag]
		base := weaponBlockStart + i*weaponFields
		out[base] = w.Kills
		out[base+1] = w.Damage
		out[base+2] = w.AcquiredMs
	}

	for i, tag := range models.AbilityTags {
		a := sub.Abilities[tag]
		base := abilityBlockStart + i*abilityFields
		out[base] = a.Uses
		out[base+1] = a.Utility
		out[base+2] = a.Kills
	}

	out[summaryBlockStart] = sub.TotalKills
	out[summaryBlockStart+1] = sub.TotalDamage
	out[summaryBlockStart+2] = sub.TotalAbilityUses
	out[summaryBlockStart+3] = sub.ScoreMs

	for i, kills := range sub.RoundKills {
		out[roundBlockStart+i] = kills
	}

	return out, nil
}
