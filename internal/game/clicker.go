// internal/game/clicker.go
//
// Moof clicker: every click earns `multiplier` moofs; moofs buy upgrades.
//
//   - Click: count += multiplier, score += multiplier, mood excited.
//   - BuyUpgrade: cost = (upgradesBought+1) * UpgradeStep. Affordable →
//     count -= cost, upgradesBought++, multiplier++, mood happy.
//     Unaffordable → no-op (callers check CanAfford first).

package game

import "github.com/robalobadob/companion/internal/mood"

// Clicker holds one clicker game.
type Clicker struct {
	ID string

	env        Env
	count      int
	multiplier int
	upgrades   int
}

// ClickerSnapshot is a read-only copy of the game for presentation.
type ClickerSnapshot struct {
	Count          int  `json:"count"`
	Multiplier     int  `json:"multiplier"`
	UpgradesBought int  `json:"upgradesBought"`
	UpgradeCost    int  `json:"upgradeCost"`
	CanAfford      bool `json:"canAfford"`
}

// NewClicker returns a fresh game: count 0, multiplier 1, no upgrades.
func NewClicker(env Env) *Clicker {
	return &Clicker{ID: randomID(), env: env, multiplier: 1}
}

// Click earns multiplier moofs and returns the new count.
func (c *Clicker) Click() int {
	c.count += c.multiplier
	if c.env.Score != nil {
		c.env.Score.Add(c.multiplier)
	}
	if c.env.Mood != nil {
		c.env.Mood.Transition(mood.EventWinningMove)
	}
	c.env.play()
	return c.count
}

// UpgradeCost is the price of the next upgrade.
func (c *Clicker) UpgradeCost() int {
	return (c.upgrades + 1) * UpgradeStep
}

// CanAfford reports whether the next upgrade can be bought.
func (c *Clicker) CanAfford() bool {
	return c.count >= c.UpgradeCost()
}

// BuyUpgrade spends moofs on +1 multiplier. It reports whether the purchase
// happened.
func (c *Clicker) BuyUpgrade() bool {
	cost := c.UpgradeCost()
	if c.count < cost {
		return false
	}
	c.count -= cost
	c.upgrades++
	c.multiplier++
	if c.env.Mood != nil {
		c.env.Mood.Transition(mood.EventUpgradeBought)
	}
	return true
}

// Count returns the moofs currently held.
func (c *Clicker) Count() int { return c.count }

// Snapshot copies the game state.
func (c *Clicker) Snapshot() ClickerSnapshot {
	return ClickerSnapshot{
		Count:          c.count,
		Multiplier:     c.multiplier,
		UpgradesBought: c.upgrades,
		UpgradeCost:    c.UpgradeCost(),
		CanAfford:      c.CanAfford(),
	}
}
