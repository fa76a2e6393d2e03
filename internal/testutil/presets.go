package testutil

import "time"

// GameTags is a small taxonomy shared by tests.
var GameTags = []string{
	"Enemy.Flying.Boss",
	"Enemy.Flying.Minion",
	"Enemy.Ground",
	"Player.Ally",
	"Status.Stunned",
}

// WithGameData adds GameTags and three entities created one minute apart:
// dragon (Enemy.Flying.Boss), goblin (Enemy.Ground, Status.Stunned) and
// hero (Player).
func (b *Builder) WithGameData() *Builder {
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	return b.
		WithTags(GameTags...).
		WithEntity("dragon", Name("Dragon"), Tags("Enemy.Flying.Boss"),
			CreatedAt(base), UpdatedAt(base)).
		WithEntity("goblin", Name("Goblin"), Tags("Enemy.Ground", "Status.Stunned"),
			CreatedAt(base.Add(time.Minute)), UpdatedAt(base.Add(time.Minute))).
		WithEntity("hero", Name("Hero"), Tags("Player"),
			CreatedAt(base.Add(2*time.Minute)), UpdatedAt(base.Add(2*time.Minute)))
}
