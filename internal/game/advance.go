package game

import (
	mrand "math/rand"
)

// Advance moves the room from its last update time to now. It is the only
// place simulation time progresses: there is no background tick, the next
// poll is what drives the world forward. The delta is clamped to
// [0, MaxStepDelta] so irregular polling (or a non-monotonic clock) can
// never move entities backward or trigger a runaway catch-up step.
//
// Stages run in a fixed order and each one sees the mutations of the
// previous ones within the same call.
func (r *Room) Advance(now float64, rng *mrand.Rand, sink StatsSink) {
	dt := clamp(now-r.LastUpdate, 0, MaxStepDelta)
	if now > r.LastUpdate {
		r.LastUpdate = now
	}

	r.movePlayers(dt, now)
	r.moveBalloons(dt)
	r.spawnBalloons(dt, rng)
	r.spawnPowerups(dt, rng)
	r.igniteFuses(now)
	r.resolveExplosions(now, sink)
	r.collectPowerups(now, sink)
	r.collectBananas(now)
}

func (r *Room) movePlayers(dt, now float64) {
	for _, p := range r.Players {
		p.X += p.VX * p.EffectiveSpeed(now) * dt
		p.X = clamp(p.X, PlayerMinX, PlayerMaxX)
		// A held banana expires unused once its ready window passes.
		if p.HasBanana && now > p.BananaReadyUntil {
			p.HasBanana = false
		}
	}
}

func (r *Room) moveBalloons(dt float64) {
	kept := r.Balloons[:0]
	for _, b := range r.Balloons {
		b.Y -= b.VY * dt
		if b.Y >= -b.Radius {
			kept = append(kept, b)
		}
	}
	r.Balloons = kept
}

// spawnBalloons converts a continuous spawn rate into discrete spawns via a
// fractional accumulator, so the expected rate stays proportional to player
// count no matter how irregular the step sizes are.
func (r *Room) spawnBalloons(dt float64, rng *mrand.Rand) {
	r.SpawnAccum += dt * (BalloonSpawnBase + BalloonSpawnPerPlayer*float64(len(r.Players)))
	for r.SpawnAccum >= 1 {
		r.Balloons = append(r.Balloons, &FallingBalloon{
			ID:     newID(8),
			X:      40 + rng.Float64()*(ArenaWidth-80),
			Y:      ArenaHeight + BalloonRadius + rng.Float64()*80,
			VY:     BalloonMinSpeed + rng.Float64()*(BalloonMaxSpeed-BalloonMinSpeed),
			Radius: BalloonRadius,
			Color:  colorPool[rng.Intn(len(colorPool))],
		})
		r.SpawnAccum--
	}
}

func (r *Room) spawnPowerups(dt float64, rng *mrand.Rand) {
	r.PowerupTimer += dt
	if r.PowerupTimer >= PowerupSpawnInterval {
		r.addPowerup(powerupTypes[rng.Intn(len(powerupTypes))], rng)
		r.PowerupTimer = 0
	}

	r.BananaTimer += dt
	if r.BananaTimer >= BananaSpawnInterval {
		r.addPowerup(PowerupBanana, rng)
		r.BananaTimer = 0
	}
}

func (r *Room) addPowerup(kind string, rng *mrand.Rand) {
	r.Powerups = append(r.Powerups, &Powerup{
		ID:   newID(8),
		Type: kind,
		X:    50 + rng.Float64()*(ArenaWidth-100),
		Y:    PowerupY,
	})
}

func (r *Room) igniteFuses(now float64) {
	kept := r.PlacedBalloons[:0]
	for _, pb := range r.PlacedBalloons {
		if now-pb.PlacedAt < pb.Fuse {
			kept = append(kept, pb)
			continue
		}
		r.Explosions = append(r.Explosions, &Explosion{
			ID:        newID(8),
			PlayerID:  pb.PlayerID,
			X:         pb.X,
			Y:         pb.Y,
			Radius:    pb.Radius,
			ExpiresAt: now + ExplosionLifetime,
		})
	}
	r.PlacedBalloons = kept
}

func (r *Room) resolveExplosions(now float64, sink StatsSink) {
	keptExplosions := r.Explosions[:0]
	for _, e := range r.Explosions {
		if now > e.ExpiresAt {
			continue
		}
		keptExplosions = append(keptExplosions, e)

		keptBalloons := r.Balloons[:0]
		for _, b := range r.Balloons {
			dx := e.X - b.X
			dy := e.Y - b.Y
			reach := e.Radius + b.Radius
			if dx*dx+dy*dy > reach*reach {
				keptBalloons = append(keptBalloons, b)
				continue
			}
			if owner, ok := r.Players[e.PlayerID]; ok {
				owner.Score++
				sink.CreditScore(owner.UserID, 1)
			}
		}
		r.Balloons = keptBalloons
	}
	r.Explosions = keptExplosions
}

func (r *Room) collectPowerups(now float64, sink StatsSink) {
	kept := r.Powerups[:0]
	for _, pw := range r.Powerups {
		taker := r.playerTouching(pw.X, pw.Y, PickupRadius, "")
		if taker == nil {
			kept = append(kept, pw)
			continue
		}
		taker.ApplyPowerup(pw.Type, now)
		sink.CreditPowerupCollected(taker.UserID)
	}
	r.Powerups = kept
}

func (r *Room) collectBananas(now float64) {
	kept := r.Bananas[:0]
	for _, bn := range r.Bananas {
		victim := r.playerTouching(bn.X, bn.Y, BananaPickupRadius, bn.PlayerID)
		if victim == nil {
			kept = append(kept, bn)
			continue
		}
		if until := now + BananaSlowDuration; until > victim.SlowUntil {
			victim.SlowUntil = until
		}
	}
	r.Bananas = kept
}

// playerTouching returns the first player whose ground-level pickup point
// overlaps the item, skipping excludeID (a banana's owner). At most one
// player consumes any item per step.
func (r *Room) playerTouching(x, y, radius float64, excludeID string) *Player {
	for _, p := range r.Players {
		if p.ID == excludeID {
			continue
		}
		dx := x - p.X
		dy := y - PickupY
		if dx*dx+dy*dy <= radius*radius {
			return p
		}
	}
	return nil
}

// ApplyPowerup applies a collected powerup's effect. Effects only ever add:
// capacity, speed and blast radius are monotonically non-decreasing.
func (p *Player) ApplyPowerup(kind string, now float64) {
	switch kind {
	case PowerupSpeed:
		p.SpeedMult += SpeedPowerupBonus
	case PowerupCapacity:
		p.BalloonCapacity++
	case PowerupStrength:
		p.BlastRadius += StrengthPowerupBonus
	case PowerupBanana:
		p.HasBanana = true
		p.BananaReadyUntil = now + BananaReadyWindow
	}
}
