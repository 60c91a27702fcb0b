package proxy

import "github.com/pixelbot/pixel-bot/internal/models"

// Resolution is a successful autoproxy lookup: the alter to dispatch as
// and the scope key of the record that produced it, so latch
// bookkeeping can write back to the same record.
type Resolution struct {
	Name  string
	Alter *models.Alter
	Scope string
}

// ResolveAutoproxy picks a fallback identity for an untagged message.
// The guild-scoped record is consulted before the global one; the first
// record whose mode is not off decides the outcome, even if its target
// turns out to be unusable. A selected target that no longer exists
// among the owner's alters resolves to nothing rather than an error.
func ResolveAutoproxy(profile *models.Profile, guildID string) (Resolution, bool) {
	scopes := []string{models.GlobalScope}
	if guildID != "" {
		scopes = []string{guildID, models.GlobalScope}
	}

	for _, scope := range scopes {
		state := profile.AutoproxyFor(scope)
		if state == nil || state.Mode == models.AutoproxyOff {
			continue
		}

		var target string
		switch state.Mode {
		case models.AutoproxyFront:
			target = state.Alter
		case models.AutoproxyLatch:
			target = state.LastProxied
		}
		if target == "" {
			return Resolution{}, false
		}

		alter, ok := profile.Alters[target]
		if !ok || !alter.AllowProxy {
			return Resolution{}, false
		}
		return Resolution{Name: target, Alter: alter, Scope: scope}, true
	}
	return Resolution{}, false
}

// latchScope picks which record an explicit tag match should refresh:
// the one the resolution order would select among latch-mode records,
// guild first. Returns "" when no latch record applies to the scope.
func latchScope(profile *models.Profile, guildID string) string {
	scopes := []string{models.GlobalScope}
	if guildID != "" {
		scopes = []string{guildID, models.GlobalScope}
	}
	for _, scope := range scopes {
		if state := profile.AutoproxyFor(scope); state != nil && state.Mode == models.AutoproxyLatch {
			return scope
		}
	}
	return ""
}
