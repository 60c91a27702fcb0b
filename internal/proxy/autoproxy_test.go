package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelbot/pixel-bot/internal/models"
)

func autoproxyProfile(t *testing.T) *models.Profile {
	t.Helper()
	p := models.NewProfile("owner")
	require.True(t, p.AddAlter("Al", models.NewAlter("", "")))
	require.True(t, p.AddAlter("Bee", models.NewAlter("", "")))
	return p
}

func TestResolveOffYieldsNothing(t *testing.T) {
	p := autoproxyProfile(t)
	// Stored targets are irrelevant while the mode is off.
	p.SetAutoproxy("guild-1", &models.AutoproxyState{
		Mode:        models.AutoproxyOff,
		Alter:       "Al",
		LastProxied: "Bee",
	})

	_, ok := ResolveAutoproxy(p, "guild-1")
	assert.False(t, ok)
}

func TestResolveFrontMode(t *testing.T) {
	p := autoproxyProfile(t)
	p.SetAutoproxy("guild-1", &models.AutoproxyState{Mode: models.AutoproxyFront, Alter: "Al"})

	res, ok := ResolveAutoproxy(p, "guild-1")
	require.True(t, ok)
	assert.Equal(t, "Al", res.Name)
	assert.Equal(t, "guild-1", res.Scope)
}

func TestResolveFrontDeletedTargetFailsSilently(t *testing.T) {
	p := autoproxyProfile(t)
	p.SetAutoproxy("guild-1", &models.AutoproxyState{Mode: models.AutoproxyFront, Alter: "Gone"})

	_, ok := ResolveAutoproxy(p, "guild-1")
	assert.False(t, ok)
}

func TestResolveLatchMode(t *testing.T) {
	p := autoproxyProfile(t)
	p.SetAutoproxy("guild-1", &models.AutoproxyState{Mode: models.AutoproxyLatch, LastProxied: "Bee"})

	res, ok := ResolveAutoproxy(p, "guild-1")
	require.True(t, ok)
	assert.Equal(t, "Bee", res.Name)
	assert.Equal(t, "guild-1", res.Scope)
}

func TestResolveLatchWithoutHistory(t *testing.T) {
	p := autoproxyProfile(t)
	p.SetAutoproxy("guild-1", &models.AutoproxyState{Mode: models.AutoproxyLatch})

	_, ok := ResolveAutoproxy(p, "guild-1")
	assert.False(t, ok)
}

func TestResolveGuildScopeWinsOverGlobal(t *testing.T) {
	p := autoproxyProfile(t)
	p.SetAutoproxy("guild-1", &models.AutoproxyState{Mode: models.AutoproxyFront, Alter: "Al"})
	p.SetAutoproxy(models.GlobalScope, &models.AutoproxyState{Mode: models.AutoproxyFront, Alter: "Bee"})

	res, ok := ResolveAutoproxy(p, "guild-1")
	require.True(t, ok)
	assert.Equal(t, "Al", res.Name)
	assert.Equal(t, "guild-1", res.Scope)
}

func TestResolveFallsBackToGlobal(t *testing.T) {
	p := autoproxyProfile(t)
	p.SetAutoproxy("guild-1", &models.AutoproxyState{Mode: models.AutoproxyOff})
	p.SetAutoproxy(models.GlobalScope, &models.AutoproxyState{Mode: models.AutoproxyFront, Alter: "Bee"})

	res, ok := ResolveAutoproxy(p, "guild-1")
	require.True(t, ok)
	assert.Equal(t, "Bee", res.Name)
	assert.Equal(t, models.GlobalScope, res.Scope)
}

func TestResolveSelectedRecordDecidesEvenIfUnusable(t *testing.T) {
	// The guild record is active but broken; resolution does not keep
	// scanning into the global record.
	p := autoproxyProfile(t)
	p.SetAutoproxy("guild-1", &models.AutoproxyState{Mode: models.AutoproxyFront, Alter: "Gone"})
	p.SetAutoproxy(models.GlobalScope, &models.AutoproxyState{Mode: models.AutoproxyFront, Alter: "Bee"})

	_, ok := ResolveAutoproxy(p, "guild-1")
	assert.False(t, ok)
}

func TestResolveDMUsesGlobalOnly(t *testing.T) {
	p := autoproxyProfile(t)
	p.SetAutoproxy(models.GlobalScope, &models.AutoproxyState{Mode: models.AutoproxyFront, Alter: "Al"})

	res, ok := ResolveAutoproxy(p, "")
	require.True(t, ok)
	assert.Equal(t, models.GlobalScope, res.Scope)
}

func TestLatchScopePrefersGuild(t *testing.T) {
	p := autoproxyProfile(t)
	p.SetAutoproxy("guild-1", &models.AutoproxyState{Mode: models.AutoproxyLatch})
	p.SetAutoproxy(models.GlobalScope, &models.AutoproxyState{Mode: models.AutoproxyLatch})

	assert.Equal(t, "guild-1", latchScope(p, "guild-1"))
	assert.Equal(t, models.GlobalScope, latchScope(p, "guild-2"))
	assert.Equal(t, models.GlobalScope, latchScope(p, ""))
}

func TestLatchScopeIgnoresNonLatchRecords(t *testing.T) {
	p := autoproxyProfile(t)
	p.SetAutoproxy("guild-1", &models.AutoproxyState{Mode: models.AutoproxyFront, Alter: "Al"})

	assert.Equal(t, "", latchScope(p, "guild-1"))
}
