package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAlterAssignsPositions(t *testing.T) {
	p := NewProfile("owner")
	require.True(t, p.AddAlter("First", NewAlter("", "")))
	require.True(t, p.AddAlter("Second", NewAlter("", "")))
	require.False(t, p.AddAlter("First", NewAlter("", "")), "duplicate names rejected")

	assert.Equal(t, 0, p.Alters["First"].Position)
	assert.Equal(t, 1, p.Alters["Second"].Position)
}

func TestOrderedAltersFollowsCreationOrder(t *testing.T) {
	p := NewProfile("owner")
	names := []string{"Zed", "Ann", "Mid"}
	for _, n := range names {
		require.True(t, p.AddAlter(n, NewAlter("", "")))
	}

	ordered := p.OrderedAlters()
	require.Len(t, ordered, 3)
	for i, n := range names {
		assert.Equal(t, n, ordered[i].Name)
	}
}

func TestFindAlterByAlias(t *testing.T) {
	p := NewProfile("owner")
	a := NewAlter("", "")
	a.Aliases = []string{"Allie"}
	require.True(t, p.AddAlter("Al", a))

	key, _, found := p.FindAlter("Allie")
	require.True(t, found)
	assert.Equal(t, "Al", key)

	// Lookups are case-sensitive.
	_, _, found = p.FindAlter("allie")
	assert.False(t, found)
}

func TestAlterDefaults(t *testing.T) {
	a := NewAlter("", "")
	assert.Equal(t, "Not set", a.Pronouns)
	assert.Equal(t, "No description provided.", a.Description)
	assert.Equal(t, DefaultColor, a.Color)
	assert.True(t, a.AllowProxy)
	assert.True(t, a.ShowInList)
	assert.False(t, a.HasProxy())
}

func TestHasProxyTreatsSentinelAsUnset(t *testing.T) {
	a := NewAlter("", "")
	a.Proxy = NoProxySentinel
	assert.False(t, a.HasProxy())
	a.Proxy = "x:"
	assert.True(t, a.HasProxy())
}

func TestEffectiveAvatarFallback(t *testing.T) {
	a := NewAlter("", "")
	assert.Equal(t, "", a.EffectiveAvatar())
	a.Avatar = "main.png"
	assert.Equal(t, "main.png", a.EffectiveAvatar())
	a.ProxyAvatar = "proxy.png"
	assert.Equal(t, "proxy.png", a.EffectiveAvatar())
}

func TestNormalizeFillsGaps(t *testing.T) {
	// Simulates a decoded legacy profile with nil maps and no
	// positions.
	raw := []byte(`{"alters":{"Al":{"displayname":"Al"},"Bee":{"displayname":"Bee","position":5}}}`)
	var p Profile
	require.NoError(t, json.Unmarshal(raw, &p))
	p.OwnerID = "owner"
	p.Normalize()

	assert.NotNil(t, p.Autoproxy)
	assert.NotNil(t, p.Folders)
	assert.Equal(t, []string{}, p.Alters["Al"].Aliases)
	assert.Equal(t, DefaultColor, p.Alters["Al"].Color)
	assert.Equal(t, 6, p.NextPosition, "next position must clear the highest existing one")

	// A new alter must not collide with imported positions.
	require.True(t, p.AddAlter("New", NewAlter("", "")))
	assert.Equal(t, 6, p.Alters["New"].Position)
}

func TestCloneIsDeep(t *testing.T) {
	p := NewProfile("owner")
	p.System = NewSystem("Sys")
	a := NewAlter("", "")
	a.Aliases = []string{"x"}
	require.True(t, p.AddAlter("Al", a))
	p.SetAutoproxy(GlobalScope, &AutoproxyState{Mode: AutoproxyLatch, LastProxied: "Al"})

	cp := p.Clone()
	cp.System.Name = "Changed"
	cp.Alters["Al"].Aliases[0] = "y"
	cp.Autoproxy[GlobalScope].LastProxied = "Bee"

	assert.Equal(t, "Sys", p.System.Name)
	assert.Equal(t, "x", p.Alters["Al"].Aliases[0])
	assert.Equal(t, "Al", p.Autoproxy[GlobalScope].LastProxied)
}

func TestBlocklistAddRemove(t *testing.T) {
	b := NewBlocklist("guild-1")
	assert.True(t, b.AddChannel("c1"))
	assert.False(t, b.AddChannel("c1"), "duplicates rejected")
	assert.True(t, b.HasChannel("c1"))
	assert.True(t, b.RemoveChannel("c1"))
	assert.False(t, b.RemoveChannel("c1"))
	assert.False(t, b.HasChannel("c1"))

	assert.True(t, b.AddCategory("cat1"))
	assert.True(t, b.HasCategory("cat1"))
	assert.True(t, b.RemoveCategory("cat1"))
	assert.False(t, b.HasCategory("cat1"))
}
