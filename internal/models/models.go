package models

import "sort"

// DefaultColor is the embed color used when the owner never picked one.
const DefaultColor = 0x8A2BE2

// NoProxySentinel is the legacy stored value meaning "no proxy configured".
// Old exports carry it literally, so it must be treated the same as empty.
const NoProxySentinel = "No proxy set"

// GlobalScope is the autoproxy scope key for the account-wide record,
// as opposed to a per-guild record keyed by guild ID.
const GlobalScope = "global"

// AutoproxyMode selects how untagged messages pick a fallback identity.
type AutoproxyMode string

const (
	AutoproxyOff   AutoproxyMode = "off"
	AutoproxyFront AutoproxyMode = "front"
	AutoproxyLatch AutoproxyMode = "latch"
)

// Profile is everything stored for one owner: their system, alters,
// autoproxy records and folders. Created implicitly on first access.
type Profile struct {
	OwnerID      string                     `json:"owner_id"`
	System       *System                    `json:"system,omitempty"`
	Alters       map[string]*Alter          `json:"alters"`
	Autoproxy    map[string]*AutoproxyState `json:"autoproxy,omitempty"`
	Folders      map[string]*Folder         `json:"folders,omitempty"`
	NextPosition int                        `json:"next_position"`
}

func NewProfile(ownerID string) *Profile {
	return &Profile{
		OwnerID:   ownerID,
		Alters:    make(map[string]*Alter),
		Autoproxy: make(map[string]*AutoproxyState),
		Folders:   make(map[string]*Folder),
	}
}

// System is the owner-level container metadata wrapping all alters.
type System struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Pronouns    string `json:"pronouns"`
	Tag         string `json:"tag,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Banner      string `json:"banner,omitempty"`
	Color       int    `json:"color"`
}

func NewSystem(name string) *System {
	return &System{
		Name:        name,
		Description: "No description provided.",
		Pronouns:    "Not set",
		Color:       DefaultColor,
	}
}

// Alter is one named identity an owner can proxy messages as. Keyed by
// its case-sensitive name within the owner's profile.
type Alter struct {
	DisplayName string   `json:"displayname"`
	Pronouns    string   `json:"pronouns"`
	Description string   `json:"description"`
	Avatar      string   `json:"avatar,omitempty"`
	ProxyAvatar string   `json:"proxy_avatar,omitempty"`
	Banner      string   `json:"banner,omitempty"`
	Proxy       string   `json:"proxy,omitempty"`
	Aliases     []string `json:"aliases"`
	Color       int      `json:"color"`
	ShowInList  bool     `json:"show_in_list"`
	AllowProxy  bool     `json:"allow_proxy"`
	UseEmbed    bool     `json:"use_embed"`

	// Position records creation order; proxy matching iterates alters by
	// ascending Position so collisions resolve to the earliest creation.
	Position int `json:"position"`
}

func NewAlter(pronouns, description string) *Alter {
	if pronouns == "" {
		pronouns = "Not set"
	}
	if description == "" {
		description = "No description provided."
	}
	return &Alter{
		Pronouns:    pronouns,
		Description: description,
		Aliases:     []string{},
		Color:       DefaultColor,
		ShowInList:  true,
		AllowProxy:  true,
		UseEmbed:    true,
	}
}

// HasProxy reports whether the alter has a usable proxy pattern. The
// empty string and the legacy sentinel both mean unconfigured.
func (a *Alter) HasProxy() bool {
	return a.Proxy != "" && a.Proxy != NoProxySentinel
}

// EffectiveAvatar is the avatar used when re-emitting as this alter:
// the proxy avatar if set, else the main avatar, else none.
func (a *Alter) EffectiveAvatar() string {
	if a.ProxyAvatar != "" {
		return a.ProxyAvatar
	}
	return a.Avatar
}

// Label is the name shown on re-emitted messages: the display name if
// set, otherwise the alter's key.
func (a *Alter) Label(key string) string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return key
}

// AutoproxyState is one owner's fallback-identity record for a single
// scope (a guild ID, or GlobalScope for the account-wide record).
type AutoproxyState struct {
	Mode        AutoproxyMode `json:"mode"`
	Alter       string        `json:"alter,omitempty"`
	LastProxied string        `json:"last_proxied,omitempty"`
}

func NewAutoproxyState() *AutoproxyState {
	return &AutoproxyState{Mode: AutoproxyOff}
}

// Folder groups alter names for display. Membership is a weak reference:
// deleting an alter leaves its name behind, and readers must tolerate
// names that no longer resolve.
type Folder struct {
	Alters []string `json:"alters"`
	Color  int      `json:"color"`
}

func NewFolder() *Folder {
	return &Folder{Alters: []string{}, Color: DefaultColor}
}

// NamedAlter pairs an alter with its profile key for ordered iteration.
type NamedAlter struct {
	Name  string
	Alter *Alter
}

// AddAlter inserts an alter under name and stamps its creation position.
// Returns false if the name is already taken.
func (p *Profile) AddAlter(name string, a *Alter) bool {
	if _, exists := p.Alters[name]; exists {
		return false
	}
	a.Position = p.NextPosition
	p.NextPosition++
	if a.DisplayName == "" {
		a.DisplayName = name
	}
	p.Alters[name] = a
	return true
}

// OrderedAlters returns the owner's alters in creation order. Profiles
// imported from older data may share positions; name order breaks ties
// so iteration stays deterministic.
func (p *Profile) OrderedAlters() []NamedAlter {
	out := make([]NamedAlter, 0, len(p.Alters))
	for name, a := range p.Alters {
		out = append(out, NamedAlter{Name: name, Alter: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Alter.Position != out[j].Alter.Position {
			return out[i].Alter.Position < out[j].Alter.Position
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// FindAlter looks an alter up by key, then by alias. Both are
// case-sensitive, matching how keys were stored historically.
func (p *Profile) FindAlter(name string) (string, *Alter, bool) {
	if a, ok := p.Alters[name]; ok {
		return name, a, true
	}
	for key, a := range p.Alters {
		for _, alias := range a.Aliases {
			if alias == name {
				return key, a, true
			}
		}
	}
	return "", nil, false
}

// AutoproxyFor returns the record for a scope key, or nil.
func (p *Profile) AutoproxyFor(scope string) *AutoproxyState {
	if p.Autoproxy == nil {
		return nil
	}
	return p.Autoproxy[scope]
}

// SetAutoproxy stores a record under a scope key.
func (p *Profile) SetAutoproxy(scope string, st *AutoproxyState) {
	if p.Autoproxy == nil {
		p.Autoproxy = make(map[string]*AutoproxyState)
	}
	p.Autoproxy[scope] = st
}

// SystemTag returns the system's display tag, or "" when no system or
// tag is set.
func (p *Profile) SystemTag() string {
	if p.System == nil {
		return ""
	}
	return p.System.Tag
}

// Normalize fills in anything a decoded or hand-edited profile may be
// missing, so the rest of the code never checks for nil maps or zero
// positions. It is the single defaulting point for stored data.
func (p *Profile) Normalize() {
	if p.Alters == nil {
		p.Alters = make(map[string]*Alter)
	}
	if p.Autoproxy == nil {
		p.Autoproxy = make(map[string]*AutoproxyState)
	}
	if p.Folders == nil {
		p.Folders = make(map[string]*Folder)
	}
	max := p.NextPosition
	for _, a := range p.Alters {
		if a.Aliases == nil {
			a.Aliases = []string{}
		}
		if a.Color == 0 {
			a.Color = DefaultColor
		}
		if a.Position >= max {
			max = a.Position + 1
		}
	}
	p.NextPosition = max
	for _, st := range p.Autoproxy {
		if st.Mode == "" {
			st.Mode = AutoproxyOff
		}
	}
	for _, f := range p.Folders {
		if f.Alters == nil {
			f.Alters = []string{}
		}
	}
}

// Clone returns a deep copy. Storage implementations hand out copies so
// callers can mutate freely and write back explicitly.
func (p *Profile) Clone() *Profile {
	cp := &Profile{
		OwnerID:      p.OwnerID,
		Alters:       make(map[string]*Alter, len(p.Alters)),
		Autoproxy:    make(map[string]*AutoproxyState, len(p.Autoproxy)),
		Folders:      make(map[string]*Folder, len(p.Folders)),
		NextPosition: p.NextPosition,
	}
	if p.System != nil {
		sys := *p.System
		cp.System = &sys
	}
	for name, a := range p.Alters {
		ac := *a
		ac.Aliases = append([]string{}, a.Aliases...)
		cp.Alters[name] = &ac
	}
	for scope, st := range p.Autoproxy {
		sc := *st
		cp.Autoproxy[scope] = &sc
	}
	for name, f := range p.Folders {
		fc := *f
		fc.Alters = append([]string{}, f.Alters...)
		cp.Folders[name] = &fc
	}
	return cp
}

// Blocklist holds one guild's blocked channel and category IDs.
type Blocklist struct {
	GuildID    string   `json:"guild_id"`
	Channels   []string `json:"channels"`
	Categories []string `json:"categories"`
}

func NewBlocklist(guildID string) *Blocklist {
	return &Blocklist{GuildID: guildID, Channels: []string{}, Categories: []string{}}
}

func (b *Blocklist) HasChannel(id string) bool {
	return contains(b.Channels, id)
}

func (b *Blocklist) HasCategory(id string) bool {
	return contains(b.Categories, id)
}

// AddChannel returns false if the channel was already blocked.
func (b *Blocklist) AddChannel(id string) bool {
	if contains(b.Channels, id) {
		return false
	}
	b.Channels = append(b.Channels, id)
	return true
}

func (b *Blocklist) RemoveChannel(id string) bool {
	var removed bool
	b.Channels, removed = removeString(b.Channels, id)
	return removed
}

func (b *Blocklist) AddCategory(id string) bool {
	if contains(b.Categories, id) {
		return false
	}
	b.Categories = append(b.Categories, id)
	return true
}

func (b *Blocklist) RemoveCategory(id string) bool {
	var removed bool
	b.Categories, removed = removeString(b.Categories, id)
	return removed
}

func removeString(xs []string, want string) ([]string, bool) {
	for i, x := range xs {
		if x == want {
			return append(xs[:i], xs[i+1:]...), true
		}
	}
	return xs, false
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
