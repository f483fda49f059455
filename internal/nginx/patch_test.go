package nginx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatch_NilIsNoOp(t *testing.T) {
	m := DefaultConfig()
	before := m.Signature()

	var p *Patch
	p.Apply(m)
	(&Patch{}).Apply(m)

	assert.Equal(t, before, m.Signature())
}

func TestPatch_NestedMergePreservesSiblings(t *testing.T) {
	m := DefaultConfig()
	m.Security.BasicAuthRealm = "Staff Only"

	(&Patch{Security: &SecurityPatch{HideVersion: boolPtr(false)}}).Apply(m)

	assert.False(t, m.Security.HideVersion)
	// Untouched siblings inside the same sub-record survive the merge.
	assert.True(t, m.Security.SecurityHeaders)
	assert.Equal(t, "Staff Only", m.Security.BasicAuthRealm)
}

func TestPatch_ScalarFields(t *testing.T) {
	m := DefaultConfig()

	(&Patch{
		ListenPort: intPtr(8443),
		IPv6:       boolPtr(true),
		Root:       stringPtr("/srv/www"),
	}).Apply(m)

	assert.Equal(t, 8443, m.ListenPort)
	assert.True(t, m.IPv6)
	assert.Equal(t, "/srv/www", m.Root)
}

func TestPatch_ArraysReplaceWholesale(t *testing.T) {
	m := DefaultConfig()
	m.ServerNames = []string{"a.example.com", "b.example.com"}

	(&Patch{ServerNames: stringsPtr([]string{"c.example.com"})}).Apply(m)

	assert.Equal(t, []string{"c.example.com"}, m.ServerNames)
}

func TestPatch_LocationsReplaceWholesale(t *testing.T) {
	m := DefaultConfig()
	locs := []LocationConfig{{Path: "/api", Match: MatchPrefix, Type: LocationProxy, ProxyPass: "http://b"}}

	(&Patch{Locations: &locs}).Apply(m)

	assert.Equal(t, locs, m.Locations)
	// The patch slice is copied, not aliased.
	locs[0].Path = "/changed"
	assert.Equal(t, "/api", m.Locations[0].Path)
}

func TestPatch_EmptySliceOverwrites(t *testing.T) {
	m := DefaultConfig()

	(&Patch{Index: stringsPtr([]string{})}).Apply(m)

	assert.Empty(t, m.Index)
}

func TestPatch_EnumFields(t *testing.T) {
	m := DefaultConfig()

	(&Patch{
		SSL:         &SSLPatch{CipherPreset: presetPtr(CipherModern)},
		Performance: &PerformancePatch{ClientMaxBodyUnit: func() *BodySizeUnit { u := UnitGB; return &u }()},
	}).Apply(m)

	assert.Equal(t, CipherModern, m.SSL.CipherPreset)
	assert.Equal(t, UnitGB, m.Performance.ClientMaxBodyUnit)
}
