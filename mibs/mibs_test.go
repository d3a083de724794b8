package mibs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHave(t *testing.T) {
	assert.True(t, Have("SNMPv2-MIB"))
	assert.True(t, Have("IF-MIB"))
	assert.False(t, Have("NO-SUCH-MIB"))
}

func TestLookup(t *testing.T) {
	oid, ok := Lookup("SNMPv2-MIB", "sysDescr")
	require.True(t, ok)
	assert.Equal(t, ".1.3.6.1.2.1.1.1", oid)

	_, ok = Lookup("SNMPv2-MIB", "ifDescr")
	assert.False(t, ok, "object from another module should not resolve")

	_, ok = Lookup("NO-SUCH-MIB", "sysDescr")
	assert.False(t, ok)
}

func TestOID(t *testing.T) {
	oid, ok := OID("ifSpeed")
	require.True(t, ok)
	assert.Equal(t, ".1.3.6.1.2.1.2.2.1.5", oid)

	_, ok = OID("noSuchObject")
	assert.False(t, ok)
}

func TestName(t *testing.T) {
	t.Run("exact_leaf", func(t *testing.T) {
		assert.Equal(t, "sysDescr", Name(".1.3.6.1.2.1.1.1"))
	})

	t.Run("instanced_oid", func(t *testing.T) {
		assert.Equal(t, "ifDescr.4", Name(".1.3.6.1.2.1.2.2.1.2.4"))
	})

	t.Run("scalar_instance", func(t *testing.T) {
		assert.Equal(t, "sysDescr.0", Name(".1.3.6.1.2.1.1.1.0"))
	})

	t.Run("longest_prefix_wins", func(t *testing.T) {
		// ifIndex is deeper than ifNumber; the deepest registered
		// object must win.
		assert.Equal(t, "ifIndex.1", Name(".1.3.6.1.2.1.2.2.1.1.1"))
	})

	t.Run("unknown_oid_unchanged", func(t *testing.T) {
		assert.Equal(t, ".9.9.9.9", Name(".9.9.9.9"))
	})

	t.Run("malformed_oid_unchanged", func(t *testing.T) {
		assert.Equal(t, "not-an-oid", Name("not-an-oid"))
	})
}

func TestRegisterModule(t *testing.T) {
	RegisterModule(Module{
		Name: "TEST-MIB",
		Objects: map[string]string{
			"testThing": ".1.3.6.1.4.1.99999.1",
		},
	})

	assert.True(t, Have("TEST-MIB"))

	oid, ok := Lookup("TEST-MIB", "testThing")
	require.True(t, ok)
	assert.Equal(t, ".1.3.6.1.4.1.99999.1", oid)
	assert.Equal(t, "testThing.3", Name(".1.3.6.1.4.1.99999.1.3"))
}
