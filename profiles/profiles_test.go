package profiles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekxflood/snmpinfo/registry"
)

func TestRegisterAndResolveAll(t *testing.T) {
	r := registry.New()
	require.NoError(t, Register(r))

	// Every shipped class must resolve: its ancestry is acyclic and all of
	// its MIB requirements are satisfied by the compiled-in tables.
	for _, class := range []string{
		"generic", "layer1", "layer2", "layer3",
		"catalyst", "ciscorouter", "procurve", "juniper",
	} {
		res, err := r.Resolve(class)
		require.NoError(t, err, "class %s", class)
		assert.Equal(t, class, res.Class)
	}
}

func TestGenericProfile(t *testing.T) {
	r := registry.New()
	require.NoError(t, Register(r))

	res, err := r.Resolve("generic")
	require.NoError(t, err)

	assert.Equal(t, ".1.3.6.1.2.1.1.1", res.Scalars["descr"].OID)
	assert.Equal(t, ".1.3.6.1.2.1.1.7", res.Scalars["layers"].OID)
	assert.Equal(t, ".1.3.6.1.2.1.2.2.1.5", res.Tables["i_speed"].OID)
	assert.Equal(t, ".1.3.6.1.2.1.2.2.1.6", res.Tables["i_mac"].OID)

	for _, attr := range []string{"layers", "i_mac", "i_speed", "ip_table", "i_octet_in64"} {
		assert.Contains(t, res.Munges, attr, "transform for %s", attr)
	}
}

func TestInheritance(t *testing.T) {
	r := registry.New()
	require.NoError(t, Register(r))

	l3, err := r.Resolve("layer3")
	require.NoError(t, err)

	// generic tier
	assert.Contains(t, l3.Scalars, "descr")
	// layer2 tier
	assert.Contains(t, l3.Scalars, "b_mac")
	assert.Contains(t, l3.Tables, "fw_port")
	// own tier
	assert.Contains(t, l3.Scalars, "ipforwarding")
	assert.Contains(t, l3.Tables, "route_nexthop")

	cisco, err := r.Resolve("ciscorouter")
	require.NoError(t, err)
	assert.Contains(t, cisco.Scalars, "cpu_5min")
	assert.Contains(t, cisco.Tables, "route_dest", "layer3 tables inherited")
	assert.Contains(t, cisco.Tables, "i_speed", "generic tables inherited")
}

func TestVendorProfiles(t *testing.T) {
	r := registry.New()
	require.NoError(t, Register(r))

	cat, err := r.Resolve("catalyst")
	require.NoError(t, err)
	assert.Contains(t, cat.Scalars, "serial")
	assert.Contains(t, cat.Tables, "p_ifindex")
	assert.NotContains(t, cat.Tables, "route_dest", "catalyst is a layer2 family")

	jun, err := r.Resolve("juniper")
	require.NoError(t, err)
	assert.Contains(t, jun.Scalars, "box_descr")
	assert.Contains(t, jun.Tables, "route_dest", "juniper is a layer3 family")

	hp, err := r.Resolve("procurve")
	require.NoError(t, err)
	assert.Contains(t, hp.Tables, "e_serial")
}

func TestDefaultRegistryPopulated(t *testing.T) {
	// The package init registers into the process-wide default registry.
	res, err := registry.Resolve("generic")
	require.NoError(t, err)
	assert.Contains(t, res.Scalars, "descr")
}
