package device

import (
	"math/big"
	"testing"

	"github.com/gosnmp/gosnmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geekxflood/snmpinfo/munge"
	"github.com/geekxflood/snmpinfo/registry"
	"github.com/geekxflood/snmpinfo/session"
)

// mockSession is a scripted in-memory transport. Get answers come from the
// gets map (unknown OIDs report noSuchObject); GetNext successors come from
// the nexts map (unknown OIDs report endOfMibView). The noSuch map injects a
// counted number of v1 noSuchName errors per OID before the script applies.
type mockSession struct {
	version gosnmp.SnmpVersion
	gets    map[string]session.PDU
	nexts   map[string]session.PDU
	noSuch  map[string]int
	setErr  error

	getOps  int
	nextOps int
	sets    map[string]any
	closed  bool
}

func (m *mockSession) Get(oid string) (session.PDU, error) {
	m.getOps++
	if pdu, ok := m.gets[oid]; ok {
		return pdu, nil
	}
	return session.PDU{OID: oid, Type: gosnmp.NoSuchObject}, nil
}

func (m *mockSession) GetNext(oid string) (session.PDU, error) {
	m.nextOps++
	if m.noSuch[oid] > 0 {
		m.noSuch[oid]--
		return session.PDU{}, &session.RequestError{Op: "getnext", OID: oid, Code: gosnmp.NoSuchName}
	}
	if pdu, ok := m.nexts[oid]; ok {
		return pdu, nil
	}
	return session.PDU{OID: oid, Type: gosnmp.EndOfMibView}, nil
}

func (m *mockSession) Set(oid string, value any) (session.PDU, error) {
	if m.setErr != nil {
		return session.PDU{}, &session.RequestError{Op: "set", OID: oid, Err: m.setErr}
	}
	if m.sets == nil {
		m.sets = make(map[string]any)
	}
	m.sets[oid] = value
	return session.PDU{OID: oid}, nil
}

func (m *mockSession) Version() gosnmp.SnmpVersion { return m.version }

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

const (
	oidDescr   = ".1.3.6.1.2.1.1.1"
	oidLayers  = ".1.3.6.1.2.1.1.7"
	oidAbsent  = ".1.3.6.1.4.1.99999.1"
	oidIfDescr = ".1.3.6.1.2.1.2.2.1.2"
	oidIfOct64 = ".1.3.6.1.2.1.31.1.1.1.6"
)

// testRegistry builds a private class hierarchy so tests never touch the
// shipped profiles or the process-wide default registry.
func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New()
	require.NoError(t, r.Define(registry.Def{
		Class: "generic",
		Scalars: map[string]string{
			"descr":  oidDescr,
			"layers": oidLayers,
			"absent": oidAbsent,
		},
		Tables: map[string]string{
			"i_name":     oidIfDescr,
			"i_octet_64": oidIfOct64,
		},
		Munges: map[string]munge.Func{
			"layers":     munge.Bits,
			"i_octet_64": munge.Counter64,
		},
	}))
	require.NoError(t, r.Define(registry.Def{
		Class:   "layer3",
		Parents: []string{"generic"},
	}))
	return r
}

func newTestDevice(t *testing.T, mock *mockSession, conf map[string]any) *Device {
	t.Helper()
	if conf == nil {
		conf = map[string]any{}
	}
	d, err := New(conf, WithSession(mock), WithRegistry(testRegistry(t)))
	require.NoError(t, err)
	return d
}

func TestScalarCaching(t *testing.T) {
	mock := &mockSession{gets: map[string]session.PDU{
		oidDescr + ".0": {OID: oidDescr + ".0", Type: gosnmp.OctetString, Value: []byte("Test Device v1")},
	}}
	d := newTestDevice(t, mock, nil)

	v, err := d.GetScalar("descr")
	require.NoError(t, err)
	assert.Equal(t, "Test Device v1", v)
	assert.Equal(t, 1, mock.getOps)

	// Second read must come from the cache.
	v, err = d.Get("descr")
	require.NoError(t, err)
	assert.Equal(t, "Test Device v1", v)
	assert.Equal(t, 1, mock.getOps)
}

func TestReloadRefetches(t *testing.T) {
	mock := &mockSession{gets: map[string]session.PDU{
		oidDescr + ".0": {OID: oidDescr + ".0", Type: gosnmp.OctetString, Value: []byte("before")},
	}}
	d := newTestDevice(t, mock, nil)

	v, err := d.GetScalar("descr")
	require.NoError(t, err)
	assert.Equal(t, "before", v)

	mock.gets[oidDescr+".0"] = session.PDU{OID: oidDescr + ".0", Type: gosnmp.OctetString, Value: []byte("after")}

	v, err = d.Reload("descr")
	require.NoError(t, err)
	assert.Equal(t, "after", v)
	assert.Equal(t, 2, mock.getOps)

	// The reloaded value replaces the cached one.
	v, err = d.GetScalar("descr")
	require.NoError(t, err)
	assert.Equal(t, "after", v)
	assert.Equal(t, 2, mock.getOps)
}

func TestClearCache(t *testing.T) {
	mock := &mockSession{gets: map[string]session.PDU{
		oidDescr + ".0": {OID: oidDescr + ".0", Type: gosnmp.OctetString, Value: []byte("x")},
	}}
	d := newTestDevice(t, mock, nil)

	_, err := d.GetScalar("descr")
	require.NoError(t, err)
	d.ClearCache()
	_, err = d.GetScalar("descr")
	require.NoError(t, err)
	assert.Equal(t, 2, mock.getOps)
}

func TestAbsentScalar(t *testing.T) {
	mock := &mockSession{}
	d := newTestDevice(t, mock, nil)

	v, err := d.GetScalar("absent")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.ErrorIs(t, d.PeekError(), ErrNotPresent)

	// Absence is cached like any other answer.
	v, err = d.GetScalar("absent")
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 1, mock.getOps)
}

func TestUnknownAttribute(t *testing.T) {
	d := newTestDevice(t, &mockSession{}, nil)

	_, err := d.Get("no_such_attr")
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	var oe *OpError
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, "get", oe.Op)
	assert.Equal(t, "no_such_attr", oe.Attr)
}

func TestKindMismatch(t *testing.T) {
	d := newTestDevice(t, &mockSession{}, nil)

	_, err := d.GetScalar("i_name")
	assert.ErrorIs(t, err, ErrUnknownAttribute)

	_, err = d.GetTable("descr")
	assert.ErrorIs(t, err, ErrUnknownAttribute)
}

func TestTableWalk(t *testing.T) {
	mock := &mockSession{nexts: map[string]session.PDU{
		oidIfDescr:        {OID: oidIfDescr + ".1", Type: gosnmp.OctetString, Value: []byte("eth0")},
		oidIfDescr + ".1": {OID: oidIfDescr + ".2", Type: gosnmp.OctetString, Value: []byte("eth1")},
		// Successor outside the column subtree ends the walk.
		oidIfDescr + ".2": {OID: ".1.3.6.1.2.1.2.2.1.3.1", Type: gosnmp.Integer, Value: 6},
	}}
	d := newTestDevice(t, mock, nil)

	rows, err := d.GetTable("i_name")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "eth0", "2": "eth1"}, rows)

	// Second read is served from cache.
	_, err = d.GetTable("i_name")
	require.NoError(t, err)
	assert.Equal(t, 3, mock.nextOps)
}

func TestTableWalkCompositeInstance(t *testing.T) {
	mock := &mockSession{nexts: map[string]session.PDU{
		oidIfDescr:                {OID: oidIfDescr + ".10.0.0.1", Type: gosnmp.OctetString, Value: []byte("a")},
		oidIfDescr + ".10.0.0.1":  {OID: oidIfDescr + ".10.0.0.2", Type: gosnmp.OctetString, Value: []byte("b")},
		oidIfDescr + ".10.0.0.2":  {OID: ".1.3.6.1.2.1.3.1", Type: gosnmp.Integer, Value: 1},
	}}
	d := newTestDevice(t, mock, nil)

	rows, err := d.GetTable("i_name")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"10.0.0.1": "a", "10.0.0.2": "b"}, rows)
}

func TestTableWalkSkipsAbsentRows(t *testing.T) {
	mock := &mockSession{nexts: map[string]session.PDU{
		oidIfDescr:        {OID: oidIfDescr + ".1", Type: gosnmp.OctetString, Value: []byte("eth0")},
		oidIfDescr + ".1": {OID: oidIfDescr + ".2", Type: gosnmp.NoSuchInstance},
		oidIfDescr + ".2": {OID: oidIfDescr + ".3", Type: gosnmp.OctetString, Value: []byte("eth2")},
	}}
	d := newTestDevice(t, mock, nil)

	rows, err := d.GetTable("i_name")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "eth0", "3": "eth2"}, rows)
	assert.ErrorIs(t, d.PeekError(), ErrNotPresent)
}

func TestTableWalkSameOIDGuard(t *testing.T) {
	mock := &mockSession{nexts: map[string]session.PDU{
		oidIfDescr:        {OID: oidIfDescr + ".1", Type: gosnmp.OctetString, Value: []byte("eth0")},
		oidIfDescr + ".1": {OID: oidIfDescr + ".1", Type: gosnmp.OctetString, Value: []byte("eth0")},
	}}
	d := newTestDevice(t, mock, nil)

	rows, err := d.GetTable("i_name")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"1": "eth0"}, rows)
	assert.Equal(t, 2, mock.nextOps, "non-advancing agent must not loop")
}

func TestEmptyTableIsLoaded(t *testing.T) {
	mock := &mockSession{nexts: map[string]session.PDU{
		oidIfDescr: {OID: ".1.3.6.1.2.1.3.1", Type: gosnmp.Integer, Value: 1},
	}}
	d := newTestDevice(t, mock, nil)

	rows, err := d.GetTable("i_name")
	require.NoError(t, err)
	assert.Empty(t, rows)

	_, err = d.GetTable("i_name")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.nextOps, "empty result is cached, not retried")
}

func TestV1NoSuchNameRetry(t *testing.T) {
	t.Run("retried_once", func(t *testing.T) {
		mock := &mockSession{
			version: gosnmp.Version1,
			noSuch:  map[string]int{oidIfDescr: 1},
			nexts: map[string]session.PDU{
				oidIfDescr:        {OID: oidIfDescr + ".1", Type: gosnmp.OctetString, Value: []byte("eth0")},
				oidIfDescr + ".1": {OID: ".1.3.6.1.2.1.3.1", Type: gosnmp.Integer, Value: 1},
			},
		}
		d := newTestDevice(t, mock, nil)

		rows, err := d.GetTable("i_name")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"1": "eth0"}, rows)
		assert.Equal(t, 3, mock.nextOps)
	})

	t.Run("retry_disabled", func(t *testing.T) {
		mock := &mockSession{
			version: gosnmp.Version1,
			noSuch:  map[string]int{oidIfDescr: 1},
			nexts: map[string]session.PDU{
				oidIfDescr: {OID: oidIfDescr + ".1", Type: gosnmp.OctetString, Value: []byte("eth0")},
			},
		}
		d := newTestDevice(t, mock, map[string]any{"retry_nosuch": false})

		rows, err := d.GetTable("i_name")
		require.NoError(t, err)
		assert.Empty(t, rows, "first noSuchName without retry is an empty table")
		assert.Equal(t, 1, mock.nextOps)
	})

	t.Run("not_retried_under_v2c", func(t *testing.T) {
		mock := &mockSession{
			version: gosnmp.Version2c,
			noSuch:  map[string]int{oidIfDescr: 1},
		}
		d := newTestDevice(t, mock, nil)

		rows, err := d.GetTable("i_name")
		require.NoError(t, err)
		assert.Empty(t, rows)
		assert.Equal(t, 1, mock.nextOps)
	})

	t.Run("midwalk_nosuchname_ends_table", func(t *testing.T) {
		mock := &mockSession{
			version: gosnmp.Version1,
			noSuch:  map[string]int{oidIfDescr + ".1": 1},
			nexts: map[string]session.PDU{
				oidIfDescr: {OID: oidIfDescr + ".1", Type: gosnmp.OctetString, Value: []byte("eth0")},
			},
		}
		d := newTestDevice(t, mock, nil)

		rows, err := d.GetTable("i_name")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"1": "eth0"}, rows)
	})
}

func TestBigIntOption(t *testing.T) {
	script := func() *mockSession {
		return &mockSession{nexts: map[string]session.PDU{
			oidIfOct64:        {OID: oidIfOct64 + ".1", Type: gosnmp.Counter64, Value: uint64(18446744073709551615)},
			oidIfOct64 + ".1": {OID: ".1.3.6.1.2.1.32", Type: gosnmp.Integer, Value: 1},
		}}
	}

	d := newTestDevice(t, script(), nil)
	rows, err := d.GetTable("i_octet_64")
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", rows["1"])

	d = newTestDevice(t, script(), map[string]any{"bigint": true})
	rows, err = d.GetTable("i_octet_64")
	require.NoError(t, err)
	want := new(big.Int).SetUint64(18446744073709551615)
	assert.Equal(t, 0, want.Cmp(rows["1"].(*big.Int)))
}

func TestSetDoesNotTouchCache(t *testing.T) {
	mock := &mockSession{gets: map[string]session.PDU{
		oidDescr + ".0": {OID: oidDescr + ".0", Type: gosnmp.OctetString, Value: []byte("old")},
	}}
	d := newTestDevice(t, mock, nil)

	v, err := d.GetScalar("descr")
	require.NoError(t, err)
	assert.Equal(t, "old", v)

	require.NoError(t, d.Set("descr", "new"))
	assert.Equal(t, "new", mock.sets[oidDescr+".0"])

	v, err = d.GetScalar("descr")
	require.NoError(t, err)
	assert.Equal(t, "old", v, "write must not update the cache")
	assert.Equal(t, 1, mock.getOps)
}

func TestSetTableInstance(t *testing.T) {
	mock := &mockSession{}
	d := newTestDevice(t, mock, nil)

	require.NoError(t, d.Set("i_name", "uplink", "3"))
	assert.Equal(t, "uplink", mock.sets[oidIfDescr+".3"])
}

func TestSetFailure(t *testing.T) {
	mock := &mockSession{setErr: assert.AnError}
	d := newTestDevice(t, mock, nil)

	err := d.Set("descr", "x")
	assert.ErrorIs(t, err, ErrSetFailed)
	assert.ErrorIs(t, d.PeekError(), ErrSetFailed)
}

func TestLastErrorSemantics(t *testing.T) {
	d := newTestDevice(t, &mockSession{}, nil)
	assert.NoError(t, d.LastError())

	_, _ = d.Get("bogus")

	assert.Error(t, d.PeekError())
	assert.Error(t, d.PeekError(), "peek preserves the error")
	assert.Error(t, d.LastError())
	assert.NoError(t, d.LastError(), "read clears the error")
}

func TestTransportError(t *testing.T) {
	// No gets map entry and a broken transport: simulate by a session whose
	// Get returns an error.
	mock := &failingSession{}
	d, err := New(map[string]any{}, WithSession(mock), WithRegistry(testRegistry(t)))
	require.NoError(t, err)

	_, err = d.GetScalar("descr")
	assert.ErrorIs(t, err, ErrTransport)
	assert.ErrorIs(t, d.PeekError(), ErrTransport)

	_, err = d.GetTable("i_name")
	assert.ErrorIs(t, err, ErrTransport)
}

type failingSession struct{ mockSession }

func (f *failingSession) Get(oid string) (session.PDU, error) {
	return session.PDU{}, &session.RequestError{Op: "get", OID: oid, Err: assert.AnError}
}

func (f *failingSession) GetNext(oid string) (session.PDU, error) {
	return session.PDU{}, &session.RequestError{Op: "getnext", OID: oid, Err: assert.AnError}
}

func TestAutoSpecify(t *testing.T) {
	mock := &mockSession{gets: map[string]session.PDU{
		oidLayers + ".0": {OID: oidLayers + ".0", Type: gosnmp.Integer, Value: 14},
		oidDescr + ".0":  {OID: oidDescr + ".0", Type: gosnmp.OctetString, Value: []byte("Test Router 9000")},
	}}
	d, err := New(map[string]any{"auto_specify": true},
		WithSession(mock), WithRegistry(testRegistry(t)))
	require.NoError(t, err)

	assert.Equal(t, "layer3", d.Class())

	// Specialization is one-shot.
	again, err := d.Specify()
	require.NoError(t, err)
	assert.Same(t, d, again)
}

func TestSpecifyUnclassifiableKeepsClass(t *testing.T) {
	// No layers answer at all: classification has nothing to work with.
	d := newTestDevice(t, &mockSession{}, nil)

	next, err := d.Specify()
	require.NoError(t, err)
	assert.Same(t, d, next)
	assert.Equal(t, "generic", next.Class())
}

func TestSpecifyUnresolvableClassKeepsClass(t *testing.T) {
	// The default ruleset selects "ciscorouter", which the private test
	// registry does not define; the device keeps its current class.
	mock := &mockSession{gets: map[string]session.PDU{
		oidLayers + ".0": {OID: oidLayers + ".0", Type: gosnmp.Integer, Value: 14},
		oidDescr + ".0":  {OID: oidDescr + ".0", Type: gosnmp.OctetString, Value: []byte("Cisco IOS Software")},
	}}
	d := newTestDevice(t, mock, nil)

	next, err := d.Specify()
	require.NoError(t, err)
	assert.Equal(t, "generic", next.Class())
}

func TestCloseOwnership(t *testing.T) {
	mock := &mockSession{}
	d := newTestDevice(t, mock, nil)

	require.NoError(t, d.Close())
	assert.False(t, mock.closed, "injected sessions belong to the caller")
}

func TestUnknownClass(t *testing.T) {
	_, err := New(map[string]any{"class": "no-such-class"},
		WithSession(&mockSession{}), WithRegistry(testRegistry(t)))
	assert.Error(t, err)
}
