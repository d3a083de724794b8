package device

import (
	"fmt"
	"strings"

	"github.com/geekxflood/snmpinfo/mibs"
	"github.com/geekxflood/snmpinfo/munge"
	"github.com/geekxflood/snmpinfo/registry"
)

// fetchScalar performs the single-GET retrieval of a scalar attribute.
//
// A transport failure is an error; the "not present" sentinels yield a nil
// display value (the attribute is simply absent on this device) with the
// condition recorded in the instance error state.
func (d *Device) fetchScalar(a registry.Attr, fn munge.Func) (any, error) {
	oid := scalarOID(a.OID)
	d.log.Debug("get scalar", "attr", a.Name, "oid", oid, "object", mibs.Name(oid))

	pdu, err := d.sess.Get(oid)
	if err != nil {
		wrapped := opErr("get", a.Name, fmt.Errorf("%w: %v", ErrTransport, err))
		d.record(wrapped)
		return nil, wrapped
	}
	if pdu.NotPresent() {
		d.record(opErr("get", a.Name, ErrNotPresent))
		return nil, nil
	}

	v, present := fn(pdu.Value, d.mopts)
	if !present {
		return nil, nil
	}
	return v, nil
}

// scalarOID appends the ".0" instance suffix unless the registered OID
// already carries an explicit instance. Registered leaves are recognized
// through the compiled-in mibs tables: when reverse translation leaves a
// remainder the OID was defined instance-included (e.g. a chassis scalar
// pinned to instance 1) and is used as-is.
func scalarOID(oid string) string {
	name := mibs.Name(oid)
	if name != oid {
		if strings.Contains(name, ".") {
			return oid
		}
		return oid + ".0"
	}
	if strings.HasSuffix(oid, ".0") {
		return oid
	}
	return oid + ".0"
}
