package device

import (
	"fmt"

	"github.com/geekxflood/snmpinfo/registry"
)

// Get resolves a symbolic attribute name to its cached or freshly fetched
// value. Scalars return the display value (nil when the device reports the
// attribute not present); table attributes return a map of instance-id to
// display value. Unknown names fail with ErrUnknownAttribute.
func (d *Device) Get(attr string) (any, error) {
	if a, ok := d.reg.Scalars[attr]; ok {
		return d.getScalar(a)
	}
	if a, ok := d.reg.Tables[attr]; ok {
		return d.getTable(a)
	}
	return nil, d.unknown("get", attr)
}

// GetScalar is Get restricted to scalar attributes.
func (d *Device) GetScalar(attr string) (any, error) {
	a, ok := d.reg.Scalars[attr]
	if !ok {
		if _, isTable := d.reg.Tables[attr]; isTable {
			return nil, opErr("get", attr, fmt.Errorf("%w: %q is a table attribute", ErrUnknownAttribute, attr))
		}
		return nil, d.unknown("get", attr)
	}
	return d.getScalar(a)
}

// GetTable is Get restricted to table attributes.
func (d *Device) GetTable(attr string) (map[string]any, error) {
	a, ok := d.reg.Tables[attr]
	if !ok {
		if _, isScalar := d.reg.Scalars[attr]; isScalar {
			return nil, opErr("get", attr, fmt.Errorf("%w: %q is a scalar attribute", ErrUnknownAttribute, attr))
		}
		return nil, d.unknown("get", attr)
	}
	return d.getTable(a)
}

// Reload unconditionally re-fetches an attribute, overwriting whatever the
// cache holds, and returns the fresh value.
func (d *Device) Reload(attr string) (any, error) {
	if a, ok := d.reg.Scalars[attr]; ok {
		d.cache.invalidate(attr)
		return d.getScalar(a)
	}
	if a, ok := d.reg.Tables[attr]; ok {
		d.cache.invalidate(attr)
		return d.getTable(a)
	}
	return nil, d.unknown("reload", attr)
}

// Set writes a value to an attribute through the session. The optional
// instance-id selects a table row; it defaults to the scalar instance "0".
//
// Set never touches the cache: a subsequent Get may still serve the stale
// cached value until the caller reloads the attribute.
func (d *Device) Set(attr string, value any, iid ...string) error {
	var leaf string
	if a, ok := d.reg.Scalars[attr]; ok {
		leaf = a.OID
	} else if a, ok := d.reg.Tables[attr]; ok {
		leaf = a.OID
	} else {
		return d.unknown("set", attr)
	}

	instance := "0"
	if len(iid) > 0 && iid[0] != "" {
		instance = iid[0]
	}
	oid := leaf + "." + instance

	d.log.Debug("set", "attr", attr, "oid", oid)
	if _, err := d.sess.Set(oid, value); err != nil {
		wrapped := opErr("set", attr, fmt.Errorf("%w: %v", ErrSetFailed, err))
		d.record(wrapped)
		return wrapped
	}
	return nil
}

// getScalar serves a scalar from cache or fetches it once.
func (d *Device) getScalar(a registry.Attr) (any, error) {
	if v, loaded := d.cache.scalar(a.Name); loaded {
		return v, nil
	}
	v, err := d.fetchScalar(a, d.reg.Munge(a.Name))
	if err != nil {
		return nil, err
	}
	d.cache.setScalar(a.Name, v)
	return v, nil
}

// getTable serves a table from cache or walks it once.
func (d *Device) getTable(a registry.Attr) (map[string]any, error) {
	if rows, loaded := d.cache.table(a.Name); loaded {
		return rows, nil
	}
	rows, err := d.walkTable(a, d.reg.Munge(a.Name))
	if err != nil {
		return nil, err
	}
	d.cache.setTable(a.Name, rows)
	return rows, nil
}

func (d *Device) unknown(op, attr string) error {
	err := opErr(op, attr, ErrUnknownAttribute)
	d.record(err)
	return err
}
