package device

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gosnmp/gosnmp"

	"github.com/geekxflood/snmpinfo/munge"
	"github.com/geekxflood/snmpinfo/registry"
	"github.com/geekxflood/snmpinfo/session"
)

// walkTable performs the iterative GETNEXT retrieval of one table column.
//
// The walk starts at the column's leaf OID and continues while the returned
// OID stays inside the leaf's subtree. Leaving the subtree is the normal
// end of table; rows carrying a "not present" sentinel are recorded as
// recoverable and skipped, not treated as terminal.
//
// SNMPv1 compatibility: some agents answer noSuchName for valid newer-MIB
// leaves on the first GETNEXT. When the retry flag is enabled that first
// noSuchName is retried once before the walk accepts it as an empty table.
// Under v1 a noSuchName after the walk has advanced is the protocol's
// end-of-table signal.
func (d *Device) walkTable(a registry.Attr, fn munge.Func) (map[string]any, error) {
	leaf := a.OID
	rows := make(map[string]any)
	cur := leaf
	first := true
	retried := false

	d.log.Debug("walk table", "attr", a.Name, "leaf", leaf)
	for {
		pdu, err := d.sess.GetNext(cur)
		if err != nil {
			var re *session.RequestError
			if errors.As(err, &re) && re.NoSuchName() {
				if first && !retried && d.retryNoSuch && d.sess.Version() == gosnmp.Version1 {
					retried = true
					d.log.Debug("retrying first getnext after noSuchName", "attr", a.Name)
					continue
				}
				break
			}
			wrapped := opErr("walk", a.Name, fmt.Errorf("%w: %v", ErrTransport, err))
			d.record(wrapped)
			return nil, wrapped
		}
		first = false

		if pdu.EndOfMib() {
			break
		}
		iid, ok := instanceID(leaf, pdu.OID)
		if !ok {
			break
		}
		if pdu.OID == cur {
			// Agent is not advancing; bail out instead of spinning.
			d.log.Warn("walk aborted, agent returned same oid", "attr", a.Name, "oid", cur)
			break
		}

		if pdu.NotPresent() {
			d.record(opErr("walk", a.Name, fmt.Errorf("%w: instance %s", ErrNotPresent, iid)))
			cur = pdu.OID
			continue
		}

		if v, present := fn(pdu.Value, d.mopts); present {
			rows[iid] = v
		}
		cur = pdu.OID
	}

	d.log.Debug("walk complete", "attr", a.Name, "rows", len(rows))
	return rows, nil
}

// instanceID extracts the instance suffix of an OID under a column leaf.
// The leaf must be a strict prefix ending at a dot boundary.
func instanceID(leaf, oid string) (string, bool) {
	prefix := leaf + "."
	if !strings.HasPrefix(oid, prefix) {
		return "", false
	}
	return strings.TrimPrefix(oid, prefix), true
}
