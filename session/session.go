// Package session defines the transport collaborator used by the attribute
// engine and provides a gosnmp-backed implementation.
//
// A Session performs exactly one blocking request/response per call and
// surfaces protocol error state on every return. The engine layered on top
// never retries, times out, or reconnects on its own; all of that policy
// belongs to the session configuration.
//
// Protocol sentinel values (noSuchObject, noSuchInstance, endOfMibView) are
// data, not errors: they come back inside the PDU so callers can decide
// per value whether absence is recoverable.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"
)

// PDU is one variable binding returned by a session call.
type PDU struct {
	OID   string
	Type  gosnmp.Asn1BER
	Value any
}

// NotPresent reports whether the PDU carries one of the two "not present"
// sentinels rather than a value.
func (p PDU) NotPresent() bool {
	return p.Type == gosnmp.NoSuchObject || p.Type == gosnmp.NoSuchInstance
}

// EndOfMib reports the endOfMibView sentinel.
func (p PDU) EndOfMib() bool {
	return p.Type == gosnmp.EndOfMibView
}

// Session is the blocking request/response transport contract.
type Session interface {
	// Get issues a single GET for one OID.
	Get(oid string) (PDU, error)

	// GetNext issues a single GETNEXT and returns the successor binding.
	GetNext(oid string) (PDU, error)

	// Set writes a value to one OID and returns the agent's response
	// binding.
	Set(oid string, value any) (PDU, error)

	// Version reports the negotiated protocol revision.
	Version() gosnmp.SnmpVersion

	// Close releases the underlying transport.
	Close() error
}

// RequestError is a failed session call. Code carries the SNMP error-status
// from the response when the agent answered with an error; Err carries the
// transport failure when no usable response arrived.
type RequestError struct {
	Op   string
	OID  string
	Code gosnmp.SNMPError
	Err  error
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("session: %s %s: %v", e.Op, e.OID, e.Err)
	}
	return fmt.Sprintf("session: %s %s: snmp error status %d", e.Op, e.OID, e.Code)
}

func (e *RequestError) Unwrap() error { return e.Err }

// NoSuchName reports the SNMPv1 noSuchName error class. Old agents answer
// this for perfectly valid newer-MIB leaves, which is why the table walker
// has a compatibility retry keyed on it.
func (e *RequestError) NoSuchName() bool {
	return e.Code == gosnmp.NoSuchName
}

// snmpSession wraps a gosnmp client as a Session.
type snmpSession struct {
	client *gosnmp.GoSNMP
	owned  bool
}

// New builds a Session from a configuration map. Recognized keys:
//
//	target        string        agent address (required)
//	port          int           default 161
//	community     string        default "public"
//	version       string        "1", "2c" (default); v3 callers pass a
//	                            pre-built client through Wrap
//	timeout       duration/int  per-request timeout, default 5s
//	retries       int           transport-level retries, default 1
//	max_oids      int           default gosnmp.MaxOids
//
// Unrecognized keys are ignored here; the device layer strips its own keys
// before handing the map over, so everything it does not understand lands
// in this parser verbatim.
func New(cfg map[string]any) (Session, error) {
	client, err := buildClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("session: connect %s: %w", client.Target, err)
	}
	return &snmpSession{client: client, owned: true}, nil
}

// Wrap adapts an already-connected gosnmp client. The caller keeps
// ownership; Close on the returned Session is a no-op.
func Wrap(client *gosnmp.GoSNMP) Session {
	return &snmpSession{client: client}
}

func (s *snmpSession) Get(oid string) (PDU, error) {
	pkt, err := s.client.Get([]string{oid})
	return s.first("get", oid, pkt, err)
}

func (s *snmpSession) GetNext(oid string) (PDU, error) {
	pkt, err := s.client.GetNext([]string{oid})
	return s.first("getnext", oid, pkt, err)
}

func (s *snmpSession) Set(oid string, value any) (PDU, error) {
	pdu, err := setPDU(oid, value)
	if err != nil {
		return PDU{}, &RequestError{Op: "set", OID: oid, Err: err}
	}
	pkt, err := s.client.Set([]gosnmp.SnmpPDU{pdu})
	return s.first("set", oid, pkt, err)
}

func (s *snmpSession) Version() gosnmp.SnmpVersion {
	return s.client.Version
}

func (s *snmpSession) Close() error {
	if !s.owned || s.client.Conn == nil {
		return nil
	}
	return s.client.Conn.Close()
}

// first extracts the single binding out of a response packet, classifying
// transport and protocol errors along the way.
func (s *snmpSession) first(op, oid string, pkt *gosnmp.SnmpPacket, err error) (PDU, error) {
	if err != nil {
		return PDU{}, &RequestError{Op: op, OID: oid, Err: err}
	}
	if pkt.Error != gosnmp.NoError {
		return PDU{}, &RequestError{Op: op, OID: oid, Code: pkt.Error}
	}
	if len(pkt.Variables) == 0 {
		return PDU{}, &RequestError{Op: op, OID: oid, Err: errors.New("empty response")}
	}
	v := pkt.Variables[0]
	return PDU{OID: normalizeOID(v.Name), Type: v.Type, Value: v.Value}, nil
}

// buildClient maps the configuration onto a gosnmp client.
func buildClient(cfg map[string]any) (*gosnmp.GoSNMP, error) {
	target := getStringValue(cfg, "target")
	if target == "" {
		return nil, errors.New("session: target is required")
	}

	client := &gosnmp.GoSNMP{
		Target:    target,
		Port:      161,
		Community: "public",
		Version:   gosnmp.Version2c,
		Timeout:   5 * time.Second,
		Retries:   1,
		MaxOids:   gosnmp.MaxOids,
	}

	if port := getIntValue(cfg, "port"); port != 0 {
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("session: port must be between 1 and 65535, got %d", port)
		}
		client.Port = uint16(port)
	}
	if community := getStringValue(cfg, "community"); community != "" {
		client.Community = community
	}
	if version := getStringValue(cfg, "version"); version != "" {
		switch version {
		case "1":
			client.Version = gosnmp.Version1
		case "2c":
			client.Version = gosnmp.Version2c
		default:
			return nil, fmt.Errorf("session: unsupported version %q (must be 1 or 2c; wrap a pre-built client for v3)", version)
		}
	}
	if d := getDurationValue(cfg, "timeout"); d > 0 {
		client.Timeout = d
	}
	if retries := getIntValue(cfg, "retries"); retries > 0 {
		client.Retries = retries
	}
	if maxOids := getIntValue(cfg, "max_oids"); maxOids > 0 {
		client.MaxOids = maxOids
	}

	return client, nil
}

// setPDU types a write value. Strings and byte slices go out as octet
// strings, integers as INTEGER; a pre-typed gosnmp.SnmpPDU passes through
// with its OID rewritten.
func setPDU(oid string, value any) (gosnmp.SnmpPDU, error) {
	switch v := value.(type) {
	case gosnmp.SnmpPDU:
		v.Name = oid
		return v, nil
	case string:
		return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.OctetString, Value: v}, nil
	case []byte:
		return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.OctetString, Value: v}, nil
	case int:
		return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.Integer, Value: v}, nil
	case int32:
		return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.Integer, Value: int(v)}, nil
	case uint32:
		return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.Gauge32, Value: v}, nil
	case uint64:
		return gosnmp.SnmpPDU{Name: oid, Type: gosnmp.Counter64, Value: v}, nil
	default:
		return gosnmp.SnmpPDU{}, fmt.Errorf("unsupported set value type %T", value)
	}
}

// normalizeOID ensures a single leading dot.
func normalizeOID(oid string) string {
	if oid == "" || strings.HasPrefix(oid, ".") {
		return oid
	}
	return "." + oid
}

// Configuration helper functions for type-safe value extraction.

func getStringValue(m map[string]any, key string) string {
	if val, ok := m[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getIntValue(m map[string]any, key string) int {
	if val, ok := m[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return 0
}

func getDurationValue(m map[string]any, key string) time.Duration {
	if val, ok := m[key]; ok {
		switch v := val.(type) {
		case time.Duration:
			return v
		case int:
			return time.Duration(v) * time.Second
		case int64:
			return time.Duration(v) * time.Second
		case float64:
			return time.Duration(v * float64(time.Second))
		case string:
			if d, err := time.ParseDuration(v); err == nil {
				return d
			}
		}
	}
	return 0
}
