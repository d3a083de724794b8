// Package munge provides the post-fetch value transform pipeline.
//
// A munge is a pure, attribute-keyed transform applied to a raw SNMP value
// before it is cached: binary IP addresses become dotted-decimal strings, MAC
// octets become colon-separated hex, interface speeds become human labels,
// and so on. Transforms are deterministic given the same raw input and
// Options, and never touch the network.
//
// Basic Usage:
//
//	v, ok := munge.Mac([]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}, munge.Options{})
//	// v == "de:ad:be:ef:00:01", ok == true
//
// The second return value reports presence: false means the raw value was
// absent or empty and the attribute should be treated as having no value.
package munge

import (
	"fmt"
	"math/big"
	"net"
	"strconv"
	"strings"
)

// Options carries instance-level settings consulted by transforms.
//
// The options value is threaded through from the owning device at call time
// rather than held in package state, so two devices in one process can use
// different settings.
type Options struct {
	// BigInt selects the arbitrary-precision form for 64-bit counter
	// values. When false, counters are rendered as decimal strings.
	BigInt bool
}

// Func transforms a raw fetched value into its display form.
//
// The boolean result reports presence: false means the input was absent or
// empty and no value should be cached for the attribute.
type Func func(raw any, opts Options) (any, bool)

// Identity returns the raw value formatted for display without
// interpretation. Octet strings become Go strings, numeric types are kept
// as-is, nil is absent.
func Identity(raw any, _ Options) (any, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case []byte:
		return string(v), true
	default:
		return v, true
	}
}

// IP converts a binary-encoded IPv4 or IPv6 address to its textual form.
// A value that is already a well-formed address string passes through
// unchanged. Inputs of unexpected length are absent.
func IP(raw any, _ Options) (any, bool) {
	b, ok := octets(raw)
	if !ok || len(b) == 0 {
		return nil, false
	}
	if ip := net.ParseIP(string(b)); ip != nil {
		return ip.String(), true
	}
	if len(b) != net.IPv4len && len(b) != net.IPv6len {
		return nil, false
	}
	return net.IP(b).String(), true
}

// Mac converts a binary octet string to colon-separated lowercase
// hexadecimal. Empty or absent input yields an absent result, per the
// contract that a zero-length physical address means "no address".
func Mac(raw any, _ Options) (any, bool) {
	b, ok := octets(raw)
	if !ok || len(b) == 0 {
		return nil, false
	}
	parts := make([]string, len(b))
	for i, octet := range b {
		parts[i] = fmt.Sprintf("%02x", octet)
	}
	return strings.Join(parts, ":"), true
}

// Bits renders the low byte of an unsigned integer as a fixed-width binary
// digit string, most significant bit first, always exactly 8 characters.
// Used for capability-layer bitmaps such as sysServices.
func Bits(raw any, _ Options) (any, bool) {
	if s, ok := raw.(string); ok {
		// Already decoded; keep the transform idempotent.
		if len(s) == 8 && strings.Trim(s, "01") == "" {
			return s, true
		}
	}
	u, ok := unsigned(raw)
	if !ok {
		return nil, false
	}
	return fmt.Sprintf("%08b", u&0xff), true
}

// speedLabels maps nominal interface speeds to conventional human labels.
// Values without a label fall through as plain decimal strings.
var speedLabels = map[uint64]string{
	64000:         "64 kbps",
	1536000:       "T1",
	1544000:       "T1",
	2048000:       "E1",
	4000000:       "4.0 Mbps",
	10000000:      "10 Mbps",
	16000000:      "16 Mbps",
	34000000:      "E3",
	44736000:      "T3",
	45000000:      "45 Mbps",
	100000000:     "100 Mbps",
	155000000:     "OC-3",
	400000000:     "400 Mbps",
	622000000:     "OC-12",
	1000000000:    "1.0 Gbps",
	2488000000:    "OC-48",
	2500000000:    "2.5 Gbps",
	10000000000:   "10 Gbps",
	25000000000:   "25 Gbps",
	40000000000:   "40 Gbps",
	100000000000:  "100 Gbps",
	400000000000:  "400 Gbps",
}

// Speed maps a numeric link speed to a human label. Unmapped speeds are
// returned as their decimal string so callers always get something
// printable.
func Speed(raw any, _ Options) (any, bool) {
	if s, ok := raw.(string); ok {
		// Idempotent on an already-labeled value.
		if _, err := strconv.ParseUint(s, 10, 64); err != nil {
			return s, true
		}
	}
	u, ok := unsigned(raw)
	if !ok {
		return nil, false
	}
	if label, found := speedLabels[u]; found {
		return label, true
	}
	return strconv.FormatUint(u, 10), true
}

// Counter64 converts a 64-bit counter value. With Options.BigInt it returns
// an arbitrary-precision *big.Int, otherwise the raw decimal string.
func Counter64(raw any, opts Options) (any, bool) {
	if b, ok := raw.(*big.Int); ok {
		if opts.BigInt {
			return b, true
		}
		return b.String(), true
	}
	u, ok := unsigned(raw)
	if !ok {
		return nil, false
	}
	if opts.BigInt {
		return new(big.Int).SetUint64(u), true
	}
	return strconv.FormatUint(u, 10), true
}

// octets coerces a raw SNMP value into a byte slice.
func octets(raw any) ([]byte, bool) {
	switch v := raw.(type) {
	case nil:
		return nil, false
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}

// unsigned coerces the numeric types gosnmp hands back into a uint64.
func unsigned(raw any) (uint64, bool) {
	switch v := raw.(type) {
	case uint64:
		return v, true
	case uint32:
		return uint64(v), true
	case uint:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int32:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case string:
		u, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return u, true
	default:
		return 0, false
	}
}
