// Package profiles ships the built-in device-family class definitions.
//
// Importing the package (usually blank) registers the classes into
// registry.Default; Register wires them into a private registry instead.
// The class names line up with what the classifier returns: generic,
// layer1, layer2, layer3, plus the vendor specializations catalyst,
// ciscorouter, procurve and juniper.
//
// Attribute names follow the vendor-neutral convention of the engine:
// scalar names like "descr", "uptime" and "layers", table names prefixed by
// their subsystem like "i_speed" (interface speed) or "fw_port" (forwarding
// table port). OIDs are pulled from the compiled-in mibs tables so each
// object lives in exactly one place.
package profiles

import (
	"fmt"

	"github.com/geekxflood/snmpinfo/mibs"
	"github.com/geekxflood/snmpinfo/munge"
	"github.com/geekxflood/snmpinfo/registry"
)

func init() {
	if err := Register(registry.Default); err != nil {
		panic(err)
	}
}

// Register defines every shipped class into the given registry.
func Register(r *registry.Registry) error {
	for _, def := range definitions() {
		if err := r.Define(def); err != nil {
			return fmt.Errorf("profiles: %w", err)
		}
	}
	return nil
}

// o resolves a compiled-in object name to its OID. The shipped profiles
// only reference objects present in the mibs tables; a miss is a defect in
// this package, not a runtime condition.
func o(object string) string {
	oid, ok := mibs.OID(object)
	if !ok {
		panic(fmt.Sprintf("profiles: object %q not in compiled-in mibs tables", object))
	}
	return oid
}

func definitions() []registry.Def {
	return []registry.Def{
		{
			Class: "generic",
			Scalars: map[string]string{
				"descr":    o("sysDescr"),
				"id":       o("sysObjectID"),
				"uptime":   o("sysUpTime"),
				"contact":  o("sysContact"),
				"name":     o("sysName"),
				"location": o("sysLocation"),
				"layers":   o("sysServices"),
				"if_count": o("ifNumber"),
			},
			Tables: map[string]string{
				"interfaces":     o("ifIndex"),
				"i_description":  o("ifDescr"),
				"i_type":         o("ifType"),
				"i_mtu":          o("ifMtu"),
				"i_speed":        o("ifSpeed"),
				"i_speed_high":   o("ifHighSpeed"),
				"i_mac":          o("ifPhysAddress"),
				"i_up_admin":     o("ifAdminStatus"),
				"i_up":           o("ifOperStatus"),
				"i_name":         o("ifName"),
				"i_alias":        o("ifAlias"),
				"i_octet_in":     o("ifInOctets"),
				"i_octet_out":    o("ifOutOctets"),
				"i_errors_in":    o("ifInErrors"),
				"i_errors_out":   o("ifOutErrors"),
				"i_octet_in64":   o("ifHCInOctets"),
				"i_octet_out64":  o("ifHCOutOctets"),
				"ip_index":       o("ipAdEntIfIndex"),
				"ip_table":       o("ipAdEntAddr"),
				"ip_netmask":     o("ipAdEntNetMask"),
			},
			Munges: map[string]munge.Func{
				"layers":        munge.Bits,
				"i_mac":         munge.Mac,
				"i_speed":       munge.Speed,
				"ip_table":      munge.IP,
				"ip_netmask":    munge.IP,
				"i_octet_in64":  munge.Counter64,
				"i_octet_out64": munge.Counter64,
			},
			MIBs: map[string]string{
				"SNMPv2-MIB": "sysDescr",
				"IF-MIB":     "ifIndex",
				"IP-MIB":     "ipAdEntAddr",
			},
		},
		{
			Class:   "layer1",
			Parents: []string{"generic"},
		},
		{
			Class:   "layer2",
			Parents: []string{"generic"},
			Scalars: map[string]string{
				"b_mac":   o("dot1dBaseBridgeAddress"),
				"b_ports": o("dot1dBaseNumPorts"),
			},
			Tables: map[string]string{
				"fw_mac":      o("dot1dTpFdbAddress"),
				"fw_port":     o("dot1dTpFdbPort"),
				"fw_status":   o("dot1dTpFdbStatus"),
				"bp_index":    o("dot1dBasePortIfIndex"),
				"stp_p_state": o("dot1dStpPortState"),
			},
			Munges: map[string]munge.Func{
				"b_mac":  munge.Mac,
				"fw_mac": munge.Mac,
			},
			MIBs: map[string]string{
				"BRIDGE-MIB": "dot1dBaseBridgeAddress",
			},
		},
		{
			Class:   "layer3",
			Parents: []string{"layer2"},
			Scalars: map[string]string{
				"ipforwarding": o("ipForwarding"),
			},
			Tables: map[string]string{
				"route_dest":    o("ipRouteDest"),
				"route_ifindex": o("ipRouteIfIndex"),
				"route_metric":  o("ipRouteMetric1"),
				"route_nexthop": o("ipRouteNextHop"),
				"route_type":    o("ipRouteType"),
				"route_proto":   o("ipRouteProto"),
				"route_mask":    o("ipRouteMask"),
				"at_mac":        o("ipNetToMediaPhysAddress"),
				"at_ip":         o("ipNetToMediaNetAddress"),
			},
			Munges: map[string]munge.Func{
				"route_dest":    munge.IP,
				"route_nexthop": munge.IP,
				"route_mask":    munge.IP,
				"at_mac":        munge.Mac,
				"at_ip":         munge.IP,
			},
			MIBs: map[string]string{
				"RFC1213-MIB": "ipRouteDest",
			},
		},
		{
			Class:   "catalyst",
			Parents: []string{"layer2"},
			Scalars: map[string]string{
				"chassis": o("chassisModel"),
				"serial":  o("chassisSerialNumberString"),
			},
			Tables: map[string]string{
				"p_name":    o("portName"),
				"p_duplex":  o("portDuplex"),
				"p_ifindex": o("portIfIndex"),
				"m_model":   o("moduleModel"),
			},
			MIBs: map[string]string{
				"CISCO-STACK-MIB": "portIfIndex",
			},
		},
		{
			Class:   "ciscorouter",
			Parents: []string{"layer3"},
			Scalars: map[string]string{
				"cpu_1min": o("avgBusy1"),
				"cpu_5min": o("avgBusy5"),
				"mem_free": o("freeMem"),
			},
			MIBs: map[string]string{
				"OLD-CISCO-SYS-MIB": "avgBusy5",
			},
		},
		{
			Class:   "procurve",
			Parents: []string{"layer2"},
			Tables: map[string]string{
				"e_descr":  o("entPhysicalDescr"),
				"e_class":  o("entPhysicalClass"),
				"e_name":   o("entPhysicalName"),
				"e_serial": o("entPhysicalSerialNum"),
			},
			MIBs: map[string]string{
				"ENTITY-MIB": "entPhysicalSerialNum",
			},
		},
		{
			Class:   "juniper",
			Parents: []string{"layer3"},
			Scalars: map[string]string{
				"box_descr": o("jnxBoxDescr"),
				"serial":    o("jnxBoxSerialNo"),
			},
			MIBs: map[string]string{
				"JUNIPER-MIB": "jnxBoxSerialNo",
			},
		},
	}
}
