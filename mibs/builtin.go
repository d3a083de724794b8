package mibs

// builtins are the module tables compiled into every binary. Only the
// objects the shipped device profiles reference are included; vendors
// needing more register additional modules through RegisterModule.
var builtins = []Module{
	{
		Name: "SNMPv2-MIB",
		Objects: map[string]string{
			"sysDescr":    ".1.3.6.1.2.1.1.1",
			"sysObjectID": ".1.3.6.1.2.1.1.2",
			"sysUpTime":   ".1.3.6.1.2.1.1.3",
			"sysContact":  ".1.3.6.1.2.1.1.4",
			"sysName":     ".1.3.6.1.2.1.1.5",
			"sysLocation": ".1.3.6.1.2.1.1.6",
			"sysServices": ".1.3.6.1.2.1.1.7",
		},
	},
	{
		Name: "IF-MIB",
		Objects: map[string]string{
			"ifNumber":      ".1.3.6.1.2.1.2.1",
			"ifIndex":       ".1.3.6.1.2.1.2.2.1.1",
			"ifDescr":       ".1.3.6.1.2.1.2.2.1.2",
			"ifType":        ".1.3.6.1.2.1.2.2.1.3",
			"ifMtu":         ".1.3.6.1.2.1.2.2.1.4",
			"ifSpeed":       ".1.3.6.1.2.1.2.2.1.5",
			"ifPhysAddress": ".1.3.6.1.2.1.2.2.1.6",
			"ifAdminStatus": ".1.3.6.1.2.1.2.2.1.7",
			"ifOperStatus":  ".1.3.6.1.2.1.2.2.1.8",
			"ifLastChange":  ".1.3.6.1.2.1.2.2.1.9",
			"ifInOctets":    ".1.3.6.1.2.1.2.2.1.10",
			"ifInErrors":    ".1.3.6.1.2.1.2.2.1.14",
			"ifOutOctets":   ".1.3.6.1.2.1.2.2.1.16",
			"ifOutErrors":   ".1.3.6.1.2.1.2.2.1.20",
			"ifName":        ".1.3.6.1.2.1.31.1.1.1.1",
			"ifHCInOctets":  ".1.3.6.1.2.1.31.1.1.1.6",
			"ifHCOutOctets": ".1.3.6.1.2.1.31.1.1.1.10",
			"ifHighSpeed":   ".1.3.6.1.2.1.31.1.1.1.15",
			"ifAlias":       ".1.3.6.1.2.1.31.1.1.1.18",
		},
	},
	{
		Name: "IP-MIB",
		Objects: map[string]string{
			"ipForwarding":             ".1.3.6.1.2.1.4.1",
			"ipAdEntAddr":              ".1.3.6.1.2.1.4.20.1.1",
			"ipAdEntIfIndex":           ".1.3.6.1.2.1.4.20.1.2",
			"ipAdEntNetMask":           ".1.3.6.1.2.1.4.20.1.3",
			"ipNetToMediaPhysAddress":  ".1.3.6.1.2.1.4.22.1.2",
			"ipNetToMediaNetAddress":   ".1.3.6.1.2.1.4.22.1.3",
		},
	},
	{
		Name: "RFC1213-MIB",
		Objects: map[string]string{
			"ipRouteDest":    ".1.3.6.1.2.1.4.21.1.1",
			"ipRouteIfIndex": ".1.3.6.1.2.1.4.21.1.2",
			"ipRouteMetric1": ".1.3.6.1.2.1.4.21.1.3",
			"ipRouteNextHop": ".1.3.6.1.2.1.4.21.1.7",
			"ipRouteType":    ".1.3.6.1.2.1.4.21.1.8",
			"ipRouteProto":   ".1.3.6.1.2.1.4.21.1.9",
			"ipRouteMask":    ".1.3.6.1.2.1.4.21.1.11",
		},
	},
	{
		Name: "BRIDGE-MIB",
		Objects: map[string]string{
			"dot1dBaseBridgeAddress": ".1.3.6.1.2.1.17.1.1",
			"dot1dBaseNumPorts":      ".1.3.6.1.2.1.17.1.2",
			"dot1dBasePortIfIndex":   ".1.3.6.1.2.1.17.1.4.1.2",
			"dot1dStpPriority":       ".1.3.6.1.2.1.17.2.2",
			"dot1dStpRootPort":       ".1.3.6.1.2.1.17.2.7",
			"dot1dStpPortState":      ".1.3.6.1.2.1.17.2.15.1.3",
			"dot1dTpFdbAddress":      ".1.3.6.1.2.1.17.4.3.1.1",
			"dot1dTpFdbPort":         ".1.3.6.1.2.1.17.4.3.1.2",
			"dot1dTpFdbStatus":       ".1.3.6.1.2.1.17.4.3.1.3",
		},
	},
	{
		Name: "ENTITY-MIB",
		Objects: map[string]string{
			"entPhysicalDescr":     ".1.3.6.1.2.1.47.1.1.1.1.2",
			"entPhysicalClass":     ".1.3.6.1.2.1.47.1.1.1.1.5",
			"entPhysicalName":      ".1.3.6.1.2.1.47.1.1.1.1.7",
			"entPhysicalSerialNum": ".1.3.6.1.2.1.47.1.1.1.1.11",
		},
	},
	{
		Name: "CISCO-STACK-MIB",
		Objects: map[string]string{
			"chassisModel":              ".1.3.6.1.4.1.9.5.1.2.16",
			"chassisSerialNumberString": ".1.3.6.1.4.1.9.5.1.2.19",
			"moduleModel":               ".1.3.6.1.4.1.9.5.1.3.1.1.17",
			"portName":                  ".1.3.6.1.4.1.9.5.1.4.1.1.4",
			"portDuplex":                ".1.3.6.1.4.1.9.5.1.4.1.1.10",
			"portIfIndex":               ".1.3.6.1.4.1.9.5.1.4.1.1.11",
		},
	},
	{
		Name: "OLD-CISCO-SYS-MIB",
		Objects: map[string]string{
			"avgBusy1":   ".1.3.6.1.4.1.9.2.1.57",
			"avgBusy5":   ".1.3.6.1.4.1.9.2.1.58",
			"freeMem":    ".1.3.6.1.4.1.9.2.1.8",
			"hostName":   ".1.3.6.1.4.1.9.2.1.3",
		},
	},
	{
		Name: "JUNIPER-MIB",
		Objects: map[string]string{
			"jnxBoxClass":    ".1.3.6.1.4.1.2636.3.1.1",
			"jnxBoxDescr":    ".1.3.6.1.4.1.2636.3.1.2",
			"jnxBoxSerialNo": ".1.3.6.1.4.1.2636.3.1.3",
		},
	},
}
