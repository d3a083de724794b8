// Command snmpinfo resolves symbolic device attributes over SNMP.
//
// It reads a schema-validated configuration file listing target devices,
// optionally auto-classifies each device into its most specific family,
// and prints the requested attributes.
//
// Usage:
//
//	snmpinfo -config snmpinfo.yaml
//	snmpinfo -target 192.0.2.1 -community public -attrs descr,name,i_speed
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/geekxflood/snmpinfo/classify"
	"github.com/geekxflood/snmpinfo/config"
	"github.com/geekxflood/snmpinfo/device"
	"github.com/geekxflood/snmpinfo/logging"
	_ "github.com/geekxflood/snmpinfo/profiles"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("snmpinfo", flag.ExitOnError)
	configPath := fs.String("config", "", "Configuration file (YAML or JSON)")
	target := fs.String("target", "", "Single target address (overrides -config devices)")
	community := fs.String("community", "public", "SNMP community for -target")
	version := fs.String("version", "2c", "SNMP version for -target (1 or 2c)")
	attrs := fs.String("attrs", "descr,name,uptime", "Comma-separated attribute names")
	autoSpecify := fs.Bool("specify", true, "Auto-classify devices into their most specific family")
	debug := fs.Bool("debug", false, "Enable debug tracing")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	logger := logging.Nop()
	rules := classify.DefaultRules()
	var targets []map[string]any
	attrList := splitAttrs(*attrs)

	if *configPath != "" {
		mgr, err := config.NewManager(config.Options{ConfigPath: *configPath})
		if err != nil {
			printError(err)
			return 1
		}
		defer mgr.Close()

		level, _ := mgr.GetString("logging.level", "info")
		if *debug {
			level = logging.LevelDebug
		}
		format, _ := mgr.GetString("logging.format", logging.FormatLogfmt)
		output, _ := mgr.GetString("logging.output", "stdout")
		logger, _, err = logging.New(logging.Config{Level: level, Format: format, Output: output})
		if err != nil {
			printError(err)
			return 1
		}

		overrides, err := mgr.ClassifierRules()
		if err != nil {
			printError(err)
			return 1
		}
		for _, rule := range overrides {
			if err := rules.Append(rule); err != nil {
				printError(err)
				return 1
			}
		}

		targets, err = mgr.Devices()
		if err != nil {
			printError(err)
			return 1
		}
	}

	if *target != "" {
		targets = append(targets, map[string]any{
			"target":       *target,
			"community":    *community,
			"version":      *version,
			"auto_specify": *autoSpecify,
		})
	}
	if len(targets) == 0 {
		printError(fmt.Errorf("no targets: provide -config or -target"))
		return 1
	}

	status := 0
	for _, conf := range targets {
		if *debug {
			conf["debug"] = true
		}
		if err := report(conf, attrList, logger, rules); err != nil {
			printError(err)
			status = 1
		}
	}
	return status
}

// report opens one device and prints its attributes.
func report(conf map[string]any, attrList []string, logger logging.Logger, rules *classify.Ruleset) error {
	if v, ok := conf["attributes"]; ok {
		if names, ok := v.([]any); ok {
			perDevice := make([]string, 0, len(names))
			for _, n := range names {
				if s, ok := n.(string); ok {
					perDevice = append(perDevice, s)
				}
			}
			attrList = perDevice
		}
		delete(conf, "attributes")
	}

	dev, err := device.New(conf, device.WithLogger(logger), device.WithRules(rules))
	if err != nil {
		return err
	}
	defer dev.Close()

	targetName, _ := conf["target"].(string)
	fmt.Printf("%s (class %s)\n", targetName, dev.Class())
	for _, attr := range attrList {
		v, err := dev.Get(attr)
		if err != nil {
			fmt.Printf("  %-16s error: %v\n", attr, err)
			continue
		}
		switch rows := v.(type) {
		case map[string]any:
			fmt.Printf("  %s:\n", attr)
			for _, iid := range sortedKeys(rows) {
				fmt.Printf("    %-12s %v\n", iid, rows[iid])
			}
		default:
			fmt.Printf("  %-16s %v\n", attr, v)
		}
	}
	return nil
}

func splitAttrs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "snmpinfo: %v\n", err)
}
