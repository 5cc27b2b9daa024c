// Package portname derives the short labels shown for switch ports.
package portname

import "regexp"

type Rule struct {
	Regex   *regexp.Regexp
	Handler func(match []string) string
}

var Rules = []Rule{
	// Slot/Port style: "Slot: 0 Port: 2 Gigabit - Level"
	{
		regexp.MustCompile(`Slot:\s*\d+\s*Port:\s*(\d+)`),
		func(m []string) string { return m[1] },
	},
	// Generic "Port16" or "Port: 16"
	{
		regexp.MustCompile(`^Port\s*:?\s*(\d+)`),
		func(m []string) string { return m[1] },
	},
	// SFP ports like "SFP+1" → "s1"
	{
		regexp.MustCompile(`SFP\+?(\d+)`),
		func(m []string) string { return "s" + m[1] },
	},
	// Port channels: "Port-channel12", "Po12", "ae3" → "po12", "ae3"
	{
		regexp.MustCompile(`^(?:Port-channel|Po)(\d+)$`),
		func(m []string) string { return "po" + m[1] },
	},
	{
		regexp.MustCompile(`^(ae\d+)$`),
		func(m []string) string { return m[1] },
	},
	// Juniper: "ge-0/0/12", "xe-1/1/3.0" → "12", "3"
	{
		regexp.MustCompile(`^(?:fe|ge|xe|et|mge)-\d+/\d+/(\d+)`),
		func(m []string) string { return m[1] },
	},
	// Cisco 3-level, long or short: "GigabitEthernet1/0/48", "Gi1/0/48" → "48"
	{
		regexp.MustCompile(`^(?:GigabitEthernet|TenGigabitEthernet|TwentyFiveGigE|FortyGigabitEthernet|FastEthernet|Gi|Te|Twe|Fo|Fa)\d+/\d+/(\d+)`),
		func(m []string) string { return m[1] },
	},
	// Cisco 2-level: "GigabitEthernet0/9" → "9"
	{
		regexp.MustCompile(`^(?:GigabitEthernet|TenGigabitEthernet|FastEthernet|Gi|Te|Fa)\d+/(\d+)`),
		func(m []string) string { return m[1] },
	},
	// Arista and Linux style: "Ethernet12", "Ethernet49/1", "eth0"
	{
		regexp.MustCompile(`^(?:Ethernet|eth)(\d+(?:/\d+)?)$`),
		func(m []string) string { return m[1] },
	},
	// VLAN interfaces: "Vlan20", "vlan.20", "irb.20" → "v20"
	{
		regexp.MustCompile(`^(?:Vlan|vlan\.|irb\.)(\d+)$`),
		func(m []string) string { return "v" + m[1] },
	},
}

// Normalize extracts a short, consistent label for display on port boxes.
func Normalize(name string) string {
	for _, rule := range Rules {
		if match := rule.Regex.FindStringSubmatch(name); len(match) > 1 {
			return rule.Handler(match)
		}
	}
	return name
}
