package decode

import "strconv"

// Bits returns the positions of the set bits in b. Position 0 is the most
// significant bit of the first octet, the SNMP BITS and PortList layout.
func Bits(b []byte) []int {
	var set []int
	for i, octet := range b {
		for j := 0; j < 8; j++ {
			if octet&(0x80>>j) != 0 {
				set = append(set, i*8+j)
			}
		}
	}
	return set
}

// VLANs decodes a VLAN bit vector. offset is the VLAN number of bit 0:
// 0 for the first 1024 bit block, 1024 for the "2k" block and so on.
func VLANs(v interface{}, offset int) ([]int, error) {
	b, err := Bytes(v)
	if err != nil {
		return nil, err
	}
	vlans := Bits(b)
	for i := range vlans {
		vlans[i] += offset
	}
	return vlans, nil
}

// Ports decodes a PortList: bit 0 is bridge port 1.
func Ports(v interface{}) ([]int, error) {
	b, err := Bytes(v)
	if err != nil {
		return nil, err
	}
	ports := Bits(b)
	for i := range ports {
		ports[i]++
	}
	return ports, nil
}

// LLDPCapabilities names the bits of an LLDP system capabilities map.
var LLDPCapabilities = []string{
	"other",
	"repeater",
	"bridge",
	"wlanAccessPoint",
	"router",
	"telephone",
	"docsisCableDevice",
	"stationOnly",
}

// Capabilities decodes an LLDP capabilities bit map into names. Bits beyond
// the known set are reported as "bitN".
func Capabilities(v interface{}) ([]string, error) {
	b, err := Bytes(v)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, bit := range Bits(b) {
		if bit < len(LLDPCapabilities) {
			names = append(names, LLDPCapabilities[bit])
			continue
		}
		names = append(names, "bit"+strconv.Itoa(bit))
	}
	return names, nil
}
