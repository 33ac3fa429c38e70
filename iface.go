package threadlet

import "net"

// Interface describes one usable IPv4 network interface (§6 External
// interfaces: interface enumeration).
type Interface struct {
	Name              string
	IPv4              Addr
	Netmask           Addr
	Broadcast         Addr
	Up                bool
	Loopback          bool
	SupportsBroadcast bool
}

// EnumerateInterfaces returns the usable IPv4 interfaces on the host,
// skipping loopback and down interfaces (§6). This is built on the standard
// library's net package: no library in the reference corpus offers IPv4
// interface/netmask/broadcast enumeration, and net.Interfaces is the
// canonical cross-platform way to obtain it, so no third-party dependency
// is substituted here (see DESIGN.md).
func EnumerateInterfaces() ([]Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, Wrap(NoResources, "enumerate interfaces", err)
	}
	var out []Interface
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp == 0 {
			continue
		}
		if ifc.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if !ok {
				continue
			}
			ip4 := ipNet.IP.To4()
			if ip4 == nil {
				continue
			}
			mask := net.IP(ipNet.Mask).To4()
			if mask == nil {
				continue
			}
			bcastIP := make(net.IP, 4)
			for i := 0; i < 4; i++ {
				bcastIP[i] = ip4[i] | ^mask[i]
			}
			out = append(out, Interface{
				Name:              ifc.Name,
				IPv4:              Addr{IP: [4]byte(ip4)},
				Netmask:           Addr{IP: [4]byte(mask)},
				Broadcast:         Addr{IP: [4]byte(bcastIP)},
				Up:                true,
				Loopback:          false,
				SupportsBroadcast: ifc.Flags&net.FlagBroadcast != 0,
			})
		}
	}
	return out, nil
}
