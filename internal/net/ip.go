package net

import (
	"log"
	"net"
	"strconv"
)

// routeProbe is dialled over UDP to learn which interface the OS routes
// LAN traffic through. No packet is sent.
const routeProbe = "192.0.2.1:80"

// LANAddr returns the address other machines on the network should use to
// reach this one. It prefers the routed interface, then any private IPv4
// interface, then loopback.
func LANAddr() net.IP {
	if ip := routedAddr(); ip != nil {
		return ip
	}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		log.Printf("[NET] Cannot list interfaces: %v", err)
		return net.IPv4(127, 0, 0, 1)
	}
	if ip := pickLANAddr(addrs); ip != nil {
		return ip
	}
	log.Println("[NET] No LAN address found, using loopback")
	return net.IPv4(127, 0, 0, 1)
}

func routedAddr() net.IP {
	conn, err := net.Dial("udp", routeProbe)
	if err != nil {
		return nil
	}
	defer conn.Close()
	udp, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || udp.IP.IsLoopback() || udp.IP.IsUnspecified() {
		return nil
	}
	return udp.IP
}

// pickLANAddr chooses a private IPv4 address, or failing that any
// non-loopback IPv4 address.
func pickLANAddr(addrs []net.Addr) net.IP {
	var fallback net.IP
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipnet.IP.To4()
		if ip == nil || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
			continue
		}
		if ip.IsPrivate() {
			return ip
		}
		if fallback == nil {
			fallback = ip
		}
	}
	return fallback
}

// ListenPort extracts the numeric port from a listen address like ":8899".
func ListenPort(addr string) (int, error) {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(port)
}

// ShareAddress returns "ip:port" for a server listening on addr, filling
// in the LAN address for wildcard hosts.
func ShareAddress(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = LANAddr().String()
	}
	return net.JoinHostPort(host, port)
}
