package discovery

import (
	"fmt"
	"net"
	"os"

	"github.com/google/uuid"
)

const loopbackFallback = "127.0.0.1"

// LocalIdentity derives this instance's identity from the host name and its
// resolved IPv4 address, as "<hostname>_<address>".
//
// Two hosts built from the same image can end up with the same identity. That
// is accepted; use Config.UniqueIdentity to opt into a random suffix.
func LocalIdentity() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to read hostname: %w", err)
	}
	if hostname == "" {
		hostname = "localhost"
	}
	return hostname + "_" + resolveHostIPv4(hostname), nil
}

// resolveHostIPv4 returns the first IPv4 address the host name resolves to,
// then the first usable interface address, then loopback.
func resolveHostIPv4(hostname string) string {
	if addrs, err := net.LookupHost(hostname); err == nil {
		for _, a := range addrs {
			if ip := net.ParseIP(a); ip != nil && ip.To4() != nil {
				return ip.To4().String()
			}
		}
	}
	if ips, err := localIPv4s(); err == nil && len(ips) > 0 {
		return ips[0]
	}
	return loopbackFallback
}

// localIPv4s returns all non-loopback IPv4 addresses on interfaces that are up.
func localIPv4s() ([]string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	var ips []string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() || ip.To4() == nil {
				continue
			}
			ips = append(ips, ip.To4().String())
		}
	}
	return ips, nil
}

// resolveIdentity applies the config overrides on top of LocalIdentity.
func resolveIdentity(cfg *Config) (string, error) {
	id := cfg.Identity
	if id == "" {
		var err error
		if id, err = LocalIdentity(); err != nil {
			return "", err
		}
	}
	if cfg.UniqueIdentity {
		id += "-" + uuid.New().String()[:8]
	}
	return id, nil
}
