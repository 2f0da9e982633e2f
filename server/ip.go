package server

import (
	"net"
	"strings"
)

// ExtractRealIP picks the client address from X-Forwarded-For, walking from
// the right past trusted proxies, then X-Real-IP, then the peer address.
func ExtractRealIP(remoteAddr string, headers map[string][]string, trustedProxies []*net.IPNet) string {
	if xForwardedFor := headers["X-Forwarded-For"]; len(xForwardedFor) > 0 {
		ips := strings.Split(xForwardedFor[0], ",")
		if len(ips) > 20 {
			ips = ips[len(ips)-20:]
		}

		for i := len(ips) - 1; i >= 0; i-- {
			parsedIP := strings.TrimSpace(ips[i])
			if !isTrustedProxy(parsedIP, trustedProxies) && isValidIP(parsedIP) {
				return parsedIP
			}
		}
	}

	if xRealIP := headers["X-Real-Ip"]; len(xRealIP) > 0 && isValidIP(xRealIP[0]) {
		return xRealIP[0]
	}

	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

func isTrustedProxy(ip string, trustedProxies []*net.IPNet) bool {
	if len(trustedProxies) == 0 {
		return false
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, network := range trustedProxies {
		if network.Contains(parsed) {
			return true
		}
	}
	return false
}

func isValidIP(ip string) bool {
	return net.ParseIP(ip) != nil
}
