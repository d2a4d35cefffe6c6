// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package net

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/idna"
)

// ErrNotAllowed indicates the URL did not match the outbound allowlist.
var ErrNotAllowed = errors.New("outbound url not allowed")

// Allowlist is the outbound policy for upstream traffic: a proxy target or
// fetch URL passes only if its scheme, port, and normalized host were all
// registered. Hosts come from the configured upstream bases plus any extra
// operator-listed hosts.
type Allowlist struct {
	hosts   map[string]struct{}
	schemes map[string]struct{}
	ports   map[int]struct{}
}

// NewAllowlist returns an empty allowlist that rejects everything.
func NewAllowlist() *Allowlist {
	return &Allowlist{
		hosts:   make(map[string]struct{}),
		schemes: make(map[string]struct{}),
		ports:   make(map[int]struct{}),
	}
}

// AddBase registers an upstream base URL: its scheme, effective port, and
// normalized host all become allowed.
func (a *Allowlist) AddBase(rawURL string) error {
	u, ok := ParseDirectHTTPURL(rawURL)
	if !ok {
		return fmt.Errorf("invalid upstream base %q", rawURL)
	}
	scheme := strings.ToLower(u.Scheme)
	port, err := urlPort(u, scheme)
	if err != nil {
		return err
	}
	host, err := NormalizeHost(u.Hostname())
	if err != nil {
		return err
	}
	a.schemes[scheme] = struct{}{}
	a.ports[port] = struct{}{}
	a.hosts[host] = struct{}{}
	return nil
}

// AddHost registers an additional allowed host. It rides on the schemes and
// ports of the registered bases.
func (a *Allowlist) AddHost(raw string) error {
	host, err := NormalizeHost(raw)
	if err != nil {
		return err
	}
	a.hosts[host] = struct{}{}
	return nil
}

// Check verifies a concrete outbound URL against the allowlist.
func (a *Allowlist) Check(u *url.URL) error {
	if u == nil {
		return fmt.Errorf("%w: nil url", ErrNotAllowed)
	}
	scheme := strings.ToLower(u.Scheme)
	if _, ok := a.schemes[scheme]; !ok {
		return fmt.Errorf("%w: scheme %q", ErrNotAllowed, scheme)
	}
	port, err := urlPort(u, scheme)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAllowed, err)
	}
	if _, ok := a.ports[port]; !ok {
		return fmt.Errorf("%w: port %d", ErrNotAllowed, port)
	}
	host, err := NormalizeHost(u.Hostname())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotAllowed, err)
	}
	if _, ok := a.hosts[host]; !ok {
		return fmt.Errorf("%w: host %q", ErrNotAllowed, host)
	}
	return nil
}

// Hosts returns the allowed hosts in sorted order, for startup logging.
func (a *Allowlist) Hosts() []string {
	hosts := make([]string, 0, len(a.hosts))
	for h := range a.hosts {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// NormalizeHost validates and normalizes a host for comparison. IDNA hosts
// are folded to their ASCII (punycode) form, IPs to their canonical text.
func NormalizeHost(raw string) (string, error) {
	host := strings.TrimSpace(raw)
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if strings.Contains(host, "://") {
		return "", fmt.Errorf("host must not include scheme: %s", raw)
	}
	if strings.Contains(host, "/") {
		return "", fmt.Errorf("host must not include path: %s", raw)
	}
	if strings.Contains(host, "@") {
		return "", fmt.Errorf("host must not include userinfo: %s", raw)
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	}
	if strings.Contains(host, ":") && net.ParseIP(host) == nil {
		return "", fmt.Errorf("host must not include port: %s", raw)
	}
	if strings.Contains(host, "%") {
		return "", fmt.Errorf("host must not include zone: %s", raw)
	}
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", fmt.Errorf("host is empty")
	}
	if ip := net.ParseIP(host); ip != nil {
		return strings.ToLower(ip.String()), nil
	}
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("invalid host %q: %w", raw, err)
	}
	return strings.ToLower(ascii), nil
}

func urlPort(u *url.URL, scheme string) (int, error) {
	if u.Port() == "" {
		switch scheme {
		case "http":
			return 80, nil
		case "https":
			return 443, nil
		default:
			return 0, fmt.Errorf("unknown scheme %q", scheme)
		}
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", u.Port(), err)
	}
	return port, nil
}
