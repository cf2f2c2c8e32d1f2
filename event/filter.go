package event

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"strings"
)

type Filter struct {
	excludedIPs  map[string]struct{}
	excludedMACs map[string]struct{}
}

func NewFilter(excludedIPs map[string]struct{}, excludedMACs map[string]struct{}) Filter {
	return Filter{
		excludedIPs:  excludedIPs,
		excludedMACs: excludedMACs,
	}
}

func (f Filter) IsExcluded(ip string, mac string) bool {
	if _, ok := f.excludedIPs[ip]; ok {
		return true
	} else if _, ok = f.excludedMACs[strings.ToUpper(mac)]; ok {
		return true
	}
	return false
}

func ReadIPs(r io.Reader) (map[string]struct{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	ips := map[string]struct{}{}

	for line := range bytes.Lines(data) {
		trimmedLine := string(bytes.TrimSpace(line))
		if trimmedLine == "" {
			continue
		}
		if !IsValidIPv4(trimmedLine) {
			return nil, fmt.Errorf("invalid IP address: %v", trimmedLine)
		}
		ips[trimmedLine] = struct{}{}
	}

	return ips, nil
}

// ReadMACs keys the result by upper-case MAC, the form used everywhere else.
func ReadMACs(r io.Reader) (map[string]struct{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	macs := map[string]struct{}{}

	for line := range bytes.Lines(data) {
		trimmedLine := string(bytes.TrimSpace(line))
		if trimmedLine == "" {
			continue
		}
		if !IsValidMAC(trimmedLine) {
			return nil, fmt.Errorf("invalid MAC address: %v", trimmedLine)
		}
		macs[strings.ToUpper(trimmedLine)] = struct{}{}
	}

	return macs, nil
}

func IsValidIPv4(ip string) bool {
	if addr := net.ParseIP(ip); addr == nil || addr.To4() == nil {
		return false
	}
	return true
}

func IsValidMAC(mac string) bool {
	_, err := net.ParseMAC(mac)
	return err == nil
}
