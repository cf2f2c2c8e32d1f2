package oui

import (
	"cmp"
	_ "embed"
	"encoding/hex"
	"net"
	"slices"
	"strings"
)

// oui.txt holds "<6 lowercase hex digits> <vendor>" lines sorted by prefix. It is a small
// subset of the IEEE registry covering common home-network hardware and hypervisors.

//go:embed oui.txt
var ouiRaw string

var ouiList = strings.Split(strings.TrimSpace(ouiRaw), "\n")

const Unknown = "Unknown"

func MacToVendor(mac string) string {
	hwAddr, err := net.ParseMAC(mac)
	if err != nil || len(hwAddr) < 3 {
		return Unknown
	}

	oui := hex.EncodeToString(hwAddr[:3])
	i, ok := slices.BinarySearchFunc(ouiList, oui, func(str, target string) int {
		return cmp.Compare(str[:6], target)
	})

	if !ok {
		return Unknown
	}

	vendorName := ouiList[i][7:]
	return strings.TrimSpace(vendorName)
}
