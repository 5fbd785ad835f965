package tracelib

import (
	"fmt"
	"net"

	"github.com/EvilSuperstars/go-cidrman"
	"github.com/asergeyev/nradix"
)

// privateRanges lists addresses which make no sense for geolocation:
// loopback, link-local and private networks.
var privateRanges = [][2]string{
	{"127.0.0.0", "127.255.255.255"},
	{"169.254.0.0", "169.254.255.255"},
	{"10.0.0.0", "10.255.255.255"},
	{"172.16.0.0", "172.31.255.255"},
	{"192.168.0.0", "192.168.255.255"},
}

var defaultPrivateClassifier = mustPrivateClassifier()

type privateClassifier struct {
	tree *nradix.Tree
}

func (p privateClassifier) IsPrivate(ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil {
		// ::1, fe80::/10 and fc00::/7
		return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsPrivate()
	}

	value, err := p.tree.FindCIDR(ip4.String())

	return err == nil && value != nil
}

func newPrivateClassifier() (privateClassifier, error) {
	tree := nradix.NewTree(0)

	for _, v := range privateRanges {
		cidrs, err := cidrman.IPRangeToCIDRs(v[0], v[1])
		if err != nil {
			return privateClassifier{}, fmt.Errorf("cannot convert range %s-%s: %w", v[0], v[1], err)
		}

		for _, cidr := range cidrs {
			if err := tree.AddCIDR(cidr, true); err != nil {
				return privateClassifier{}, fmt.Errorf("cannot add %s: %w", cidr, err)
			}
		}
	}

	return privateClassifier{tree: tree}, nil
}

func mustPrivateClassifier() privateClassifier {
	rv, err := newPrivateClassifier()
	if err != nil {
		panic(err)
	}

	return rv
}

// IsPrivateIP tells if IP address belongs to loopback, link-local or
// private networks.
func IsPrivateIP(ip net.IP) bool {
	return defaultPrivateClassifier.IsPrivate(ip)
}
