package tracelib

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"github.com/miekg/dns"
)

const (
	DefaultProbeBinary     = "traceroute"
	DefaultProbeMaxHops    = 30
	DefaultProbeTimeout    = time.Minute
	DefaultProbeNameserver = "1.1.1.1:53"
)

const probeHostnameMaxLength = 253

var probeHostnameRegexp = regexp.MustCompile(`^(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,63}$`)

// Prober runs a network probe to the target and returns raw lines of
// its output.
type Prober interface {
	Probe(ctx context.Context, target string) ([]string, error)
}

// ProbeOpts configures a traceroute prober. Zero values mean defaults.
type ProbeOpts struct {
	Binary     string
	MaxHops    int
	Timeout    time.Duration
	Nameserver string
}

type tracerouteProber struct {
	binary     string
	maxHops    int
	timeout    time.Duration
	nameserver string
	dnsClient  *dns.Client
}

func (t *tracerouteProber) Probe(ctx context.Context, target string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ip, err := t.ValidateTarget(ctx, target)
	if err != nil {
		return nil, err
	}

	// -q 1 is important: a single probe per hop gives lines
	// parseable by ParseLine.
	cmd := exec.CommandContext(ctx, t.binary,
		"-q", "1",
		"-m", strconv.Itoa(t.maxHops),
		ip.String())

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("probe timed out after %v", t.timeout)
		}

		return nil, fmt.Errorf("probe has failed: %w", err)
	}

	return SplitLines(bytes.NewReader(output))
}

// ValidateTarget checks that target is a routable IP address or a
// hostname which resolves into one.
func (t *tracerouteProber) ValidateTarget(ctx context.Context, target string) (net.IP, error) {
	ip := net.ParseIP(target)

	if ip == nil {
		if len(target) > probeHostnameMaxLength || !probeHostnameRegexp.MatchString(target) {
			return nil, ErrInvalidTarget
		}

		resolved, err := t.resolveHostname(ctx, target)
		if err != nil {
			return nil, err
		}

		ip = resolved
	}

	if IsPrivateIP(ip) || ip.IsUnspecified() || ip.IsMulticast() || ip.IsLoopback() {
		return nil, ErrUnroutableTarget
	}

	return ip, nil
}

func (t *tracerouteProber) resolveHostname(ctx context.Context, hostname string) (net.IP, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(hostname), dns.TypeA)

	resp, _, err := t.dnsClient.ExchangeContext(ctx, msg, t.nameserver)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %s: %w", hostname, err)
	}

	for _, answer := range resp.Answer {
		if record, ok := answer.(*dns.A); ok {
			return record.A, nil
		}
	}

	return nil, fmt.Errorf("%s has no A records: %w", hostname, ErrInvalidTarget)
}

// NewTracerouteProber returns a prober which runs system traceroute
// binary.
func NewTracerouteProber(opts ProbeOpts) Prober {
	rv := &tracerouteProber{
		binary:     opts.Binary,
		maxHops:    opts.MaxHops,
		timeout:    opts.Timeout,
		nameserver: opts.Nameserver,
	}

	if rv.binary == "" {
		rv.binary = DefaultProbeBinary
	}

	if rv.maxHops <= 0 {
		rv.maxHops = DefaultProbeMaxHops
	}

	if rv.timeout <= 0 {
		rv.timeout = DefaultProbeTimeout
	}

	if rv.nameserver == "" {
		rv.nameserver = DefaultProbeNameserver
	}

	rv.dnsClient = &dns.Client{Timeout: 5 * time.Second}

	return rv
}
