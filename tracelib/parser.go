package tracelib

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

const (
	parserTokensCount = 5
	parserDelayUnit   = "ms"
)

// ParseLine parses a single line of traceroute output. A valid line
// looks like
//
//	3  ae-1.r01.sto03.example.net (62.115.1.1)  12.345 ms
//
// Everything else (headers, timeouts like '3 *', lines with several
// probes) is rejected.
func ParseLine(line string) (HopRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) != parserTokensCount {
		return HopRecord{}, false
	}

	index, err := strconv.Atoi(fields[0])
	if err != nil || index < 0 {
		return HopRecord{}, false
	}

	delay, err := strconv.ParseFloat(fields[3], 64)
	if err != nil || math.IsNaN(delay) || math.IsInf(delay, 0) {
		return HopRecord{}, false
	}

	if fields[4] != parserDelayUnit {
		return HopRecord{}, false
	}

	return HopRecord{
		Index:    index,
		Hostname: fields[1],
		Address:  strings.TrimSuffix(strings.TrimPrefix(fields[2], "("), ")"),
		DelayMs:  delay,
	}, true
}

// ParseLines parses all lines and skips those which are not hops.
func ParseLines(lines []string) []HopRecord {
	rv := make([]HopRecord, 0, len(lines))

	for _, v := range lines {
		if hop, ok := ParseLine(v); ok {
			rv = append(rv, hop)
		}
	}

	return rv
}

// SplitLines splits raw traceroute output into lines.
func SplitLines(r io.Reader) ([]string, error) {
	rv := []string{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		rv = append(rv, scanner.Text())
	}

	return rv, scanner.Err()
}
