// This package provides a set of structs and functions which are used
// to place hops of a network trace on a map.
//
// tracelib is core of the tracemap project. You can treat the rest of
// the application as an _example_ on how to use this library: how to
// load configuration, how to build providers and cache stores, how to
// expose everything over HTTP.
//
// Tracemap is a main entity of the tracelib. It takes raw lines of
// traceroute output, parses them into hops and tries to guess a
// location for each hop. There are 2 strategies for that:
//
// # Hostname heuristics
//
// Routers often have names like ae-1.r01.stockholm.example.net or
// sto03.example.net. HostnameResolver looks for well known city
// names and 3-letter airport codes in such names. It needs no network
// at all but can be wrong.
//
// # Address geolocation
//
// AddressResolver asks external geolocation providers where an IP
// address lives. Private addresses never leave the process. Each
// answer, including failures, is stored in a Store so the same address
// is never asked twice.
package tracelib
