// Tracemap is a service which draws traceroute output on a map.
//
// Every hop of a trace gets a best-effort location. At first we look
// at a hostname: routers are often named after cities or IATA codes of
// nearby airports (like sto03.example.net). If this does not work, an
// IP address is geolocated by a list of external providers. Results of
// providers are cached forever.
//
// Tool itself is organized into 3 logical parts:
//
// # Tracelib
//
// tracelib is a main package of the application: trace parser,
// hostname heuristics, address geolocation and HTTP API. Tracemap
// struct wires everything together and can act as http.Handler.
//
// # Providers
//
// This package has a set of geolocation provider implementations, both
// online and offline.
//
// # Storage
//
// Persistent stores of geolocation results: an append-only file or
// PostgreSQL table.
//
// A main package itself is an example of how to wire everything
// together. Resulting binary starts http server and you can use it in
// your infrastructure as is.
package main
