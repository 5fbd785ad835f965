package main

import (
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"
)

type logger struct {
	lookupLog zerolog.Logger
	cacheLog  zerolog.Logger
	traceLog  zerolog.Logger
}

func (l *logger) LookupError(ip net.IP, name string, err error) {
	l.lookupLog.Error().Str("provider", name).Stringer("ip", ip).Err(err).Msg("")
}

func (l *logger) RateLimited(ip net.IP, name string, delay time.Duration) {
	l.lookupLog.Warn().
		Str("provider", name).
		Stringer("ip", ip).
		Dur("delay", delay).
		Msg("Provider is rate limited")
}

func (l *logger) CacheError(address string, err error) {
	l.cacheLog.Error().Str("address", address).Err(err).Msg("")
}

func (l *logger) TraceResolved(id string, hops, located int) {
	l.traceLog.Debug().
		Str("id", id).
		Int("hops", hops).
		Int("located", located).
		Msg("Trace was resolved")
}

func newLogger(writer io.Writer, level zerolog.Level) *logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	makeLog := func(eventName string) zerolog.Logger {
		return zerolog.New(writer).
			Level(level).
			With().
			Timestamp().
			Str("event_name", eventName).
			Logger()
	}

	return &logger{
		lookupLog: makeLog("lookup"),
		cacheLog:  makeLog("cache"),
		traceLog:  makeLog("trace"),
	}
}
