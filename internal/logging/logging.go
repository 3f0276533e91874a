// Package logging wraps the process-wide log sink. It is injected
// configuration: set once, before any reader or writer exists, and shared
// freely after that (see spec §5, "Shared resources").
package logging

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// Sink is the pluggable interface every component logs through.
type Sink interface {
	Error(op string, err error, fields map[string]interface{})
	Warn(op, msg string, fields map[string]interface{})
	Info(op, msg string, fields map[string]interface{})
	Debug(op, msg string, fields map[string]interface{})
}

type zerologSink struct {
	log zerolog.Logger
}

func (s *zerologSink) Error(op string, err error, fields map[string]interface{}) {
	ev := s.log.Error().Str("op", op)
	if err != nil {
		ev = ev.Err(err)
	}
	addFields(ev, fields).Msg("")
}

func (s *zerologSink) Warn(op, msg string, fields map[string]interface{}) {
	addFields(s.log.Warn().Str("op", op), fields).Msg(msg)
}

func (s *zerologSink) Info(op, msg string, fields map[string]interface{}) {
	addFields(s.log.Info().Str("op", op), fields).Msg(msg)
}

func (s *zerologSink) Debug(op, msg string, fields map[string]interface{}) {
	addFields(s.log.Debug().Str("op", op), fields).Msg(msg)
}

func addFields(ev *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	return ev
}

var (
	mu      sync.Mutex
	current Sink = newDefault()
)

func newDefault() Sink {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	return &zerologSink{log: l}
}

// SetSink replaces the process-wide sink. The host must call this before
// opening any reader/writer; mutating it afterwards is undefined per spec §5.
func SetSink(s Sink) {
	mu.Lock()
	defer mu.Unlock()
	current = s
}

// Default returns the current process-wide sink.
func Default() Sink {
	mu.Lock()
	defer mu.Unlock()
	return current
}
