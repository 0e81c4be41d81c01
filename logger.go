package signon

import (
	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Component is attached to every entry written through an adapter.
const Component = "signon"

// Logger receives the validator's rejections (Warnf), successful
// verifications and generated assertions (Debugf), and signing failures
// (Errorf).
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NopLogger drops every entry. Components use it until WithLogger is given.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...interface{}) {}
func (NopLogger) Infof(string, ...interface{})  {}
func (NopLogger) Warnf(string, ...interface{})  {}
func (NopLogger) Errorf(string, ...interface{}) {}

type logf func(format string, args ...interface{})

// levelLogger routes each level to the backend's own printf-style call.
type levelLogger struct {
	debug, info, warn, err logf
}

func (l levelLogger) Debugf(format string, args ...interface{}) { l.debug(format, args...) }
func (l levelLogger) Infof(format string, args ...interface{})  { l.info(format, args...) }
func (l levelLogger) Warnf(format string, args ...interface{})  { l.warn(format, args...) }
func (l levelLogger) Errorf(format string, args ...interface{}) { l.err(format, args...) }

// NewZapLogger logs through l with a component field.
func NewZapLogger(l *zap.SugaredLogger) Logger {
	s := l.With("component", Component)
	return levelLogger{debug: s.Debugf, info: s.Infof, warn: s.Warnf, err: s.Errorf}
}

// NewZerologLogger logs through l with a component field.
func NewZerologLogger(l zerolog.Logger) Logger {
	z := l.With().Str("component", Component).Logger()
	event := func(level zerolog.Level) logf {
		return func(format string, args ...interface{}) {
			z.WithLevel(level).Msgf(format, args...)
		}
	}
	return levelLogger{
		debug: event(zerolog.DebugLevel),
		info:  event(zerolog.InfoLevel),
		warn:  event(zerolog.WarnLevel),
		err:   event(zerolog.ErrorLevel),
	}
}

// NewLogrusLogger logs through l with a component field.
func NewLogrusLogger(l logrus.FieldLogger) Logger {
	e := l.WithField("component", Component)
	return levelLogger{debug: e.Debugf, info: e.Infof, warn: e.Warnf, err: e.Errorf}
}
