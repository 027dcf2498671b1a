// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package logger provides subsystem-tagged loggers for the compiler's
// packages, backed by github.com/btcsuite/btclog with optional file
// rotation via github.com/jrick/logrotate, adapted from the teacher's
// own logger package. Loggers work before InitLogRotator is called; they
// simply write only to stdout until a log file is wired up.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/btcsuite/btclog"
	"github.com/jrick/logrotate/rotator"
)

type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if LogRotator != nil {
		LogRotator.Write(p)
	}
	return len(p), nil
}

// backendLog is the logging backend all subsystem loggers are created
// from. It is safe to use before InitLogRotator — LogRotator is simply
// nil until then, and logWriter skips it.
var backendLog = btclog.NewBackend(logWriter{})

// LogRotator is the optional file-rotating output. Nil until
// InitLogRotator is called.
var LogRotator *rotator.Rotator

// Subsystem tags, one per package with anything worth logging:
// CLAU (clause), POLY (policy), TMPL (template builder), CCTX (context),
// COMP (contract compiler).
const (
	TagClause   = "CLAU"
	TagPolicy   = "POLY"
	TagTemplate = "TMPL"
	TagContext  = "CCTX"
	TagCompiler = "COMP"
)

var subsystemLoggers = map[string]btclog.Logger{
	TagClause:   backendLog.Logger(TagClause),
	TagPolicy:   backendLog.Logger(TagPolicy),
	TagTemplate: backendLog.Logger(TagTemplate),
	TagContext:  backendLog.Logger(TagContext),
	TagCompiler: backendLog.Logger(TagCompiler),
}

// Get returns the logger for tag, or a disabled logger if tag is
// unrecognized — unknown subsystems should never crash a caller that
// merely wants to log.
func Get(tag string) btclog.Logger {
	if l, ok := subsystemLoggers[tag]; ok {
		return l
	}
	return btclog.Disabled
}

// InitLogRotator creates a file rotator at logFile and wires it into
// every subsystem logger's output. Hosts that never call this still get
// stdout-only logging.
func InitLogRotator(logFile string) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	LogRotator = r
	return nil
}

// SetLogLevel sets the logging level for the given subsystem tag.
// Invalid subsystems are ignored; an invalid level defaults to info.
func SetLogLevel(subsystemTag, logLevel string) {
	l, ok := subsystemLoggers[subsystemTag]
	if !ok {
		return
	}
	level, ok := btclog.LevelFromString(logLevel)
	if !ok {
		level = btclog.LevelInfo
	}
	l.SetLevel(level)
}

// SetLogLevels sets every subsystem logger to logLevel.
func SetLogLevels(logLevel string) {
	for tag := range subsystemLoggers {
		SetLogLevel(tag, logLevel)
	}
}

// SupportedSubsystems returns a sorted slice of the known subsystem tags.
func SupportedSubsystems() []string {
	tags := make([]string, 0, len(subsystemLoggers))
	for tag := range subsystemLoggers {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ParseAndSetDebugLevels parses a debug-level spec, either a bare level
// ("debug") applied to every subsystem, or a comma-separated list of
// subsystem=level pairs ("COMP=debug,POLY=trace").
func ParseAndSetDebugLevels(debugLevel string) error {
	if !strings.Contains(debugLevel, ",") && !strings.Contains(debugLevel, "=") {
		if _, ok := btclog.LevelFromString(debugLevel); !ok {
			return fmt.Errorf("the specified debug level [%s] is invalid", debugLevel)
		}
		SetLogLevels(debugLevel)
		return nil
	}

	for _, pair := range strings.Split(debugLevel, ",") {
		fields := strings.Split(pair, "=")
		if len(fields) != 2 {
			return fmt.Errorf("the specified debug level contains an invalid subsystem/level pair [%s]", pair)
		}
		subsysTag, level := fields[0], fields[1]
		if _, ok := subsystemLoggers[subsysTag]; !ok {
			return fmt.Errorf("the specified subsystem [%s] is invalid -- supported subsystems %s",
				subsysTag, strings.Join(SupportedSubsystems(), ", "))
		}
		if _, ok := btclog.LevelFromString(level); !ok {
			return fmt.Errorf("the specified debug level [%s] is invalid", level)
		}
		SetLogLevel(subsysTag, level)
	}
	return nil
}
