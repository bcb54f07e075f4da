/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package fdfslog is the structured logging facade used throughout this
// module: a thin wrapper over github.com/sirupsen/logrus that injects
// caller-supplied Fields and filters by Level, so packages never import
// logrus directly.
package fdfslog

import (
	"io"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// FuncLog returns a Logger, used for late/lazy binding of a sink into a
// component constructed before logging is configured.
type FuncLog func() Logger

// Logger is the structured logging surface every package in this module
// depends on instead of logrus directly.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level
	SetOutput(w io.Writer)
	WithFields(f Fields) Logger
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, err error, f Fields)
}

type logger struct {
	entry *logrus.Logger
	base  Fields
	lvl   atomic.Uint32
}

// New builds a Logger around a fresh logrus.Logger at the given level,
// writing to w (os.Stderr is the conventional choice for a CLI/library).
func New(w io.Writer, lvl Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(lvl.Logrus())

	lg := &logger{entry: l}
	lg.lvl.Store(uint32(lvl))
	return lg
}

func (l *logger) SetLevel(lvl Level) {
	l.lvl.Store(uint32(lvl))
	l.entry.SetLevel(lvl.Logrus())
}

func (l *logger) GetLevel() Level {
	return Level(l.lvl.Load())
}

func (l *logger) SetOutput(w io.Writer) {
	l.entry.SetOutput(w)
}

func (l *logger) WithFields(f Fields) Logger {
	child := &logger{entry: l.entry, base: l.base.Merge(f)}
	child.lvl.Store(l.lvl.Load())
	return child
}

func (l *logger) fields(f Fields) logrus.Fields {
	merged := l.base.Merge(f)
	out := make(logrus.Fields, len(merged))
	for k, v := range merged {
		out[k] = v
	}
	return out
}

func (l *logger) enabled() bool {
	return Level(l.lvl.Load()) != NilLevel
}

func (l *logger) Debug(msg string, f Fields) {
	if l.enabled() {
		l.entry.WithFields(l.fields(f)).Debug(msg)
	}
}

func (l *logger) Info(msg string, f Fields) {
	if l.enabled() {
		l.entry.WithFields(l.fields(f)).Info(msg)
	}
}

func (l *logger) Warn(msg string, f Fields) {
	if l.enabled() {
		l.entry.WithFields(l.fields(f)).Warn(msg)
	}
}

func (l *logger) Error(msg string, err error, f Fields) {
	if l.enabled() {
		fi := f.Add("error", err)
		l.entry.WithFields(l.fields(fi)).Error(msg)
	}
}

// Discard is a Logger that drops everything, used as the zero-configuration
// default so callers are never forced to wire a sink before first use.
func Discard() Logger {
	l := New(io.Discard, NilLevel)
	return l
}
