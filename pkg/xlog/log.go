// Copyright 2024 The memscope Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package xlog is a small logging shim, in the same spirit as
// pkg/memtier's own Logger: a couple of level-tagged Printf wrappers
// around the standard library's *log.Logger, rather than a full
// structured-logging dependency this project has no use for.
package xlog

import (
	stdlog "log"
)

// Logger is the leveled logging interface used across cmd/memscope.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type logger struct {
	*stdlog.Logger
}

const logPrefix = "memscope "

var log Logger = &logger{Logger: stdlog.Default()}
var debugEnabled bool

// SetLogger replaces the package-level Logger used by Default.
func SetLogger(l *stdlog.Logger) {
	log = &logger{Logger: l}
}

// SetDebug turns Debugf output on or off. It is off by default.
func SetDebug(debug bool) {
	debugEnabled = debug
}

// Default returns the package-level Logger.
func Default() Logger {
	return log
}

func (l *logger) Debugf(format string, v ...interface{}) {
	if debugEnabled {
		l.Logger.Printf("DEBUG: "+logPrefix+format, v...)
	}
}

func (l *logger) Infof(format string, v ...interface{}) {
	l.Logger.Printf("INFO: "+logPrefix+format, v...)
}

func (l *logger) Warnf(format string, v ...interface{}) {
	l.Logger.Printf("WARN: "+logPrefix+format, v...)
}

func (l *logger) Errorf(format string, v ...interface{}) {
	l.Logger.Printf("ERROR: "+logPrefix+format, v...)
}
