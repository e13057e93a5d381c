// Copyright © 2025 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
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

package log

import (
	"io"

	"github.com/sirupsen/logrus"
)

// LogrusLogger writes leveled, structured lines. It is used for --verbose runs
// where the spinner would hide the detail.
type LogrusLogger struct {
	entry *logrus.Entry
}

func NewLogrusLogger(out io.Writer, fields logrus.Fields) *LogrusLogger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	l.SetLevel(logrus.InfoLevel)
	return &LogrusLogger{entry: l.WithFields(fields)}
}

func (l *LogrusLogger) SetLogLevel(level LogLevel) {
	var lvl logrus.Level
	switch level {
	case Trace:
		lvl = logrus.TraceLevel
	case Debug:
		lvl = logrus.DebugLevel
	case Info:
		lvl = logrus.InfoLevel
	case Warn:
		lvl = logrus.WarnLevel
	default:
		lvl = logrus.ErrorLevel
	}
	l.entry.Logger.SetLevel(lvl)
}

func (l *LogrusLogger) WithField(key string, value interface{}) *LogrusLogger {
	return &LogrusLogger{entry: l.entry.WithField(key, value)}
}

func (l *LogrusLogger) Trace(s string) {
	l.entry.Trace(s)
}

func (l *LogrusLogger) Debug(s string) {
	l.entry.Debug(s)
}

func (l *LogrusLogger) Info(s string) {
	l.entry.Info(s)
}

func (l *LogrusLogger) Warn(s string) {
	l.entry.Warn(s)
}

func (l *LogrusLogger) Error(e error) {
	l.entry.Error(e.Error())
}
