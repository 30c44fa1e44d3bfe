/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com/) All Rights Reserved.
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied. See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package logging

import (
	"io"
	stdlog "log"
	"os"
	"path"
	"strings"

	log "github.com/sirupsen/logrus"
)

var logWriter io.WriteCloser

func setLogOutput(w io.Writer) {
	log.SetOutput(w)
	stdlog.SetOutput(log.StandardLogger().Writer())
}

// Init configures the standard logrus logger. logFileName may be "stdout",
// "stderr" (or "-") or a file name inside logdir.
func Init(logdir, logFileName, logLevel string, json bool) error {
	// Close the previously opened log file
	if logWriter != nil {
		logWriter.Close()
		logWriter = nil
	}

	l, err := log.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		setLogOutput(os.Stderr)
		log.WithError(err).Debug("failed to parse log level")
		return err
	}
	log.SetLevel(l)
	if json {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	switch strings.ToLower(logFileName) {
	case "stderr", "-", "":
		setLogOutput(os.Stderr)
	case "stdout":
		setLogOutput(os.Stdout)
	default:
		logFilePath := path.Join(logdir, logFileName)
		f, err := os.OpenFile(logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			setLogOutput(os.Stderr)
			log.WithError(err).WithField("file", logFilePath).Debug("failed to open log file")
			return err
		}
		setLogOutput(f)
		logWriter = f
	}
	return nil
}
