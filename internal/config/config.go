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

// Package config loads the server configuration from flags, DES_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"des-echo-server/internal/utils"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Flags use the same names.
const (
	KeyConfig               = "config"
	KeyListen               = "listen"
	KeyEchoPrefix           = "echo-prefix"
	KeyStore                = "store"
	KeyDSN                  = "dsn"
	KeySeed                 = "seed"
	KeyLogDir               = "logdir"
	KeyLogFile              = "logfile"
	KeyLogLevel             = "loglevel"
	KeyLogJSON              = "log-json"
	KeyBroadcastQueue       = "broadcast-queue"
	KeyObserverWriteTimeout = "observer-write-timeout"
	KeyCatalogTimeout       = "catalog-timeout"
	KeyShutdownTimeout      = "shutdown-timeout"
)

// Catalog backends.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	Listen     string
	EchoPrefix string

	Store string
	DSN   string
	Seed  string

	LogDir   string
	LogFile  string
	LogLevel string
	LogJSON  bool

	BroadcastQueue       int
	ObserverWriteTimeout time.Duration
	CatalogTimeout       time.Duration
	ShutdownTimeout      time.Duration
}

// InitFlags declares every configuration flag on fs.
func InitFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "YAML configuration file.")
	fs.String(KeyListen, ":8080", "Address to serve the echo engine, admin API and observer socket on.")
	fs.String(KeyEchoPrefix, "", "Only echo paths below this prefix, stripping it before lookup.")

	fs.String(KeyStore, StoreSQLite, "Endpoint catalog backend (memory|sqlite).")
	fs.String(KeyDSN, "des-echo.db", "SQLite database for the sqlite backend.")
	fs.String(KeySeed, "", "YAML file of groups and endpoints loaded at startup.")

	fs.String(KeyLogDir, ".", "Directory for the log file.")
	fs.String(KeyLogFile, "stderr", "Log file name, or stdout/stderr.")
	fs.String(KeyLogLevel, "info", "Log level (debug|info|warn|error).")
	fs.Bool(KeyLogJSON, false, "Log as JSON instead of text.")

	fs.Int(KeyBroadcastQueue, 256, "Transaction records that may wait for delivery before new ones are dropped.")
	fs.Duration(KeyObserverWriteTimeout, 5*time.Second, "Write timeout for a single observer send.")
	fs.Duration(KeyCatalogTimeout, 10*time.Second, "Upper bound on the catalog work done for one echo request.")
	fs.Duration(KeyShutdownTimeout, 10*time.Second, "Grace period for in-flight requests on shutdown.")
}

// Load merges fs, the environment and the config file named by the config
// flag into a Config.
func Load(v *viper.Viper, fs *pflag.FlagSet) (Config, error) {
	v.SetEnvPrefix("DES")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}

	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		Listen:               v.GetString(KeyListen),
		EchoPrefix:           v.GetString(KeyEchoPrefix),
		Store:                strings.ToLower(v.GetString(KeyStore)),
		DSN:                  v.GetString(KeyDSN),
		Seed:                 v.GetString(KeySeed),
		LogDir:               v.GetString(KeyLogDir),
		LogFile:              v.GetString(KeyLogFile),
		LogLevel:             v.GetString(KeyLogLevel),
		LogJSON:              v.GetBool(KeyLogJSON),
		BroadcastQueue:       v.GetInt(KeyBroadcastQueue),
		ObserverWriteTimeout: v.GetDuration(KeyObserverWriteTimeout),
		CatalogTimeout:       v.GetDuration(KeyCatalogTimeout),
		ShutdownTimeout:      v.GetDuration(KeyShutdownTimeout),
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.DSN == "" {
			return fmt.Errorf("%s store needs a %s", StoreSQLite, KeyDSN)
		}
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.EchoPrefix != "" && !strings.HasPrefix(c.EchoPrefix, "/") {
		return fmt.Errorf("%s must start with /", KeyEchoPrefix)
	}
	if utils.IsReservedPath(strings.TrimSuffix(c.EchoPrefix, "/")) {
		return fmt.Errorf("%s may not be below %s", KeyEchoPrefix, utils.ReservedPrefix)
	}
	return nil
}
