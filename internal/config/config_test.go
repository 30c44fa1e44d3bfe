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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)
	require.NoError(t, fs.Parse(args))
	return Load(viper.New(), fs)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "des-echo.db", cfg.DSN)
	assert.Equal(t, 256, cfg.BroadcastQueue)
	assert.Equal(t, 5*time.Second, cfg.ObserverWriteTimeout)
	assert.Equal(t, 10*time.Second, cfg.CatalogTimeout)
}

func TestLoad_Precedence(t *testing.T) {
	file := filepath.Join(t.TempDir(), "des.yaml")
	require.NoError(t, os.WriteFile(file, []byte("listen: \":9000\"\nstore: memory\nbroadcast-queue: 8\nloglevel: debug\n"), 0o600))

	t.Setenv("DES_LOGLEVEL", "warn")

	cfg, err := load(t, "--config", file, "--listen", ":7000")
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.Listen, "flag beats file")
	assert.Equal(t, StoreMemory, cfg.Store, "file beats default")
	assert.Equal(t, 8, cfg.BroadcastQueue)
	assert.Equal(t, "warn", cfg.LogLevel, "env beats file")
}

func TestLoad_Invalid(t *testing.T) {
	_, err := load(t, "--store", "postgres")
	assert.Error(t, err)

	_, err = load(t, "--echo-prefix", "echo")
	assert.Error(t, err)

	_, err = load(t, "--echo-prefix", "/_des/echo")
	assert.Error(t, err)

	_, err = load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
