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

package handlers

import (
	"net/http"
	"strings"
	"time"

	"des-echo-server/internal/broadcast"
	"des-echo-server/internal/catalog"
	"des-echo-server/internal/middleware"
	"des-echo-server/internal/utils"

	"github.com/gorilla/mux"
)

// RouterConfig carries what the HTTP surface is built from.
type RouterConfig struct {
	Store    catalog.Store
	Echo     http.Handler
	Registry *broadcast.Registry
	// EchoPrefix, when set, restricts the echo engine to paths below it and
	// strips it before lookup.
	EchoPrefix           string
	ObserverWriteTimeout time.Duration
}

// NewRouter wires the management API, the observer socket and the health check
// below utils.ReservedPrefix, then the echo catch-all, all wrapped in the
// request middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	// Echo paths are matched exactly as sent; no redirect to a cleaned path.
	r.SkipClean(true)

	own := r.PathPrefix(utils.ReservedPrefix).Subrouter()
	own.HandleFunc("/health", HandleHealth(cfg.Registry)).Methods("GET")
	own.HandleFunc("/ws", HandleObserverWebSocket(cfg.Registry, cfg.ObserverWriteTimeout)).Methods("GET")
	NewAPI(cfg.Store).Register(own.PathPrefix("/api").Subrouter())

	prefix := strings.TrimSuffix(cfg.EchoPrefix, "/")
	if prefix == "" {
		r.PathPrefix("/").Handler(cfg.Echo)
	} else {
		r.PathPrefix(prefix).Handler(http.StripPrefix(prefix, cfg.Echo))
	}

	return middleware.ReqIDGenerator(middleware.LogRequest(middleware.Recover(r)))
}

// HandleHealth reports liveness and the number of connected observers.
func HandleHealth(registry *broadcast.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"observers": registry.Len(),
		})
	}
}
