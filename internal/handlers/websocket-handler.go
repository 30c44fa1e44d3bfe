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
	"time"

	"des-echo-server/internal/broadcast"
	"des-echo-server/internal/middleware"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all connections
		},
	}
)

// HandleObserverWebSocket upgrades the connection and registers it as an
// observer of the traffic served by the echo engine. The observer stays
// registered until the peer goes away or a send to it fails.
func HandleObserverWebSocket(registry *broadcast.Registry, writeTimeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := middleware.GetReqLogger(r.Context())

		// Upgrade the HTTP connection to a WebSocket connection
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			l.WithError(err).Warn("failed to upgrade observer connection")
			return
		}

		observer := broadcast.NewWebsocketObserver(conn, writeTimeout)
		registry.Add(observer)
		defer registry.Remove(observer.ID())

		l = l.WithField("observer", observer.ID())
		l.WithField("observers", registry.Len()).Info("observer connected")

		conn.SetReadLimit(4096)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		done := make(chan struct{})
		defer close(done)
		go keepAlive(observer, done)

		// Observers only listen; anything they send is discarded.
		for {
			if _, _, err := conn.NextReader(); err != nil {
				l.WithError(err).Info("observer disconnected")
				return
			}
		}
	}
}

func keepAlive(o *broadcast.WebsocketObserver, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := o.Ping(); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
