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

package broadcast

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultWriteTimeout bounds a single write to an observer.
const DefaultWriteTimeout = 5 * time.Second

// WebsocketObserver is an Observer backed by a websocket connection. Records
// are written as text frames.
type WebsocketObserver struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu        sync.Mutex // serialises data frames
	closeOnce sync.Once
}

// NewWebsocketObserver wraps conn with a fresh observer ID.
func NewWebsocketObserver(conn *websocket.Conn, writeTimeout time.Duration) *WebsocketObserver {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &WebsocketObserver{
		id:           uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (o *WebsocketObserver) ID() string {
	return o.id
}

func (o *WebsocketObserver) Send(payload []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.conn.SetWriteDeadline(time.Now().Add(o.writeTimeout)); err != nil {
		return err
	}
	return o.conn.WriteMessage(websocket.TextMessage, payload)
}

// Ping sends a keepalive control frame.
func (o *WebsocketObserver) Ping() error {
	return o.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(o.writeTimeout))
}

// Close sends a going-away close frame and closes the connection. It is safe
// to call more than once.
func (o *WebsocketObserver) Close() error {
	var err error
	o.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
		o.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = o.conn.Close()
	})
	return err
}
