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

// Package broadcast fans Transaction Records out to live observers.
//
// A Registry holds the currently connected observers. It is filled when an
// observer connects and pruned when it disconnects or a send to it fails. The
// Broadcaster owns a single delivery loop that drains published records in
// order and writes each one to every observer registered at that moment.
package broadcast

import (
	"sync"
)

// Observer is a fan-out target.
type Observer interface {
	ID() string
	Send(payload []byte) error
	Close() error
}

// Registry is the set of connected observers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	observers map[string]Observer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{observers: make(map[string]Observer)}
}

// Add registers o, replacing any observer with the same ID.
func (r *Registry) Add(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers[o.ID()] = o
}

// Remove unregisters and closes the observer with the given ID. Removing an
// unknown ID is a no-op and reports false.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	o, ok := r.observers[id]
	delete(r.observers, id)
	r.mu.Unlock()

	if ok {
		o.Close()
	}
	return ok
}

// Snapshot returns the observers registered right now.
func (r *Registry) Snapshot() []Observer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Observer, 0, len(r.observers))
	for _, o := range r.observers {
		out = append(out, o)
	}
	return out
}

// Len returns the number of registered observers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observers)
}

// CloseAll removes and closes every observer.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	old := r.observers
	r.observers = make(map[string]Observer)
	r.mu.Unlock()

	for _, o := range old {
		o.Close()
	}
}
