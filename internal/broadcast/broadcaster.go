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
	"context"
	"encoding/json"
	"sync/atomic"

	"des-echo-server/internal/utils"

	log "github.com/sirupsen/logrus"
)

// DefaultQueueSize is the number of records that may wait for delivery before
// Publish starts dropping.
const DefaultQueueSize = 256

// Broadcaster delivers published records to every observer in a Registry.
// Records are delivered in the order they were published.
type Broadcaster struct {
	registry  *Registry
	queue     chan utils.TransactionRecord
	dropped   atomic.Int64
	delivered atomic.Int64
}

// New creates a Broadcaster over registry. A queueSize <= 0 selects
// DefaultQueueSize. Nothing is delivered until Run is started.
func New(registry *Registry, queueSize int) *Broadcaster {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Broadcaster{
		registry: registry,
		queue:    make(chan utils.TransactionRecord, queueSize),
	}
}

// Registry returns the observer set this broadcaster delivers to.
func (b *Broadcaster) Registry() *Registry {
	return b.registry
}

// Publish hands rec to the delivery loop and returns immediately. If the queue
// is full the record is dropped and false is returned.
func (b *Broadcaster) Publish(rec utils.TransactionRecord) bool {
	select {
	case b.queue <- rec:
		return true
	default:
		b.dropped.Add(1)
		log.WithFields(log.Fields{
			"path":   rec.RequestPath,
			"method": rec.RequestMethod,
			"code":   rec.ResponseCode,
		}).Warn("broadcast queue full, dropping transaction record")
		return false
	}
}

// Dropped returns how many records Publish has discarded.
func (b *Broadcaster) Dropped() int64 {
	return b.dropped.Load()
}

// Delivered returns how many records the delivery loop has processed.
func (b *Broadcaster) Delivered() int64 {
	return b.delivered.Load()
}

// Run is the delivery loop. It returns once ctx is cancelled, after flushing
// records that were already queued, and closes every observer on the way out.
func (b *Broadcaster) Run(ctx context.Context) error {
	defer b.registry.CloseAll()

	for {
		select {
		case rec := <-b.queue:
			b.deliver(rec)
		case <-ctx.Done():
			for {
				select {
				case rec := <-b.queue:
					b.deliver(rec)
				default:
					return nil
				}
			}
		}
	}
}

func (b *Broadcaster) deliver(rec utils.TransactionRecord) {
	defer b.delivered.Add(1)

	payload, err := json.Marshal(rec)
	if err != nil {
		log.WithError(err).Error("failed to encode transaction record")
		return
	}

	for _, o := range b.registry.Snapshot() {
		if err := o.Send(payload); err != nil {
			log.WithError(err).WithField("observer", o.ID()).Debug("dropping observer after failed send")
			b.registry.Remove(o.ID())
		}
	}
}
