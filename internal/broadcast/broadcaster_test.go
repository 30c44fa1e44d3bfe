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
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"des-echo-server/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObserver struct {
	id   string
	fail error

	mu     sync.Mutex
	got    []utils.TransactionRecord
	closed bool
}

func (f *fakeObserver) ID() string { return f.id }

func (f *fakeObserver) Send(payload []byte) error {
	if f.fail != nil {
		return f.fail
	}
	var rec utils.TransactionRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, rec)
	return nil
}

func (f *fakeObserver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeObserver) records() []utils.TransactionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]utils.TransactionRecord(nil), f.got...)
}

func (f *fakeObserver) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func record(path string, code int) utils.TransactionRecord {
	return utils.TransactionRecord{
		RequestPath:    path,
		RequestMethod:  "GET",
		RequestHeaders: map[string]string{"desresponsecode": fmt.Sprint(code)},
		ResponseCode:   code,
		ResponseBody:   "body",
		Timestamp:      "12:00:00",
	}
}

func startBroadcaster(t *testing.T, b *Broadcaster) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestBroadcaster_PreservesPublishOrder(t *testing.T) {
	reg := NewRegistry()
	obs := &fakeObserver{id: "a"}
	reg.Add(obs)

	b := New(reg, 0)
	startBroadcaster(t, b)

	for i := 0; i < 50; i++ {
		require.True(t, b.Publish(record(fmt.Sprintf("/r/%d", i), 200)))
	}

	require.Eventually(t, func() bool { return len(obs.records()) == 50 }, time.Second, 5*time.Millisecond)
	for i, rec := range obs.records() {
		assert.Equal(t, fmt.Sprintf("/r/%d", i), rec.RequestPath)
	}
}

func TestBroadcaster_FailedObserverIsDropped(t *testing.T) {
	reg := NewRegistry()
	bad := &fakeObserver{id: "bad", fail: errors.New("broken pipe")}
	good := &fakeObserver{id: "good"}
	reg.Add(bad)
	reg.Add(good)

	b := New(reg, 0)
	startBroadcaster(t, b)

	b.Publish(record("/one", 200))
	b.Publish(record("/two", 404))

	require.Eventually(t, func() bool { return len(good.records()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, reg.Len())
	assert.True(t, bad.isClosed())
	assert.False(t, good.isClosed())
}

func TestBroadcaster_NoReplayForLateObservers(t *testing.T) {
	reg := NewRegistry()
	b := New(reg, 0)
	startBroadcaster(t, b)

	b.Publish(record("/early", 200))
	require.Eventually(t, func() bool { return b.Delivered() == 1 }, time.Second, 5*time.Millisecond)

	late := &fakeObserver{id: "late"}
	reg.Add(late)
	b.Publish(record("/late", 200))

	require.Eventually(t, func() bool { return len(late.records()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "/late", late.records()[0].RequestPath)
}

func TestBroadcaster_PublishNeverBlocks(t *testing.T) {
	b := New(NewRegistry(), 1)

	assert.True(t, b.Publish(record("/a", 200)))
	assert.False(t, b.Publish(record("/b", 200)))
	assert.Equal(t, int64(1), b.Dropped())
}

func TestBroadcaster_RunFlushesAndClosesOnCancel(t *testing.T) {
	reg := NewRegistry()
	obs := &fakeObserver{id: "a"}
	reg.Add(obs)

	b := New(reg, 8)
	b.Publish(record("/a", 200))
	b.Publish(record("/b", 200))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, b.Run(ctx))

	assert.Len(t, obs.records(), 2)
	assert.True(t, obs.isClosed())
	assert.Zero(t, reg.Len())
}

func TestRegistry_RemoveIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	obs := &fakeObserver{id: "a"}
	reg.Add(obs)

	assert.True(t, reg.Remove("a"))
	assert.False(t, reg.Remove("a"))
	assert.True(t, obs.isClosed())
	assert.Empty(t, reg.Snapshot())
}
