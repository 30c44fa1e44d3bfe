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

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"des-echo-server/internal/apperr"
	"des-echo-server/internal/utils"
)

// MemoryStore is a thread-safe in-memory Store.
type MemoryStore struct {
	mu        sync.RWMutex
	groups    map[uint]utils.Group
	endpoints map[uint]utils.EndpointDefinition
	nextGroup uint
	nextEP    uint
	nextHdr   uint
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		groups:    make(map[uint]utils.Group),
		endpoints: make(map[uint]utils.EndpointDefinition),
	}
}

func (s *MemoryStore) LookupByPathMethodStatus(_ context.Context, path, method string, code int) ([]utils.EndpointDefinition, error) {
	method = NormalizeMethod(method)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []utils.EndpointDefinition
	for _, ep := range s.endpoints {
		if ep.Path == path && ep.Method == method && ep.ResponseCode == code {
			result = append(result, cloneEndpoint(ep))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *MemoryStore) ListHeaders(_ context.Context, endpointID uint) ([]utils.ResponseHeader, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ep, ok := s.endpoints[endpointID]
	if !ok {
		return []utils.ResponseHeader{}, nil
	}
	return cloneEndpoint(ep).Headers, nil
}

func (s *MemoryStore) CreateGroup(_ context.Context, name string) (utils.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return utils.Group{}, apperr.ErrInvalidGroup
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range s.groups {
		if g.Name == name {
			return utils.Group{}, fmt.Errorf("%w: %s", apperr.ErrDuplicateGroup, name)
		}
	}
	s.nextGroup++
	g := utils.Group{ID: s.nextGroup, Name: name}
	s.groups[g.ID] = g
	return g, nil
}

func (s *MemoryStore) ListGroups(_ context.Context) ([]utils.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]utils.Group, 0, len(s.groups))
	for _, g := range s.groups {
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// UpdateGroup renames a group. Names stay unique.
func (s *MemoryStore) UpdateGroup(_ context.Context, id uint, name string) (utils.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return utils.Group{}, apperr.ErrInvalidGroup
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.groups[id]
	if !ok {
		return utils.Group{}, fmt.Errorf("group %d: %w", id, apperr.ErrNotFound)
	}
	for _, other := range s.groups {
		if other.ID != id && other.Name == name {
			return utils.Group{}, fmt.Errorf("%w: %s", apperr.ErrDuplicateGroup, name)
		}
	}
	g.Name = name
	s.groups[id] = g
	return g, nil
}

// DeleteGroup removes a group and every endpoint in it.
func (s *MemoryStore) DeleteGroup(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return fmt.Errorf("group %d: %w", id, apperr.ErrNotFound)
	}
	delete(s.groups, id)
	for epID, ep := range s.endpoints {
		if ep.GroupID == id {
			delete(s.endpoints, epID)
		}
	}
	return nil
}

func (s *MemoryStore) CreateEndpoint(_ context.Context, def utils.EndpointDefinition) (utils.EndpointDefinition, error) {
	def = cloneEndpoint(def)
	if err := Validate(&def); err != nil {
		return utils.EndpointDefinition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(def, 0); err != nil {
		return utils.EndpointDefinition{}, err
	}
	s.nextEP++
	def.ID = s.nextEP
	s.assignHeadersLocked(&def)
	s.endpoints[def.ID] = cloneEndpoint(def)
	return cloneEndpoint(def), nil
}

func (s *MemoryStore) GetEndpoint(_ context.Context, id uint) (utils.EndpointDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ep, ok := s.endpoints[id]
	if !ok {
		return utils.EndpointDefinition{}, fmt.Errorf("endpoint %d: %w", id, apperr.ErrNotFound)
	}
	return cloneEndpoint(ep), nil
}

func (s *MemoryStore) ListEndpoints(_ context.Context) ([]utils.EndpointDefinition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]utils.EndpointDefinition, 0, len(s.endpoints))
	for _, ep := range s.endpoints {
		result = append(result, cloneEndpoint(ep))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// UpdateEndpoint replaces the stored definition, headers included.
func (s *MemoryStore) UpdateEndpoint(_ context.Context, def utils.EndpointDefinition) (utils.EndpointDefinition, error) {
	def = cloneEndpoint(def)
	if err := Validate(&def); err != nil {
		return utils.EndpointDefinition{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.endpoints[def.ID]; !ok {
		return utils.EndpointDefinition{}, fmt.Errorf("endpoint %d: %w", def.ID, apperr.ErrNotFound)
	}
	if err := s.checkLocked(def, def.ID); err != nil {
		return utils.EndpointDefinition{}, err
	}
	s.assignHeadersLocked(&def)
	s.endpoints[def.ID] = cloneEndpoint(def)
	return cloneEndpoint(def), nil
}

func (s *MemoryStore) DeleteEndpoint(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.endpoints[id]; !ok {
		return fmt.Errorf("endpoint %d: %w", id, apperr.ErrNotFound)
	}
	delete(s.endpoints, id)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// checkLocked verifies the group exists and that no other endpoint than self
// owns the same variant triple.
func (s *MemoryStore) checkLocked(def utils.EndpointDefinition, self uint) error {
	if _, ok := s.groups[def.GroupID]; !ok {
		return fmt.Errorf("group %d: %w", def.GroupID, apperr.ErrInvalidEndpoint)
	}
	for id, ep := range s.endpoints {
		if id != self && ep.Path == def.Path && ep.Method == def.Method && ep.ResponseCode == def.ResponseCode {
			return fmt.Errorf("%w: %s %s %d", apperr.ErrDuplicateVariant, def.Method, def.Path, def.ResponseCode)
		}
	}
	return nil
}

func (s *MemoryStore) assignHeadersLocked(def *utils.EndpointDefinition) {
	for i := range def.Headers {
		s.nextHdr++
		def.Headers[i].ID = s.nextHdr
		def.Headers[i].EndpointID = def.ID
	}
}

func cloneEndpoint(ep utils.EndpointDefinition) utils.EndpointDefinition {
	headers := make([]utils.ResponseHeader, len(ep.Headers))
	copy(headers, ep.Headers)
	ep.Headers = headers
	return ep
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
