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

// Package catalog holds the Endpoint Catalog: the durable set of endpoint
// definitions, their response headers and the groups they belong to.
//
// The echo engine only needs the read-only Catalog boundary. The admin API and
// the seeder use the wider Store interface.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"des-echo-server/internal/apperr"
	"des-echo-server/internal/utils"
)

// Catalog is the lookup surface the echo engine consumes.
type Catalog interface {
	// LookupByPathMethodStatus returns every definition stored for the
	// triple. An empty slice means no match.
	LookupByPathMethodStatus(ctx context.Context, path, method string, code int) ([]utils.EndpointDefinition, error)
	// ListHeaders returns the response headers owned by an endpoint.
	ListHeaders(ctx context.Context, endpointID uint) ([]utils.ResponseHeader, error)
}

// Store is the full management surface of the catalog.
type Store interface {
	Catalog

	CreateGroup(ctx context.Context, name string) (utils.Group, error)
	ListGroups(ctx context.Context) ([]utils.Group, error)
	UpdateGroup(ctx context.Context, id uint, name string) (utils.Group, error)
	DeleteGroup(ctx context.Context, id uint) error

	CreateEndpoint(ctx context.Context, def utils.EndpointDefinition) (utils.EndpointDefinition, error)
	GetEndpoint(ctx context.Context, id uint) (utils.EndpointDefinition, error)
	ListEndpoints(ctx context.Context) ([]utils.EndpointDefinition, error)
	UpdateEndpoint(ctx context.Context, def utils.EndpointDefinition) (utils.EndpointDefinition, error)
	DeleteEndpoint(ctx context.Context, id uint) error

	Close() error
}

// NormalizeMethod upper-cases and trims an HTTP method.
func NormalizeMethod(method string) string {
	return strings.ToUpper(strings.TrimSpace(method))
}

// Validate normalizes def in place and checks it can be stored.
func Validate(def *utils.EndpointDefinition) error {
	def.Path = strings.TrimSpace(def.Path)
	def.Method = NormalizeMethod(def.Method)
	if def.Path == "" || def.Method == "" || def.GroupID == 0 {
		return apperr.ErrInvalidEndpoint
	}
	if !strings.HasPrefix(def.Path, "/") {
		def.Path = "/" + def.Path
	}
	if utils.IsReservedPath(def.Path) {
		return fmt.Errorf("%w: %s is reserved", apperr.ErrInvalidEndpoint, def.Path)
	}
	// 1xx codes are informational and cannot end a response.
	if def.ResponseCode < 200 || def.ResponseCode > 599 {
		return fmt.Errorf("%w: %d", apperr.ErrInvalidCode, def.ResponseCode)
	}
	for i := range def.Headers {
		def.Headers[i].Name = strings.TrimSpace(def.Headers[i].Name)
		if def.Headers[i].Name == "" {
			return apperr.ErrInvalidHeaders
		}
	}
	return nil
}
