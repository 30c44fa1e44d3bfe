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

package echo

import (
	"context"
	"fmt"

	"des-echo-server/internal/apperr"
	"des-echo-server/internal/catalog"
	"des-echo-server/internal/middleware"
	"des-echo-server/internal/utils"

	log "github.com/sirupsen/logrus"
)

// Resolver maps (path, method, code) to the one endpoint definition that
// serves it.
type Resolver struct {
	catalog catalog.Catalog
}

func NewResolver(c catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve looks the triple up in the catalog. It returns
// apperr.ErrVariantNotFound on a miss. Duplicate rows break the catalog's
// uniqueness guarantee; the lowest one is used and the clash is logged.
func (r *Resolver) Resolve(ctx context.Context, path, method string, code int) (utils.EndpointDefinition, error) {
	defs, err := r.catalog.LookupByPathMethodStatus(ctx, path, catalog.NormalizeMethod(method), code)
	if err != nil {
		return utils.EndpointDefinition{}, err
	}
	if len(defs) == 0 {
		return utils.EndpointDefinition{}, fmt.Errorf("%s %s %d: %w", method, path, code, apperr.ErrVariantNotFound)
	}

	if len(defs) > 1 {
		ids := make([]uint, len(defs))
		for i, d := range defs {
			ids[i] = d.ID
		}
		middleware.GetReqLogger(ctx).WithFields(log.Fields{
			"path":   path,
			"method": method,
			"code":   code,
			"ids":    ids,
		}).Warn("catalog_integrity: several endpoints share one variant, serving the first")
	}
	return defs[0], nil
}
