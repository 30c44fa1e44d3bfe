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
	"errors"
	"fmt"
	"io"
	"sort"

	"des-echo-server/internal/apperr"
	"des-echo-server/internal/utils"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML layout accepted by Seed:
//
//	groups:
//	  - name: orders
//	    endpoints:
//	      - path: /orders
//	        method: GET
//	        responseCode: 200
//	        responseBody: '{"ok":true}'
//	        headers:
//	          X-Test: a
type SeedFile struct {
	Groups []SeedGroup `yaml:"groups"`
}

type SeedGroup struct {
	Name      string         `yaml:"name"`
	Endpoints []SeedEndpoint `yaml:"endpoints"`
}

type SeedEndpoint struct {
	Path         string            `yaml:"path"`
	Method       string            `yaml:"method"`
	ResponseCode int               `yaml:"responseCode"`
	ResponseBody string            `yaml:"responseBody"`
	Headers      map[string]string `yaml:"headers"`
}

// Seed loads groups and endpoints from r into store. Groups that already
// exist are reused and variants that already exist are skipped, so seeding
// the same file twice is harmless. It returns the number of endpoints created.
func Seed(ctx context.Context, store Store, r io.Reader) (int, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	existing, err := store.ListGroups(ctx)
	if err != nil {
		return 0, err
	}
	byName := make(map[string]uint, len(existing))
	for _, g := range existing {
		byName[g.Name] = g.ID
	}

	created := 0
	for _, sg := range file.Groups {
		groupID, ok := byName[sg.Name]
		if !ok {
			g, err := store.CreateGroup(ctx, sg.Name)
			if err != nil {
				return created, fmt.Errorf("seed group %q: %w", sg.Name, err)
			}
			groupID = g.ID
			byName[g.Name] = g.ID
		}

		for _, se := range sg.Endpoints {
			def := utils.EndpointDefinition{
				GroupID:      groupID,
				Path:         se.Path,
				Method:       se.Method,
				ResponseCode: se.ResponseCode,
				ResponseBody: se.ResponseBody,
			}
			names := make([]string, 0, len(se.Headers))
			for name := range se.Headers {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				def.Headers = append(def.Headers, utils.ResponseHeader{Name: name, Value: se.Headers[name]})
			}

			_, err := store.CreateEndpoint(ctx, def)
			if errors.Is(err, apperr.ErrDuplicateVariant) {
				log.WithFields(log.Fields{
					"path":   se.Path,
					"method": se.Method,
					"code":   se.ResponseCode,
				}).Debug("seed variant already present, skipping")
				continue
			}
			if err != nil {
				return created, fmt.Errorf("seed %s %s %d: %w", se.Method, se.Path, se.ResponseCode, err)
			}
			created++
		}
	}
	return created, nil
}
