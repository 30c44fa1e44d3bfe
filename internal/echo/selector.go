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

// Package echo turns inbound requests into stored mock responses.
//
// A caller picks one of the response variants registered for a path and
// method through the DESResponseCode header. The Coordinator resolves the
// variant, writes the stored status, headers and body, and publishes one
// Transaction Record per request to the observers.
package echo

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"des-echo-server/internal/apperr"
)

// SelectorHeader names the request header that selects a response variant.
// It is matched case-insensitively.
const SelectorHeader = "DESResponseCode"

// SelectorCode returns the status code requested through SelectorHeader. A
// missing, empty or non-numeric value yields apperr.ErrSelectorMissing.
func SelectorCode(h http.Header) (int, error) {
	v := strings.TrimSpace(h.Get(SelectorHeader))
	if v == "" {
		return 0, apperr.ErrSelectorMissing
	}
	code, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", apperr.ErrSelectorMissing, v)
	}
	return code, nil
}
