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

package apperr

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrSelectorMissing  = errors.New("Invalid request need DESResponseCode header")
	ErrVariantNotFound  = errors.New("API details not found")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateVariant = errors.New("an endpoint with the same path, method and response code already exists")
	ErrDuplicateGroup   = errors.New("group already exists")
	ErrInvalidEndpoint  = errors.New("Invalid API details data")
	ErrInvalidCode      = errors.New("Invalid response code")
	ErrInvalidHeaders   = errors.New("Invalid response headers data")
	ErrInvalidGroup     = errors.New("Invalid group data")
)

func Kind(err error) string {
	switch {
	case err == nil:
		return ""

	case errors.Is(err, ErrSelectorMissing):
		return "selector_missing"

	case errors.Is(err, ErrVariantNotFound),
		errors.Is(err, ErrNotFound):
		return "not_found"

	case errors.Is(err, ErrDuplicateVariant),
		errors.Is(err, ErrDuplicateGroup):
		return "conflict"

	case errors.Is(err, ErrInvalidEndpoint),
		errors.Is(err, ErrInvalidCode),
		errors.Is(err, ErrInvalidHeaders),
		errors.Is(err, ErrInvalidGroup):
		return "bad_request"

	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"

	case errors.Is(err, context.Canceled):
		return "canceled"

	default:
		return "internal"
	}
}

var kindToStatus = map[string]int{
	"selector_missing": http.StatusBadRequest,
	"bad_request":      http.StatusBadRequest,
	"not_found":        http.StatusNotFound,
	"conflict":         http.StatusConflict,
	"timeout":          http.StatusGatewayTimeout,
}

func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if s, ok := kindToStatus[Kind(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
