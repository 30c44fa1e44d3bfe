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
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantKind   string
		wantStatus int
	}{
		{name: "nil", err: nil, wantKind: "", wantStatus: http.StatusOK},
		{name: "selector", err: ErrSelectorMissing, wantKind: "selector_missing", wantStatus: http.StatusBadRequest},
		{name: "variant_miss", err: ErrVariantNotFound, wantKind: "not_found", wantStatus: http.StatusNotFound},
		{name: "wrapped_not_found", err: fmt.Errorf("endpoint 7: %w", ErrNotFound), wantKind: "not_found", wantStatus: http.StatusNotFound},
		{name: "duplicate", err: ErrDuplicateVariant, wantKind: "conflict", wantStatus: http.StatusConflict},
		{name: "invalid_code", err: ErrInvalidCode, wantKind: "bad_request", wantStatus: http.StatusBadRequest},
		{name: "timeout", err: context.DeadlineExceeded, wantKind: "timeout", wantStatus: http.StatusGatewayTimeout},
		{name: "canceled", err: context.Canceled, wantKind: "canceled", wantStatus: http.StatusInternalServerError},
		{name: "other", err: errors.New("disk on fire"), wantKind: "internal", wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantKind, Kind(tt.err))
			assert.Equal(t, tt.wantStatus, HTTPStatus(tt.err))
		})
	}
}
