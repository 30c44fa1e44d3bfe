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
	"net/http"
	"testing"

	"des-echo-server/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectorCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		value   string
		want    int
		wantErr bool
	}{
		{name: "canonical", key: "DESResponseCode", value: "200", want: 200},
		{name: "lower", key: "desresponsecode", value: "404", want: 404},
		{name: "upper", key: "DESRESPONSECODE", value: "500", want: 500},
		{name: "padded", key: "DesResponseCode", value: " 201 ", want: 201},
		{name: "empty", key: "DESResponseCode", value: "", wantErr: true},
		{name: "not_a_number", key: "DESResponseCode", value: "ok", wantErr: true},
		{name: "absent", key: "X-Other", value: "200", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := http.Header{}
			h.Set(tt.key, tt.value)

			got, err := SelectorCode(h)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrSelectorMissing)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
