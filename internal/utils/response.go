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

package utils

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// RespondJSON writes v as JSON with the given status code. Headers already set
// on w are kept.
func RespondJSON(w http.ResponseWriter, statusCode int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).WithField("status", statusCode).Debug("failed to write response")
		return err
	}
	return nil
}

// RespondWithError sends an error envelope.
func RespondWithError(w http.ResponseWriter, statusCode int, status, message string) {
	RespondJSON(w, statusCode, ResponseModel{Status: status, Message: message})
}

// RespondWithDetail sends an error envelope carrying the underlying error text.
func RespondWithDetail(w http.ResponseWriter, statusCode int, status, message string, err error) {
	resp := ResponseModel{Status: status, Message: message}
	if err != nil {
		resp.Detail = err.Error()
	}
	RespondJSON(w, statusCode, resp)
}

// UnmarshalRequest decodes the JSON body of r into v.
func UnmarshalRequest(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
