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
	"bytes"
	"encoding/json"
	"net/http"

	"des-echo-server/internal/utils"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// Synthesized is a response ready to be written.
type Synthesized struct {
	StatusCode int
	Headers    []utils.ResponseHeader
	Body       []byte
	// Structured reports whether Body is JSON parsed from the stored text.
	Structured bool
}

// Synthesize builds the response for def. A stored body that is valid JSON is
// sent as JSON; anything else is sent as the stored text, unchanged.
func Synthesize(def utils.EndpointDefinition, headers []utils.ResponseHeader) Synthesized {
	s := Synthesized{
		StatusCode: def.ResponseCode,
		Headers:    headers,
		Body:       []byte(def.ResponseBody),
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, s.Body); err == nil {
		s.Body = buf.Bytes()
		s.Structured = true
	}
	if !s.HasBody() {
		s.Body = nil
	}
	return s
}

// HasBody reports whether the status code permits a response body.
func (s Synthesized) HasBody() bool {
	switch {
	case s.StatusCode >= 100 && s.StatusCode < 200:
		return false
	case s.StatusCode == http.StatusNoContent, s.StatusCode == http.StatusNotModified:
		return false
	}
	return true
}

// Write sends s on w. The configured headers are applied after the default
// Content-Type so they override it.
func (s Synthesized) Write(w http.ResponseWriter) error {
	h := w.Header()
	if s.Structured {
		h.Set("Content-Type", contentTypeJSON)
	} else {
		h.Set("Content-Type", contentTypeText)
	}
	for _, hdr := range s.Headers {
		h.Set(hdr.Name, hdr.Value)
	}

	w.WriteHeader(s.StatusCode)
	if !s.HasBody() {
		return nil
	}
	_, err := w.Write(s.Body)
	return err
}
