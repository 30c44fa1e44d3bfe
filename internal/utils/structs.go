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

import "strings"

// Group is an administrative bucket of endpoint definitions. It plays no part
// in resolving a request.
type Group struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	Name      string               `gorm:"uniqueIndex;not null" json:"name"`
	Endpoints []EndpointDefinition `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
}

// EndpointDefinition is one registered response variant. The triple
// (Path, Method, ResponseCode) is unique across the catalog.
type EndpointDefinition struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	GroupID      uint             `gorm:"index;not null" json:"groupId"`
	Path         string           `gorm:"uniqueIndex:idx_variant;not null" json:"path"`
	Method       string           `gorm:"uniqueIndex:idx_variant;not null" json:"method"`
	ResponseCode int              `gorm:"uniqueIndex:idx_variant;not null" json:"responseCode"`
	ResponseBody string           `gorm:"type:text;not null" json:"responseBody"`
	Headers      []ResponseHeader `gorm:"foreignKey:EndpointID;constraint:OnDelete:CASCADE" json:"headers"`
}

// ResponseHeader is a name/value pair written verbatim on the response of
// the endpoint that owns it.
type ResponseHeader struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	EndpointID uint   `gorm:"index;not null" json:"-"`
	Name       string `gorm:"not null" json:"headerName"`
	Value      string `json:"headerValue"`
}

// TransactionRecord is what observers receive for every handled request.
type TransactionRecord struct {
	RequestPath    string            `json:"requestPath"`
	RequestMethod  string            `json:"requestMethod"`
	RequestHeaders map[string]string `json:"requestHeaders"`
	ResponseCode   int               `json:"responseCode"`
	ResponseBody   string            `json:"responseBody"`
	Timestamp      string            `json:"timestamp"`
}

// ResponseModel is the JSON envelope used for every error and for the
// admin API.
type ResponseModel struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Detail  string      `json:"detail,omitempty"`
}

// Envelope statuses.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusDESError = "DES error"
)

// ReservedPrefix holds the server's own routes. Endpoint paths may not live
// below it, so a stored definition is never shadowed by a built-in route.
const ReservedPrefix = "/_des"

// IsReservedPath reports whether p is ReservedPrefix or a path below it.
func IsReservedPath(p string) bool {
	return p == ReservedPrefix || strings.HasPrefix(p, ReservedPrefix+"/")
}
