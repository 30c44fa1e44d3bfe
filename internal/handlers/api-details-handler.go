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

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"des-echo-server/internal/apperr"
	"des-echo-server/internal/catalog"
	"des-echo-server/internal/middleware"
	"des-echo-server/internal/utils"

	"github.com/gorilla/mux"
)

const msgEndpointNotFound = "API details not found"

// API serves the management endpoints of the catalog.
type API struct {
	store catalog.Store
}

func NewAPI(store catalog.Store) *API {
	return &API{store: store}
}

// Register mounts the management routes on r.
func (a *API) Register(r *mux.Router) {
	r.HandleFunc("/groups", a.ListGroups).Methods("GET")
	r.HandleFunc("/groups", a.AddGroup).Methods("POST")
	r.HandleFunc("/groups/{id}", a.UpdateGroup).Methods("PUT")
	r.HandleFunc("/groups/{id}", a.DeleteGroup).Methods("DELETE")

	r.HandleFunc("/endpoints", a.ListEndpoints).Methods("GET")
	r.HandleFunc("/endpoints", a.AddEndpoint).Methods("POST")
	r.HandleFunc("/endpoints/{id}", a.GetEndpoint).Methods("GET")
	r.HandleFunc("/endpoints/{id}", a.UpdateEndpoint).Methods("PUT")
	r.HandleFunc("/endpoints/{id}", a.DeleteEndpoint).Methods("DELETE")
}

// endpointRequest is the body accepted when adding or updating an endpoint.
// responseBody may be a string or any JSON value, responseCode a number or a
// numeric string.
type endpointRequest struct {
	GroupID      uint            `json:"groupId"`
	Path         string          `json:"path"`
	Method       string          `json:"method"`
	ResponseCode json.RawMessage `json:"responseCode"`
	ResponseBody json.RawMessage `json:"responseBody"`
	Headers      json.RawMessage `json:"headers"`
}

func (req endpointRequest) definition() (utils.EndpointDefinition, error) {
	def := utils.EndpointDefinition{
		GroupID: req.GroupID,
		Path:    req.Path,
		Method:  req.Method,
	}

	code, err := parseCode(req.ResponseCode)
	if err != nil {
		return def, err
	}
	def.ResponseCode = code

	body, err := bodyText(req.ResponseBody)
	if err != nil {
		return def, err
	}
	def.ResponseBody = body

	if len(req.Headers) > 0 && string(req.Headers) != "null" {
		if err := json.Unmarshal(req.Headers, &def.Headers); err != nil {
			return def, fmt.Errorf("%w: %v", apperr.ErrInvalidHeaders, err)
		}
	}
	return def, nil
}

func parseCode(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	}
	return 0, apperr.ErrInvalidCode
}

// bodyText stores a JSON string as its contents and any other JSON value as
// its serialized text.
func bodyText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", apperr.ErrInvalidEndpoint
	}
	return buf.String(), nil
}

func (a *API) ListEndpoints(w http.ResponseWriter, r *http.Request) {
	defs, err := a.store.ListEndpoints(r.Context())
	if err != nil {
		a.fail(w, r, err, msgEndpointNotFound, "Failed to get all API details")
		return
	}
	ok(w, http.StatusOK, "All API details", defs)
}

func (a *API) AddEndpoint(w http.ResponseWriter, r *http.Request) {
	var req endpointRequest
	if err := utils.UnmarshalRequest(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.StatusError, apperr.ErrInvalidEndpoint.Error())
		return
	}
	def, err := req.definition()
	if err != nil {
		a.fail(w, r, err, msgEndpointNotFound, "Failed to add the API details")
		return
	}

	created, err := a.store.CreateEndpoint(r.Context(), def)
	if err != nil {
		a.fail(w, r, err, msgEndpointNotFound, "Failed to add the API details")
		return
	}
	ok(w, http.StatusCreated, "API details added successfully", created)
}

func (a *API) GetEndpoint(w http.ResponseWriter, r *http.Request) {
	id, valid := idVar(r)
	if !valid {
		utils.RespondWithError(w, http.StatusBadRequest, utils.StatusError, "Invalid request")
		return
	}
	def, err := a.store.GetEndpoint(r.Context(), id)
	if err != nil {
		a.fail(w, r, err, msgEndpointNotFound, "Failed to get the API details")
		return
	}
	ok(w, http.StatusOK, "API details", def)
}

func (a *API) UpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	id, valid := idVar(r)
	if !valid {
		utils.RespondWithError(w, http.StatusBadRequest, utils.StatusError, "Invalid request")
		return
	}
	var req endpointRequest
	if err := utils.UnmarshalRequest(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.StatusError, apperr.ErrInvalidEndpoint.Error())
		return
	}
	def, err := req.definition()
	if err != nil {
		a.fail(w, r, err, msgEndpointNotFound, "Failed to update the API details")
		return
	}
	def.ID = id

	updated, err := a.store.UpdateEndpoint(r.Context(), def)
	if err != nil {
		a.fail(w, r, err, msgEndpointNotFound, "Failed to update the API details")
		return
	}
	ok(w, http.StatusOK, "API details updated successfully", updated)
}

func (a *API) DeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	id, valid := idVar(r)
	if !valid {
		utils.RespondWithError(w, http.StatusBadRequest, utils.StatusError, "Invalid request")
		return
	}
	if err := a.store.DeleteEndpoint(r.Context(), id); err != nil {
		a.fail(w, r, err, msgEndpointNotFound, "Failed to delete the API details")
		return
	}
	ok(w, http.StatusOK, "API details deleted successfully", nil)
}

func (a *API) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := a.store.ListGroups(r.Context())
	if err != nil {
		a.fail(w, r, err, "Group not found", "Failed to get all groups")
		return
	}
	ok(w, http.StatusOK, "All groups", groups)
}

func (a *API) AddGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := utils.UnmarshalRequest(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.StatusError, apperr.ErrInvalidGroup.Error())
		return
	}
	g, err := a.store.CreateGroup(r.Context(), req.Name)
	if err != nil {
		a.fail(w, r, err, "Group not found", "Failed to add the group")
		return
	}
	ok(w, http.StatusCreated, "Group added successfully", g)
}

func (a *API) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	id, valid := idVar(r)
	if !valid {
		utils.RespondWithError(w, http.StatusBadRequest, utils.StatusError, "Invalid request")
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := utils.UnmarshalRequest(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, utils.StatusError, apperr.ErrInvalidGroup.Error())
		return
	}
	g, err := a.store.UpdateGroup(r.Context(), id, req.Name)
	if err != nil {
		a.fail(w, r, err, "Group not found", "Failed to update the group")
		return
	}
	ok(w, http.StatusOK, "Group updated successfully", g)
}

func (a *API) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id, valid := idVar(r)
	if !valid {
		utils.RespondWithError(w, http.StatusBadRequest, utils.StatusError, "Invalid request")
		return
	}
	if err := a.store.DeleteGroup(r.Context(), id); err != nil {
		a.fail(w, r, err, "Group not found", "Failed to delete the group")
		return
	}
	ok(w, http.StatusOK, "Group deleted successfully", nil)
}

// clientErrors are reported to the caller with their own text.
var clientErrors = []error{
	apperr.ErrInvalidCode,
	apperr.ErrInvalidHeaders,
	apperr.ErrInvalidGroup,
	apperr.ErrInvalidEndpoint,
	apperr.ErrDuplicateVariant,
	apperr.ErrDuplicateGroup,
}

// fail maps err to an error envelope. Store failures are answered with
// failedMsg and the error text as detail.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, failedMsg string) {
	status := apperr.HTTPStatus(err)
	switch status {
	case http.StatusNotFound:
		utils.RespondWithError(w, status, utils.StatusError, notFoundMsg)
		return
	case http.StatusBadRequest, http.StatusConflict:
		for _, ce := range clientErrors {
			if errors.Is(err, ce) {
				utils.RespondWithError(w, status, utils.StatusError, ce.Error())
				return
			}
		}
	}

	middleware.GetReqLogger(r.Context()).WithError(err).Error(failedMsg)
	utils.RespondWithDetail(w, http.StatusInternalServerError, utils.StatusError, failedMsg, err)
}

func ok(w http.ResponseWriter, status int, message string, data interface{}) {
	utils.RespondJSON(w, status, utils.ResponseModel{Status: utils.StatusSuccess, Message: message, Data: data})
}

func idVar(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
