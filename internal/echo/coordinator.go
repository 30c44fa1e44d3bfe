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
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"des-echo-server/internal/apperr"
	"des-echo-server/internal/catalog"
	"des-echo-server/internal/middleware"
	"des-echo-server/internal/utils"

	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

const (
	msgSelectorMissing = "Invalid request need DESResponseCode header"
	msgNotFound        = "API details not found"
	msgLookupFailed    = "Failed to validate the path"

	// TimestampFormat is the layout of TransactionRecord.Timestamp.
	TimestampFormat = "15:04:05"

	// DefaultCatalogTimeout bounds the catalog work done for one request.
	DefaultCatalogTimeout = 10 * time.Second
)

// Publisher accepts Transaction Records without blocking.
type Publisher interface {
	Publish(rec utils.TransactionRecord) bool
}

// Coordinator is the echo entry point. Each call to ServeHTTP writes one
// response and publishes exactly one Transaction Record describing it.
type Coordinator struct {
	catalog   catalog.Catalog
	resolver  *Resolver
	publisher Publisher
	clock     clockwork.Clock
	timeout   time.Duration
}

// NewCoordinator creates a Coordinator reading from c and publishing to p.
func NewCoordinator(c catalog.Catalog, p Publisher) *Coordinator {
	return &Coordinator{
		catalog:   c,
		resolver:  NewResolver(c),
		publisher: p,
		clock:     clockwork.NewRealClock(),
		timeout:   DefaultCatalogTimeout,
	}
}

// WithClock sets the clock used to stamp records.
func (c *Coordinator) WithClock(clock clockwork.Clock) *Coordinator {
	c.clock = clock
	return c
}

// WithCatalogTimeout bounds the catalog lookups of one request. A zero or
// negative value keeps the current timeout.
func (c *Coordinator) WithCatalogTimeout(d time.Duration) *Coordinator {
	if d > 0 {
		c.timeout = d
	}
	return c
}

func (c *Coordinator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l := middleware.GetReqLogger(r.Context())

	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	method := catalog.NormalizeMethod(r.Method)
	rec := utils.TransactionRecord{
		RequestPath:    path,
		RequestMethod:  method,
		RequestHeaders: flattenHeaders(r),
	}

	code, err := SelectorCode(r.Header)
	if err != nil {
		l.WithError(err).Debug("rejecting request without a usable selector")
		c.reply(w, l, &rec, http.StatusBadRequest, utils.ResponseModel{Status: utils.StatusError, Message: msgSelectorMissing})
		return
	}

	// The lookup outlives a client that hangs up so that the request is
	// still reported to the observers.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), c.timeout)
	defer cancel()

	def, err := c.resolver.Resolve(ctx, path, method, code)
	if errors.Is(err, apperr.ErrVariantNotFound) {
		c.reply(w, l, &rec, http.StatusNotFound, utils.ResponseModel{Status: utils.StatusDESError, Message: msgNotFound})
		return
	}
	if err != nil {
		c.fail(w, l, &rec, err)
		return
	}

	headers, err := c.catalog.ListHeaders(ctx, def.ID)
	if err != nil {
		c.fail(w, l, &rec, err)
		return
	}
	// 1xx codes are informational: net/http would follow them with an
	// implicit 200, so the client would never see the stored code.
	if def.ResponseCode < 200 || def.ResponseCode > 999 {
		c.fail(w, l, &rec, fmt.Errorf("endpoint %d has unusable response code %d", def.ID, def.ResponseCode))
		return
	}

	resp := Synthesize(def, headers)
	if err := resp.Write(w); err != nil {
		l.WithError(err).Debug("client went away before the response was written")
	}

	rec.ResponseCode = resp.StatusCode
	if resp.HasBody() {
		rec.ResponseBody = def.ResponseBody
	}
	c.publish(&rec)
}

func (c *Coordinator) fail(w http.ResponseWriter, l *log.Entry, rec *utils.TransactionRecord, err error) {
	l.WithError(err).WithFields(log.Fields{
		"path":   rec.RequestPath,
		"method": rec.RequestMethod,
	}).Error("catalog lookup failed")
	c.reply(w, l, rec, http.StatusInternalServerError, utils.ResponseModel{
		Status:  utils.StatusDESError,
		Message: msgLookupFailed,
		Detail:  err.Error(),
	})
}

// reply writes an error envelope and publishes the matching record.
func (c *Coordinator) reply(w http.ResponseWriter, l *log.Entry, rec *utils.TransactionRecord, status int, body utils.ResponseModel) {
	if err := utils.RespondJSON(w, status, body); err != nil {
		l.WithError(err).Debug("client went away before the response was written")
	}
	rec.ResponseCode = status
	rec.ResponseBody = body.Message
	c.publish(rec)
}

func (c *Coordinator) publish(rec *utils.TransactionRecord) {
	rec.Timestamp = c.clock.Now().Format(TimestampFormat)
	c.publisher.Publish(*rec)
}

// flattenHeaders renders the inbound headers with lower-cased names, joining
// repeated values with ", ".
func flattenHeaders(r *http.Request) map[string]string {
	out := make(map[string]string, len(r.Header)+1)
	if r.Host != "" {
		out["host"] = r.Host
	}
	for name, values := range r.Header {
		out[strings.ToLower(name)] = strings.Join(values, ", ")
	}
	return out
}
