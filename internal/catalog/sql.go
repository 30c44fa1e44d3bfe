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
	"strings"
	"time"

	"des-echo-server/internal/apperr"
	"des-echo-server/internal/utils"

	"github.com/glebarez/sqlite"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SQLStore is a Store backed by SQLite through gorm.
type SQLStore struct {
	db *gorm.DB
}

// OpenSQLite opens (and migrates) the catalog database at dsn. Use
// "file::memory:" for a throwaway database.
func OpenSQLite(dsn string) (*SQLStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(log.StandardLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", dsn, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers anyway, and an in-memory database only
	// exists on the connection that created it.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&utils.Group{}, &utils.EndpointDefinition{}, &utils.ResponseHeader{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}

	log.WithField("dsn", dsn).Debug("catalog database ready")
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) LookupByPathMethodStatus(ctx context.Context, path, method string, code int) ([]utils.EndpointDefinition, error) {
	var defs []utils.EndpointDefinition
	err := s.db.WithContext(ctx).
		Where("path = ? AND method = ? AND response_code = ?", path, NormalizeMethod(method), code).
		Order("id").
		Find(&defs).Error
	if err != nil {
		return nil, fmt.Errorf("lookup %s %s %d: %w", method, path, code, err)
	}
	return defs, nil
}

func (s *SQLStore) ListHeaders(ctx context.Context, endpointID uint) ([]utils.ResponseHeader, error) {
	headers := []utils.ResponseHeader{}
	err := s.db.WithContext(ctx).Where("endpoint_id = ?", endpointID).Order("id").Find(&headers).Error
	if err != nil {
		return nil, fmt.Errorf("list headers of endpoint %d: %w", endpointID, err)
	}
	return headers, nil
}

func (s *SQLStore) CreateGroup(ctx context.Context, name string) (utils.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return utils.Group{}, apperr.ErrInvalidGroup
	}

	g := utils.Group{Name: name}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&utils.Group{}).Where("name = ?", name).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", apperr.ErrDuplicateGroup, name)
		}
		return tx.Create(&g).Error
	})
	if err != nil {
		return utils.Group{}, err
	}
	return g, nil
}

func (s *SQLStore) ListGroups(ctx context.Context) ([]utils.Group, error) {
	groups := []utils.Group{}
	if err := s.db.WithContext(ctx).Order("id").Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// UpdateGroup renames a group. Names stay unique.
func (s *SQLStore) UpdateGroup(ctx context.Context, id uint, name string) (utils.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return utils.Group{}, apperr.ErrInvalidGroup
	}

	var g utils.Group
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&g, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("group %d: %w", id, apperr.ErrNotFound)
			}
			return err
		}
		var n int64
		if err := tx.Model(&utils.Group{}).Where("name = ? AND id <> ?", name, id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %s", apperr.ErrDuplicateGroup, name)
		}
		g.Name = name
		return tx.Model(&g).Update("name", name).Error
	})
	if err != nil {
		return utils.Group{}, err
	}
	return g, nil
}

// DeleteGroup removes a group and every endpoint in it.
func (s *SQLStore) DeleteGroup(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&utils.Group{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("group %d: %w", id, apperr.ErrNotFound)
		}

		var ids []uint
		if err := tx.Model(&utils.EndpointDefinition{}).Where("group_id = ?", id).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("endpoint_id IN ?", ids).Delete(&utils.ResponseHeader{}).Error; err != nil {
			return err
		}
		return tx.Where("group_id = ?", id).Delete(&utils.EndpointDefinition{}).Error
	})
}

func (s *SQLStore) CreateEndpoint(ctx context.Context, def utils.EndpointDefinition) (utils.EndpointDefinition, error) {
	def.ID = 0
	def.Headers = freshHeaders(def.Headers, 0)
	if err := Validate(&def); err != nil {
		return utils.EndpointDefinition{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkEndpoint(tx, def); err != nil {
			return err
		}
		return tx.Create(&def).Error
	})
	if err != nil {
		return utils.EndpointDefinition{}, err
	}
	return s.GetEndpoint(ctx, def.ID)
}

func (s *SQLStore) GetEndpoint(ctx context.Context, id uint) (utils.EndpointDefinition, error) {
	var def utils.EndpointDefinition
	err := s.db.WithContext(ctx).Preload("Headers", orderByID).First(&def, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.EndpointDefinition{}, fmt.Errorf("endpoint %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return utils.EndpointDefinition{}, err
	}
	return def, nil
}

func (s *SQLStore) ListEndpoints(ctx context.Context) ([]utils.EndpointDefinition, error) {
	defs := []utils.EndpointDefinition{}
	if err := s.db.WithContext(ctx).Preload("Headers", orderByID).Order("id").Find(&defs).Error; err != nil {
		return nil, err
	}
	return defs, nil
}

// UpdateEndpoint replaces the stored definition, headers included.
func (s *SQLStore) UpdateEndpoint(ctx context.Context, def utils.EndpointDefinition) (utils.EndpointDefinition, error) {
	def.Headers = freshHeaders(def.Headers, def.ID)
	if err := Validate(&def); err != nil {
		return utils.EndpointDefinition{}, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&utils.EndpointDefinition{}).Where("id = ?", def.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("endpoint %d: %w", def.ID, apperr.ErrNotFound)
		}
		if err := checkEndpoint(tx, def); err != nil {
			return err
		}

		err := tx.Model(&utils.EndpointDefinition{}).Where("id = ?", def.ID).Updates(map[string]interface{}{
			"group_id":      def.GroupID,
			"path":          def.Path,
			"method":        def.Method,
			"response_code": def.ResponseCode,
			"response_body": def.ResponseBody,
		}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("endpoint_id = ?", def.ID).Delete(&utils.ResponseHeader{}).Error; err != nil {
			return err
		}
		if len(def.Headers) == 0 {
			return nil
		}
		return tx.Create(&def.Headers).Error
	})
	if err != nil {
		return utils.EndpointDefinition{}, err
	}
	return s.GetEndpoint(ctx, def.ID)
}

func (s *SQLStore) DeleteEndpoint(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("endpoint_id = ?", id).Delete(&utils.ResponseHeader{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&utils.EndpointDefinition{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("endpoint %d: %w", id, apperr.ErrNotFound)
		}
		return nil
	})
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// checkEndpoint verifies the group exists and that no other endpoint owns the
// same variant triple.
func checkEndpoint(tx *gorm.DB, def utils.EndpointDefinition) error {
	var n int64
	if err := tx.Model(&utils.Group{}).Where("id = ?", def.GroupID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("group %d: %w", def.GroupID, apperr.ErrInvalidEndpoint)
	}

	err := tx.Model(&utils.EndpointDefinition{}).
		Where("path = ? AND method = ? AND response_code = ? AND id <> ?", def.Path, def.Method, def.ResponseCode, def.ID).
		Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s %s %d", apperr.ErrDuplicateVariant, def.Method, def.Path, def.ResponseCode)
	}
	return nil
}

func freshHeaders(in []utils.ResponseHeader, endpointID uint) []utils.ResponseHeader {
	out := make([]utils.ResponseHeader, len(in))
	for i, h := range in {
		out[i] = utils.ResponseHeader{EndpointID: endpointID, Name: h.Name, Value: h.Value}
	}
	return out
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

// Ensure SQLStore implements Store.
var _ Store = (*SQLStore)(nil)
