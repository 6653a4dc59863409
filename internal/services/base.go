package services

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"gorm.io/gorm"

	"contentos/internal/events"
)

// BaseService defines the CRUD surface shared by all workspace resources.
// Scope is an extra column filter applied to every query; the HTTP tier
// passes {"workspace_id": <id>} so a caller can never reach across tenants.
type BaseService[T any] interface {
	Create(ctx context.Context, entity *T, includes ...string) error
	Get(ctx context.Context, scope map[string]interface{}, id string, includes ...string) (*T, error)
	List(ctx context.Context, scope map[string]interface{}, page, limit int, sortField, order string, includes ...string) ([]T, int64, error)
	Update(ctx context.Context, scope map[string]interface{}, id string, entity *T, includes ...string) error
	Delete(ctx context.Context, scope map[string]interface{}, id string) error
}

type BaseServiceImpl[T any] struct {
	db        *gorm.DB
	modelType T
}

func GormTableName(db *gorm.DB, v any) string {
	structName := reflect.TypeOf(v).Name()
	return db.NamingStrategy.TableName(structName)
}

// NewBaseService creates a new base service
func NewBaseService[T any](db *gorm.DB, modelType T) BaseService[T] {
	return &BaseServiceImpl[T]{
		db:        db,
		modelType: modelType,
	}
}

func (s *BaseServiceImpl[T]) applyIncludes(query *gorm.DB, includes ...string) *gorm.DB {
	for _, include := range includes {
		query = query.Preload(include)
	}
	return query
}

func (s *BaseServiceImpl[T]) applyScope(query *gorm.DB, scope map[string]interface{}) *gorm.DB {
	for column, value := range scope {
		query = query.Where(column+" = ?", value)
	}
	return query.Where("is_deleted = ?", false)
}

func (s *BaseServiceImpl[T]) Create(ctx context.Context, entity *T, includes ...string) error {
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return err
	}

	if len(includes) > 0 {
		id := reflect.ValueOf(*entity).FieldByName("ID").String()
		if err := s.applyIncludes(s.db.WithContext(ctx), includes...).First(entity, "id = ?", id).Error; err != nil {
			return err
		}
	}

	events.Emit(fmt.Sprintf("%s.created", GormTableName(s.db, s.modelType)), entity)

	return nil
}

func (s *BaseServiceImpl[T]) Get(ctx context.Context, scope map[string]interface{}, id string, includes ...string) (*T, error) {
	var entity T
	query := s.db.WithContext(ctx)
	query = s.applyIncludes(query, includes...)
	query = s.applyScope(query, scope)

	if err := query.First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (s *BaseServiceImpl[T]) List(ctx context.Context, scope map[string]interface{}, page, limit int, sortField, order string, includes ...string) ([]T, int64, error) {
	var entities []T
	var total int64

	query := s.db.WithContext(ctx).Model(s.modelType)
	query = s.applyScope(query, scope)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = s.applyIncludes(query, includes...)

	if page > 0 && limit > 0 {
		offset := (page - 1) * limit
		query = query.Offset(offset).Limit(limit)
	}

	if sortField != "" {
		if order != "asc" {
			order = "desc"
		}
		query = query.Order(fmt.Sprintf("%s %s", sortField, order))
	}

	if err := query.Find(&entities).Error; err != nil {
		return nil, 0, err
	}

	return entities, total, nil
}

func (s *BaseServiceImpl[T]) Update(ctx context.Context, scope map[string]interface{}, id string, entity *T, includes ...string) error {
	query := s.db.WithContext(ctx).Model(entity)
	query = s.applyScope(query, scope)
	if err := query.Where("id = ?", id).Omit("id").Omit("workspace_id").Updates(entity).Error; err != nil {
		return err
	}

	if len(includes) > 0 {
		if err := s.applyIncludes(s.db.WithContext(ctx), includes...).First(entity, "id = ?", id).Error; err != nil {
			return err
		}
	}

	events.Emit(fmt.Sprintf("%s.updated", GormTableName(s.db, s.modelType)), entity)

	return nil
}

func (s *BaseServiceImpl[T]) Delete(ctx context.Context, scope map[string]interface{}, id string) error {
	query := s.db.WithContext(ctx).Model(s.modelType)
	query = s.applyScope(query, scope)
	if err := query.Where("id = ?", id).
		Update("deleted_at", time.Now()).
		Update("is_deleted", true).Error; err != nil {
		return err
	}

	events.Emit(fmt.Sprintf("%s.deleted", GormTableName(s.db, s.modelType)), id)

	return nil
}
