package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity is the contract every persisted model satisfies through an
// embedded BaseModel.
type Entity interface {
	GetID() uuid.UUID
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
	GetIsActive() bool
}

// BaseModel carries the id, timestamps and active flag shared by all models.
// IsActive is a pointer because gorm replaces a zero-valued field that has
// a default: nil means active, SetActive(false) creates an inactive row.
// isActive=false marks a soft delete.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;not null" json:"updatedAt"`
	IsActive  *bool     `gorm:"not null;default:true;index" json:"isActive"`
}

var _ Entity = BaseModel{}

// BeforeCreate assigns a new UUID when ID is unset.
func (b *BaseModel) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b BaseModel) GetID() uuid.UUID        { return b.ID }
func (b BaseModel) GetCreatedAt() time.Time { return b.CreatedAt }
func (b BaseModel) GetUpdatedAt() time.Time { return b.UpdatedAt }
func (b BaseModel) GetIsActive() bool       { return b.IsActive == nil || *b.IsActive }

// SetActive sets the active flag explicitly.
func (b *BaseModel) SetActive(active bool) { b.IsActive = &active }

func (b BaseModel) String() string { return b.ID.String() }

// Active limits a query to rows with is_active = true.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// Deactivate soft-deletes entity by clearing is_active. entity must be a
// pointer to a model with a primary key.
func Deactivate(ctx context.Context, db *gorm.DB, entity interface{}) error {
	res := db.WithContext(ctx).Model(entity).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
