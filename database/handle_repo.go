package database

import (
	"context"
	"errors"

	"github.com/rpupo63/wholspace-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type HandleRepo struct {
	db *gorm.DB
}

func NewHandleRepo(db *gorm.DB) *HandleRepo {
	return &HandleRepo{db}
}

// Find returns the reservation of a normalized handle
func (r *HandleRepo) Find(ctx context.Context, handle string) (*models.HandleReservation, error) {
	var reservation models.HandleReservation
	err := r.db.WithContext(ctx).Clauses(dbresolver.Write).Where("handle = ?", handle).Take(&reservation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Reserve claims a handle. The primary key on handle makes concurrent claims race-free.
func (r *HandleRepo) Reserve(ctx context.Context, reservation *models.HandleReservation) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(reservation)
	return res.RowsAffected > 0, res.Error
}

// Release drops a reservation if uid holds it
func (r *HandleRepo) Release(ctx context.Context, handle, uid string) error {
	return r.db.WithContext(ctx).Where("handle = ? AND uid = ?", handle, uid).Delete(&models.HandleReservation{}).Error
}
