package service

import (
	"time"

	"gorm.io/gorm"
)

func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func exists(tx *gorm.DB, model interface{}, id uint64) (bool, error) {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
