package codegen

import (
	"context"

	"gorm.io/gorm"
)

type dbChecker struct {
	db *gorm.DB
}

// NewDBChecker checks codes against campaigns.code and invitations.invite_code.
func NewDBChecker(db *gorm.DB) Checker {
	return &dbChecker{db: db}
}

func (c *dbChecker) Exists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).Raw(
		`SELECT (SELECT COUNT(1) FROM campaigns WHERE code = ?)
		      + (SELECT COUNT(1) FROM invitations WHERE invite_code = ?)`,
		code,
		code,
	).Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
