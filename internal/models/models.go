// Package models defines the GORM models persisted by giftwise.
package models

// All lists every model in migration order. Tests auto-migrate these; the
// SQL migrations under internal/database/migrations must stay in sync.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Person{},
		&Occasion{},
		&Gift{},
		&Budget{},
		&RevokedToken{},
		&AuditLog{},
	}
}
