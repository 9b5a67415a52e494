package entity

import "time"

// Migration records the schema version the database is currently at.
type Migration struct {
	Version   int `gorm:"primarykey"`
	CreatedAt time.Time
}
