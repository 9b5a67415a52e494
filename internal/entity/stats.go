package entity

import "time"

// UserStats holds the six trainable attributes. Rank-up gates require every
// attribute to individually meet the threshold of the current rank.
type UserStats struct {
	CreatedAt time.Time
	UpdatedAt time.Time

	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	Strength  int `gorm:"not null;default:0"`
	Speed     int `gorm:"not null;default:0"`
	Endurance int `gorm:"not null;default:0"`
	Agility   int `gorm:"not null;default:0"`
	Power     int `gorm:"not null;default:0"`
	Recovery  int `gorm:"not null;default:0"`
}

// Min returns the lowest attribute value.
func (s UserStats) Min() int {
	min := s.Strength
	for _, v := range []int{s.Speed, s.Endurance, s.Agility, s.Power, s.Recovery} {
		if v < min {
			min = v
		}
	}

	return min
}
