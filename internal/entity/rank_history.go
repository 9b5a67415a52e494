package entity

// RankHistory is an append-only record of rank transitions. The snowflake id
// keeps entries time ordered without a separate sequence.
type RankHistory struct {
	SnowFlakeBase

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	FromRank Rank
	ToRank   Rank
	Level    int
	TotalXP  int64
}
