// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormGameRecord 游戏记录模型
type GormGameRecord struct {
	gorm.Model
	RoomCode  string `gorm:"index;not null"`
	RoomName  string
	Winner    string `gorm:"not null"`
	Topic     string
	Rounds    int
	Impostors string `gorm:"type:text"`  // comma-joined names
	Players   []byte `gorm:"type:jsonb"` // []PlayerResult
}

// GormPlayerResult 玩家战绩模型
type GormPlayerResult struct {
	gorm.Model
	RecordID uint   `gorm:"index;not null"`
	Name     string `gorm:"index;not null"`
	Impostor bool
	Won      bool
	Points   int
}
