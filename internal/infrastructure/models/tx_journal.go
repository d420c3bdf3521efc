package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type TxJournal struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Action      string         `gorm:"type:varchar(50);not null;index"`
	Target      string         `gorm:"type:varchar(255);index"`
	Account     string         `gorm:"type:varchar(42);not null;index"`
	Args        pq.StringArray `gorm:"type:text[];default:'{}'"`
	Note        string         `gorm:"type:text"`
	TxHash      *string        `gorm:"type:varchar(66);index"`
	Surface     *string        `gorm:"type:varchar(20)"`
	State       string         `gorm:"type:varchar(20);not null;index"`
	Error       *string        `gorm:"type:text"`
	BlockNumber *int64
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
}

func (TxJournal) TableName() string {
	return "tx_journal"
}
