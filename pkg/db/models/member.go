package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/pkg/enums"
)

// Member is a loyalty record maintained by staff.
type Member struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string           `gorm:"column:name;not null"`
	Email     string           `gorm:"column:email;not null"`
	Tier      enums.MemberTier `gorm:"column:tier;type:text;not null;default:Bronze"`
	Points    int              `gorm:"column:points;not null;default:0"`
	JoinedAt  time.Time        `gorm:"column:joined_at;not null"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (m *Member) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
