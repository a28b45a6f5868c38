package models

import "time"

// StoreSettingsID is the primary key of the single settings row.
const StoreSettingsID = 1

// StoreSetting holds the storefront contact details shown on every page.
type StoreSetting struct {
	ID        int       `gorm:"column:id;primaryKey"`
	StoreName string    `gorm:"column:store_name;not null;default:''"`
	Email     string    `gorm:"column:email;not null;default:''"`
	Phone     string    `gorm:"column:phone;not null;default:''"`
	Address   string    `gorm:"column:address;not null;default:''"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
