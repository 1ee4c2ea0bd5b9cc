package models

// Permission is a global catalog entry; codes are dot-namespaced.
type Permission struct {
	BaseEntity
	Code        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	Name        string `gorm:"type:varchar(200);not null" json:"name"`
	Description string `gorm:"type:varchar(500)" json:"description"`
}
