package models

// User is a console operator account. The console treats users as a
// fingerprinted realtime domain: there is no reliable per-record change
// timestamp consulted by the poller, only the collection as a whole.
type User struct {
	BaseModel

	Username    string `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	DisplayName string `gorm:"type:varchar(128)" json:"display_name"`
	Role        string `gorm:"type:varchar(32);not null;default:'operator'" json:"role"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}
