package models

// Printer describes a configured receipt/document printer.
type Printer struct {
	BaseModel

	Name      string `gorm:"type:varchar(128);not null" json:"name"`
	Location  string `gorm:"type:varchar(128)" json:"location"`
	Model     string `gorm:"type:varchar(128)" json:"model"`
	IsDefault bool   `gorm:"default:false" json:"is_default"`
	IsOnline  bool   `gorm:"default:true" json:"is_online"`
}
