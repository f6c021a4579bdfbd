package models

// AppSetting is a key/value row in the shared settings store. It backs the
// runtime-mutable configs, the poller's high-water marks, and the
// fingerprints for non-timestamped domains.
type AppSetting struct {
	BaseModel

	Key   string `gorm:"type:varchar(128);uniqueIndex;not null" json:"key"`
	Value string `gorm:"type:text" json:"value"`
}
