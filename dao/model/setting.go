package model

import "gorm.io/datatypes"

// Keys of the process-wide settings table
const (
	SettingAllowEditing     = "allowEditing"
	SettingDirectoryEnabled = "directoryEnabled"
	SettingAllowedUsers     = "allowedUsers"
	SettingAdminUsers       = "adminUsers"
)

// SystemConfigSetting is one key/value pair; values are stored as JSON.
type SystemConfigSetting struct {
	Key   string         `gorm:"primaryKey;type:varchar(64)"`
	Value datatypes.JSON `gorm:"comment:JSON 编码的值"`
}
