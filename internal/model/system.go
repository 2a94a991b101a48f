package model

// VersionInfo contains version and schema information for the application.
type VersionInfo struct {
	AppVersion       string  `json:"app_version"`
	DbVersion        string  `json:"db_version"`
	MigrationNeeded  bool    `json:"migration_needed"`
	MigrationMessage *string `json:"migration_message,omitempty"`
}

// SystemSetting is one key/value pair from the system_setting table.
// Sensitive values (external API credentials) are stored fernet-encrypted.
type SystemSetting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Encrypted bool   `json:"encrypted"`
}
