package service

import (
	"database/sql"
	"strconv"

	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/database"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/model"
	"github.com/ivala2081/Treasury-Dashboard-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns version info including the current schema version.
func (s *SystemService) CheckVersion() model.VersionInfo {
	info := model.VersionInfo{
		AppVersion: version.Version,
	}

	schemaVersion, err := database.SchemaVersion(s.db)
	if err != nil {
		msg := err.Error()
		info.MigrationNeeded = true
		info.MigrationMessage = &msg
		return info
	}

	info.DbVersion = strconv.FormatInt(schemaVersion, 10)
	return info
}
