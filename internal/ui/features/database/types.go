// Package database provides handlers for the database lifecycle:
// upload, status, removal and schema browsing.
package database

// Status reports the session's database slot.
type Status struct {
	State         string `json:"state"`
	DatabaseName  string `json:"database_name,omitempty"`
	FileSizeBytes int64  `json:"file_size_bytes,omitempty"`
	TotalTables   int    `json:"total_tables,omitempty"`
}
