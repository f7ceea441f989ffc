package models

import "time"

// CPUStats contains host CPU statistics.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// MemoryStats contains host memory statistics.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// HealthResponse is the /api/v1/health payload: liveness plus host
// resource usage, so an operator can tell a starved box from a dead one.
type HealthResponse struct {
	Status        string      `json:"status"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	StartTime     time.Time   `json:"start_time"`
	CPU           CPUStats    `json:"cpu"`
	Memory        MemoryStats `json:"memory"`
	IndexSize     int         `json:"index_size"`
	PersistenceOK *bool       `json:"persistence_ok,omitempty"`
}
