package model

import "time"

// Show is a persisted broadcast show in a studio room.  Unlike a
// ShowPlanItem, a Show exists as its own row and owns assignment join rows
// linking it to hosts and streaming platforms.
type Show struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	RoomID         uint64    `json:"room_id"`
	ClientID       uint64    `json:"client_id"`
	ShowTypeID     uint64    `json:"show_type_id"`
	ShowStatusID   uint64    `json:"show_status_id"`
	ShowStandardID uint64    `json:"show_standard_id"`
	StartsAt       time.Time `json:"starts_at"`
	EndsAt         time.Time `json:"ends_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ShowHost links a show to a host (MC).  Rows are soft-deleted: when an
// assignment is removed, DeletedAt is stamped and default queries filter the
// row out.  The row itself stays so published-schedule history remains
// reconstructable.
type ShowHost struct {
	ID        uint64     `json:"id"`
	ShowID    uint64     `json:"show_id"`
	HostID    uint64     `json:"host_id"`
	HostCode  string     `json:"host_code"`
	HostName  string     `json:"host_name"`
	Note      string     `json:"note,omitempty"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ShowPlatform links a show to a streaming platform together with the
// stream-specific fields.  Soft-deleted the same way as ShowHost.
type ShowPlatform struct {
	ID             uint64     `json:"id"`
	ShowID         uint64     `json:"show_id"`
	PlatformID     uint64     `json:"platform_id"`
	PlatformCode   string     `json:"platform_code"`
	PlatformName   string     `json:"platform_name"`
	StreamLink     string     `json:"stream_link,omitempty"`
	ExternalShowID string     `json:"external_show_id,omitempty"`
	ViewerCount    uint64     `json:"viewer_count"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// ShowWithAssignments is a show together with its active host and platform
// assignments.  It is what the assignment endpoints return.
type ShowWithAssignments struct {
	Show      Show           `json:"show"`
	MCs       []ShowHost     `json:"mcs"`
	Platforms []ShowPlatform `json:"platforms"`
}
