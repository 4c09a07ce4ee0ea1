package models

import "time"

// ServerType is the game edition a hosting request targets.
type ServerType string

const (
	ServerTypeJava    ServerType = "java"
	ServerTypeBedrock ServerType = "bedrock"
)

// RequestStatus is the lifecycle state of a ServerRequest.
// Transitions are one-way: pending -> approved.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
)

// ServerRequest is a persisted hosting request.
type ServerRequest struct {
	ID          int64         `db:"id" json:"id"`
	UserID      int64         `db:"user_id" json:"-"`
	ServerName  string        `db:"server_name" json:"server_name"`
	ServerType  ServerType    `db:"server_type" json:"server_type"`
	PlayerCount int           `db:"player_count" json:"player_count"`
	AmpUsername string        `db:"amp_username" json:"amp_username"`
	// PanelSecret is the hosting-panel password. It is stored as submitted
	// and must never be serialized to API clients.
	PanelSecret string        `db:"amp_password" json:"-"`
	Status      RequestStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updated_at"`
}

// SubmitServerRequest is the body of POST /api/servers/request.
type SubmitServerRequest struct {
	ServerName  string     `json:"serverName" binding:"required,notblank,min=3,max=50"`
	ServerType  ServerType `json:"serverType" binding:"omitempty,oneof=java bedrock"`
	PlayerCount int        `json:"playerCount" binding:"required,min=1,max=100"`
	AmpUsername string     `json:"ampUsername" binding:"required,notblank,min=3,max=30"`
	AmpPassword string     `json:"ampPassword" binding:"required,min=6"`
}
