package models

import (
	"booking-system/internal/database"
	"booking-system/internal/database/repositories"
)

// BaseResponse represents the base API response structure
type BaseResponse struct {
	Success   bool        `json:"success" example:"true"`
	Message   string      `json:"message,omitempty" example:"Operation completed successfully"`
	Data      interface{} `json:"data,omitempty"`
	Error     *ErrorInfo  `json:"error,omitempty"`
	Timestamp int64       `json:"timestamp" example:"1640995200"`
	RequestID string      `json:"request_id,omitempty" example:"5b0f7c1e-9a43-4d3a-8c55-0e0b7d9c2f11"`
}

// ErrorInfo represents error information
type ErrorInfo struct {
	Code    string            `json:"code" example:"INVALID_REQUEST"`
	Message string            `json:"message" example:"Invalid request parameters"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token     string         `json:"token"`
	ExpiresAt int64          `json:"expires_at"`
	User      *database.User `json:"user"`
}

// MeResponse is the current user with the profile matching their role
type MeResponse struct {
	User          *database.User         `json:"user"`
	ClientProfile *database.ExtendedUser `json:"client_profile,omitempty"`
	WorkerProfile *database.ExtendedHair `json:"worker_profile,omitempty"`
}

// StoreOwnerResponse answers whether the caller owns a store
type StoreOwnerResponse struct {
	IsStoreOwner bool   `json:"isStoreOwner"`
	StoreID      *int64 `json:"storeId"`
	StoreName    string `json:"storeName"`
}

// StoreConnectionResponse answers whether the caller works at a store
type StoreConnectionResponse struct {
	IsConnectedToStore bool            `json:"isConnectedToStore"`
	Store              *database.Store `json:"store"`
	Role               string          `json:"role"`
}

// StoreDetailResponse is a store page
type StoreDetailResponse struct {
	*database.Store
	Pictures []database.StorePicture  `json:"pictures"`
	Workers  []database.WorkerSummary `json:"workers"`
}

// NearbyStore is a store with its distance from the search point
type NearbyStore struct {
	database.Store
	DistanceKm float64 `json:"distance_km"`
}

// FriendsResponse lists accepted friends or pending requests
type FriendsResponse struct {
	Friends []repositories.Friend `json:"friends"`
}

// FAQEntry is one question of the help page
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// HealthCheckResponse represents health check response
type HealthCheckResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp int64             `json:"timestamp" example:"1640995200"`
	Version   string            `json:"version" example:"1.0.0"`
	Checks    map[string]string `json:"checks,omitempty"`
}
