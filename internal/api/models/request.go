package models

import "time"

// RegisterRequest represents account registration
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50" example:"kovacs.anna"`
	Email      string `json:"email" binding:"required,email" example:"anna@example.com"`
	Password   string `json:"password" binding:"required" example:"securepass123"`
	Role       string `json:"role" binding:"required,oneof=client worker" example:"client"`
	ProfilePic string `json:"profilePic,omitempty" example:"https://img.example.com/anna.png"`
}

// LoginRequest represents authentication login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"anna@example.com"`
	Password string `json:"password" binding:"required" example:"securepass123"`
}

// UpdateAccountRequest is a partial account update; empty fields are left unchanged
type UpdateAccountRequest struct {
	Username        *string `json:"username,omitempty" binding:"omitempty,min=3,max=50"`
	Email           *string `json:"email,omitempty" binding:"omitempty,email"`
	ProfilePic      *string `json:"profilePic,omitempty"`
	Password        string  `json:"password,omitempty"`
	CurrentPassword string  `json:"current_password,omitempty"`
}

// ProfileRequest carries both profile kinds; the caller's role decides which fields apply
type ProfileRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Phone           string `json:"phone"`
	City            string `json:"city"`
	Description     string `json:"description"`
	Specialties     string `json:"specialties"`
	ExperienceYears int    `json:"experience_years" binding:"min=0,max=80"`
}

// StoreRequest represents store creation and update
type StoreRequest struct {
	Name        string  `json:"name" binding:"required,max=100" example:"Barber & Blade"`
	Description string  `json:"description"`
	Address     string  `json:"address" example:"Andrássy út 1."`
	City        string  `json:"city" example:"Budapest"`
	Phone       string  `json:"phone" example:"+36 1 234 5678"`
	Email       string  `json:"email" binding:"omitempty,email"`
	Latitude    float64 `json:"latitude" example:"47.4979"`
	Longitude   float64 `json:"longitude" example:"19.0402"`
}

// StorePictureRequest adds a picture URL to a store
type StorePictureRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// AddWorkerRequest connects a worker to a store by e-mail
type AddWorkerRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AvailabilityRequest opens an availability window
type AvailabilityRequest struct {
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// BookingRequest represents an appointment booking
type BookingRequest struct {
	WorkerID        int64     `json:"worker_id" binding:"required,min=1"`
	StartTime       time.Time `json:"start_time" binding:"required"`
	DurationMinutes int       `json:"duration_minutes" binding:"min=0"`
	ServiceName     string    `json:"service_name" binding:"max=100"`
	Note            string    `json:"note" binding:"max=500"`
}

// ChatRoomRequest opens a conversation with another user
type ChatRoomRequest struct {
	UserID int64 `json:"user_id" binding:"required,min=1"`
}

// MessageRequest posts a chat message
type MessageRequest struct {
	Content string `json:"content" binding:"required"`
}
