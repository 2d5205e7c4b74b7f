package database

import "time"

// Roles carried in the JWT and stored on users
const (
	RoleClient = "client"
	RoleWorker = "worker"
)

// Store membership roles
const (
	StoreRoleOwner  = "owner"
	StoreRoleWorker = "worker"
)

// Appointment statuses
const (
	AppointmentBooked    = "booked"
	AppointmentCancelled = "cancelled"
	AppointmentCompleted = "completed"
)

// Friendship statuses
const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
)

// User represents an account, either a client or a worker
type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"` // Never include in JSON
	Role         string     `db:"role" json:"role"`
	ProfilePic   string     `db:"profile_pic" json:"profile_pic"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ExtendedUser holds the client profile
type ExtendedUser struct {
	UserID    int64     `db:"user_id" json:"user_id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Phone     string    `db:"phone" json:"phone"`
	City      string    `db:"city" json:"city"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ExtendedHair holds the worker (hairdresser/barber) profile
type ExtendedHair struct {
	UserID          int64     `db:"user_id" json:"user_id"`
	Description     string    `db:"description" json:"description"`
	Specialties     string    `db:"specialties" json:"specialties"`
	ExperienceYears int       `db:"experience_years" json:"experience_years"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Store represents a salon
type Store struct {
	ID          int64     `db:"id" json:"id"`
	OwnerID     int64     `db:"owner_id" json:"owner_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Address     string    `db:"address" json:"address"`
	City        string    `db:"city" json:"city"`
	Phone       string    `db:"phone" json:"phone"`
	Email       string    `db:"email" json:"email"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// StorePicture is a picture URL attached to a store
type StorePicture struct {
	ID        int64     `db:"id" json:"id"`
	StoreID   int64     `db:"store_id" json:"store_id"`
	URL       string    `db:"url" json:"url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StoreWorker links a worker to the store they work at
type StoreWorker struct {
	ID       int64     `db:"id" json:"id"`
	StoreID  int64     `db:"store_id" json:"store_id"`
	WorkerID int64     `db:"worker_id" json:"worker_id"`
	Role     string    `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

// WorkerSummary is a worker listed on a store page
type WorkerSummary struct {
	UserID          int64  `db:"user_id" json:"user_id"`
	Username        string `db:"username" json:"username"`
	ProfilePic      string `db:"profile_pic" json:"profile_pic"`
	StoreRole       string `db:"store_role" json:"store_role"`
	Description     string `db:"description" json:"description"`
	Specialties     string `db:"specialties" json:"specialties"`
	ExperienceYears int    `db:"experience_years" json:"experience_years"`
}

// Friendship represents a friend request or an accepted friendship
type Friendship struct {
	ID          int64     `db:"id" json:"id"`
	RequesterID int64     `db:"requester_id" json:"requester_id"`
	AddresseeID int64     `db:"addressee_id" json:"addressee_id"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ChatRoom is a 1:1 conversation; User1ID is always the smaller id
type ChatRoom struct {
	ID        string    `db:"id" json:"id"`
	User1ID   int64     `db:"user1_id" json:"user1_id"`
	User2ID   int64     `db:"user2_id" json:"user2_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// HasMember reports whether userID takes part in the room
func (r *ChatRoom) HasMember(userID int64) bool {
	return r.User1ID == userID || r.User2ID == userID
}

// Other returns the member that is not userID
func (r *ChatRoom) Other(userID int64) int64 {
	if r.User1ID == userID {
		return r.User2ID
	}
	return r.User1ID
}

// Message is a chat message
type Message struct {
	ID        int64     `db:"id" json:"id"`
	RoomID    string    `db:"room_id" json:"room_id"`
	SenderID  int64     `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AvailabilityTime is a window in which a worker accepts bookings
type AvailabilityTime struct {
	ID        int64     `db:"id" json:"id"`
	WorkerID  int64     `db:"worker_id" json:"worker_id"`
	StoreID   int64     `db:"store_id" json:"store_id"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Appointment is a booking of a worker by a client
type Appointment struct {
	ID          int64     `db:"id" json:"id"`
	ClientID    int64     `db:"client_id" json:"client_id"`
	WorkerID    int64     `db:"worker_id" json:"worker_id"`
	StoreID     int64     `db:"store_id" json:"store_id"`
	ServiceName string    `db:"service_name" json:"service_name"`
	Note        string    `db:"note" json:"note"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        int64     `db:"id" json:"id"`
	Action    string    `db:"action" json:"action"`
	UserID    string    `db:"user_id" json:"user_id"`
	Resource  string    `db:"resource" json:"resource"`
	Details   string    `db:"details" json:"details"`
	IPAddress string    `db:"ip_address" json:"ip_address"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
