package domain

// Instruction is a safety instruction for a disaster type.
type Instruction struct {
	ID           RecordID `json:"id"`
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	DisasterType string   `json:"disaster_type"`
}

// KitItem is an entry of the emergency kit checklist.
type KitItem struct {
	ID          RecordID `json:"id"`
	ItemName    string   `json:"item_name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
}

// Shelter is an evacuation shelter shown on the map.
type Shelter struct {
	ID        RecordID `json:"id"`
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Capacity  *int     `json:"capacity"`
	IsOpen    bool     `json:"is_open"`
}

// Organization is a recovery organization. Only active ones are served.
type Organization struct {
	ID          RecordID `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Contact     string   `json:"contact"`
	Email       string   `json:"email"`
	Website     string   `json:"website"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	IsActive    bool     `json:"is_active"`
}

// AidRequest is a user-submitted request for relief assistance.
type AidRequest struct {
	ID                  RecordID `json:"id"`
	RequesterName       string   `json:"requester_name"`
	LocationDescription string   `json:"location_description"`
	AidNeeded           string   `json:"aid_needed"`
	Status              string   `json:"status"`
	CreatedAt           string   `json:"created_at"`
	UpdatedAt           string   `json:"updated_at"`
}

// SOSAlert is a user-submitted emergency distress signal.
type SOSAlert struct {
	ID            RecordID `json:"id"`
	Name          string   `json:"name"`
	Phone         string   `json:"phone"`
	Location      string   `json:"location"`
	EmergencyType string   `json:"emergency_type"`
	Message       string   `json:"message"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// Initial statuses set at insert time.
const (
	AidRequestStatusPending = "pending"
	SOSAlertStatusActive    = "active"
)

// Column lists selected for each table.
var (
	InstructionColumns  = []string{"id", "title", "content", "disaster_type"}
	KitItemColumns      = []string{"id", "item_name", "description", "category"}
	ShelterColumns      = []string{"id", "name", "latitude", "longitude", "capacity", "is_open"}
	OrganizationColumns = []string{
		"id", "name", "type", "description", "contact", "email",
		"website", "address", "latitude", "longitude", "is_active",
	}
	AidRequestColumns = []string{
		"id", "requester_name", "location_description", "aid_needed",
		"status", "created_at", "updated_at",
	}
	SOSAlertColumns = []string{
		"id", "name", "phone", "location", "emergency_type", "message",
		"status", "created_at", "updated_at",
	}
)
