package domain

// AidRequestRecord is the insert payload for the aid_requests table.
type AidRequestRecord struct {
	RequesterName       string `json:"requester_name"`
	LocationDescription string `json:"location_description"`
	AidNeeded           string `json:"aid_needed"`
	Status              string `json:"status"`
	CreatedAt           string `json:"created_at"`
	UpdatedAt           string `json:"updated_at"`
}

// SOSAlertRecord is the insert payload for the sos_alerts table.
type SOSAlertRecord struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Location      string `json:"location"`
	EmergencyType string `json:"emergency_type"`
	Message       string `json:"message"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// NewAidRequestRecord builds a pending aid request stamped with the current time.
func NewAidRequestRecord(in AidRequestInput) AidRequestRecord {
	now := Timestamp()
	return AidRequestRecord{
		RequesterName:       in.Name,
		LocationDescription: in.Location,
		AidNeeded:           in.AidNeeded,
		Status:              AidRequestStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// NewSOSAlertRecord builds an active SOS alert stamped with the current time.
func NewSOSAlertRecord(in SOSAlertInput) SOSAlertRecord {
	now := Timestamp()
	return SOSAlertRecord{
		Name:          in.Name,
		Phone:         in.Phone,
		Location:      in.Location,
		EmergencyType: string(in.EmergencyType),
		Message:       in.Message,
		Status:        SOSAlertStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
