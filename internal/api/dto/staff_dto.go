package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// FlexString accepts a JSON string, number or null. Stall ids arrive as
// either depending on the client.
type FlexString struct {
	Value *string
}

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		f.Value = nil
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		f.Value = &s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	s := n.String()
	f.Value = &s
	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	if f.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*f.Value)
}

// Ptr returns the trimmed value, nil when absent or blank.
func (f FlexString) Ptr() *string {
	if f.Value == nil {
		return nil
	}
	v := strings.TrimSpace(*f.Value)
	if v == "" {
		return nil
	}
	return &v
}

// CreateStaffRequest payload for POST /staff.
type CreateStaffRequest struct {
	Email         string     `json:"email" validate:"required"`
	Password      string     `json:"password" validate:"required"`
	FullName      string     `json:"fullName" validate:"required"`
	ContactNumber *string    `json:"contactNumber,omitempty"`
	StallID       FlexString `json:"stallId"`
}

// CreateStaffResponse is returned after a successful create.
type CreateStaffResponse struct {
	UserID           string `json:"userId"`
	ConfirmationSent bool   `json:"confirmationSent"`
}

// ResendInviteRequest payload for POST /staff/resend-invite.
type ResendInviteRequest struct {
	Email   string `json:"email,omitempty"`
	StaffID string `json:"staffId,omitempty"`
}

// MessageResponse wraps a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthMetadataResponse is returned by GET /staff/:id/auth. Both fields are
// serialized as null when unset.
type AuthMetadataResponse struct {
	EmailConfirmedAt *time.Time `json:"emailConfirmedAt"`
	LastSignInAt     *time.Time `json:"lastSignInAt"`
}
