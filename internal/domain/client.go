package domain

import (
	"strings"
	"time"
)

// Sex selects the waist-hip ratio thresholds. Unspecified falls back to the
// male table.
type Sex string

const (
	SexUnspecified Sex = ""
	SexMale        Sex = "M"
	SexFemale      Sex = "F"
)

// ParseSex accepts the spellings used by the mobile and web clients.
func ParseSex(raw string) Sex {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "male", "masculino":
		return SexMale
	case "f", "female", "feminino":
		return SexFemale
	default:
		return SexUnspecified
	}
}

type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone"`
	BirthDate *string   `json:"birth_date"`
	Sex       Sex       `json:"sex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
