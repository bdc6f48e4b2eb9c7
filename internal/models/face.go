package models

import (
	"encoding/json"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/vocalmail/voicestack/internal/utils"
)

// FaceEncoding is the fixed-length descriptor a face engine computes for one
// detected face. Identity comparison is Euclidean distance against a fixed
// tolerance.
type FaceEncoding []float64

// DistanceTo returns the Euclidean distance between two encodings.
// Encodings of different lengths never match.
func (e FaceEncoding) DistanceTo(other FaceEncoding) float64 {
	if len(e) != len(other) || len(e) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range e {
		d := e[i] - other[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Matches reports whether the two encodings are within tolerance of each
// other. The same tolerance must be used for registration and
// authentication, otherwise the one-face-one-identity invariant breaks.
func (e FaceEncoding) Matches(other FaceEncoding, tolerance float64) bool {
	return e.DistanceTo(other) <= tolerance
}

// FaceProfile is the Postgres row shape for the gorm-backed face registry.
// The encoding is stored as a JSON array.
type FaceProfile struct {
	ID        string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(255);uniqueIndex;not null" json:"username"`
	Encoding  string    `gorm:"column:encoding;type:text;not null" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
}

func (FaceProfile) TableName() string {
	return "face_profiles"
}

func (p *FaceProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = utils.GenerateNanoIDWithPrefix("face", 16)
	}
	return nil
}

// SetEncoding serializes the descriptor into the row.
func (p *FaceProfile) SetEncoding(encoding FaceEncoding) error {
	raw, err := json.Marshal(encoding)
	if err != nil {
		return err
	}
	p.Encoding = string(raw)
	return nil
}

// GetEncoding deserializes the descriptor from the row.
func (p *FaceProfile) GetEncoding() (FaceEncoding, error) {
	var encoding FaceEncoding
	if err := json.Unmarshal([]byte(p.Encoding), &encoding); err != nil {
		return nil, err
	}
	return encoding, nil
}
