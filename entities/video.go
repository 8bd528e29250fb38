package entities

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"time"
	"youtube-learner/constant"
)

// TranscriptItem is one timed line of a generated transcript.
type TranscriptItem struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// Transcript is stored as a jsonb column.
type Transcript []TranscriptItem

func (t Transcript) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	return json.Marshal(t)
}

func (t *Transcript) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("transcript: unsupported scan type %T", value)
	}
	return json.Unmarshal(b, t)
}

// Insights is stored as a jsonb column.
type Insights []string

func (i Insights) Value() (driver.Value, error) {
	if i == nil {
		return nil, nil
	}
	return json.Marshal(i)
}

func (i *Insights) Scan(value interface{}) error {
	if value == nil {
		*i = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("insights: unsupported scan type %T", value)
	}
	return json.Unmarshal(b, i)
}

type VideoRecord struct {
	UserId     uuid.UUID            `json:"-" gorm:"type:uuid;primaryKey"`
	VideoId    string               `json:"id" gorm:"type:varchar(11);primaryKey"`
	Title      string               `json:"title" gorm:"type:varchar(500);not null"`
	Url        string               `json:"url" gorm:"type:text;not null"`
	Status     constant.VideoStatus `json:"status" gorm:"type:varchar(20);not null;default:'PENDING'"`
	Insights   Insights             `json:"insights,omitempty" gorm:"type:jsonb"`
	Transcript Transcript           `json:"transcript,omitempty" gorm:"type:jsonb"`
	CreatedAt  time.Time            `json:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time            `json:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

func (VideoRecord) TableName() string {
	return "video_records"
}

// Complete reports whether derived content has been persisted. Insights and
// transcript are written together, so either both are present or neither is.
func (v *VideoRecord) Complete() bool {
	return len(v.Insights) > 0 && len(v.Transcript) > 0
}
