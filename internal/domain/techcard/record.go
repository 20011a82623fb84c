package techcard

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Draft is a generated card held between generation and export.
type Draft struct {
	ID        uuid.UUID `json:"id"`
	Card      Data      `json:"card"`
	CreatedAt time.Time `json:"createdAt"`
}

// Record is the persisted form of a saved card, used by the SQL backend.
type Record struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name                 string         `gorm:"column:name;type:text;not null" json:"name"`
	WeldConnectionNumber string         `gorm:"column:weld_connection_number;type:text;not null;index" json:"weld_connection_number"`
	ControlMethod        string         `gorm:"column:control_method;type:text;not null" json:"control_method"`
	Payload              datatypes.JSON `gorm:"column:payload;not null" json:"payload"`
	CreatedAt            time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Record) TableName() string { return "tech_cards" }
