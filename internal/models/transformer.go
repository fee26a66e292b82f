package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Transformer struct {
	ID                 uuid.UUID
	TransformerNo      string
	PoleNo             sql.NullString
	Region             sql.NullString
	Type               sql.NullString
	Capacity           sql.NullString
	LocationDetails    sql.NullString
	BaselineImagePath  sql.NullString
	BaselineUploadedAt sql.NullTime
	UploaderName       sql.NullString
	Starred            bool
	CreatedAt          time.Time
}
