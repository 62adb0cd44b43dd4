package v1

import (
	"time"

	mf_uuid "github.com/moneyfold/backend/internal/uuid"
)

type URIID struct {
	ID mf_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type URIMonth struct {
	Month time.Time `uri:"month" time_format:"2006-01" time_utc:"1" example:"2026-03" binding:"required"` // Year and month in YYYY-MM format
}

type QueryMonth struct {
	Month time.Time `form:"month" time_format:"2006-01" time_utc:"1" example:"2026-03"` // Year and month in YYYY-MM format
}
