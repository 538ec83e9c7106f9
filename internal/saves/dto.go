package saves

import "time"

// SaveResponse is the outward-facing representation of a save record.
type SaveResponse struct {
	SaveID     string    `json:"saveId"`
	ProfileID  string    `json:"profileId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func toResponse(s Save) SaveResponse {
	return SaveResponse{
		SaveID:     s.ID,
		ProfileID:  s.ProfileID,
		FileName:   s.FileName,
		MimeType:   s.MimeType,
		SizeBytes:  s.SizeBytes,
		UploadedAt: s.CreatedAt,
	}
}
