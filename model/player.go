package model

// PlayerSnapshot is the persisted playback state for one identity.
// It is written best-effort on every state change and used to resume
// playback across sessions.
type PlayerSnapshot struct {
	Song      *Song   `json:"song"`
	Position  float64 `json:"positionSeconds"`
	IsPlaying bool    `json:"isPlaying"`
}
