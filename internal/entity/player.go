package entity

type Player struct {
	ID     string `json:"id"`
	RoomID string `json:"room_id,omitempty"`
	Symbol string `json:"symbol,omitempty"`
}
