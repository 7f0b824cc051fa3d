package handler

// BroadcastGameEvent adapts the hub to service.Broadcaster. The service
// layer stays ignorant of the WebSocket envelope; it hands over an event
// name and a payload and the hub wraps them for the wire.
func (h *Hub) BroadcastGameEvent(gameID string, eventType string, data any) {
	h.BroadcastToGame(gameID, WSEvent{
		Type:   eventType,
		GameID: gameID,
		Data:   data,
	})
}
