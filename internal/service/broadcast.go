package service

// Broadcaster pushes live game events (turn changes, commands, chat) to
// whoever is watching. The WebSocket hub implements it in production;
// headless tools and tests plug in NoopBroadcaster.
type Broadcaster interface {
	BroadcastGameEvent(gameID string, eventType string, data any)
}

// NoopBroadcaster swallows events.
type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastGameEvent(string, string, any) {}
