package live

// MessageType identifies a live-reload message
type MessageType string

const (
	// TypeHello is sent once when a client connects
	TypeHello MessageType = "HELLO"
	// TypeReload tells clients to refetch the graph
	TypeReload MessageType = "RELOAD"
	// TypePing is sent by clients to check the connection
	TypePing MessageType = "PING"
	// TypePong answers TypePing
	TypePong MessageType = "PONG"
)

// Message is one text frame on the live-reload socket
type Message struct {
	Type MessageType `json:"type"`
	// ID is the logical identifier of the reloaded graph
	ID string `json:"id,omitempty"`
	// Version increases with every change of the watched file
	Version uint64 `json:"version"`
}

// Path is where the dev server mounts the socket
const Path = "/graphscope/live"
