package entity

import "fmt"

// ConnectionStatus is the lifecycle state of a wallet connection.
type ConnectionStatus int

const (
	// StatusDisconnected means no wallet is attached to the session.
	StatusDisconnected ConnectionStatus = iota
	// StatusConnecting means an account request is in flight.
	StatusConnecting
	// StatusConnected means the session holds an address.
	StatusConnected
)

// String implements fmt.Stringer.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// MarshalText lets the status travel as a string in JSON and YAML.
func (s ConnectionStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the form written by MarshalText.
func (s *ConnectionStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "disconnected":
		*s = StatusDisconnected
	case "connecting":
		*s = StatusConnecting
	case "connected":
		*s = StatusConnected
	default:
		return fmt.Errorf("unknown connection status %q", text)
	}
	return nil
}

// ConnectionState is the wallet connection of one session.
// Address is non-empty if and only if Status is StatusConnected.
type ConnectionState struct {
	Status            ConnectionStatus `json:"status"`
	Address           string           `json:"address,omitempty"`
	ActiveConnectorID string           `json:"activeConnectorId,omitempty"`
}

// IsConnected reports whether the state holds an address.
func (c ConnectionState) IsConnected() bool {
	return c.Status == StatusConnected
}

// ConnectorInfo describes one connector offered by a wallet backend.
type ConnectorInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ready bool   `json:"ready"`
}

// Session is a read-only snapshot of a session's selection and connection.
type Session struct {
	ID         string            `json:"id"`
	Network    NetworkDescriptor `json:"network"`
	Connection ConnectionState   `json:"connection"`
}
