package config

// ServerConfig configures the read-only status endpoint. An empty Address
// disables it.
type ServerConfig struct {
	Address string `json:"address"`
}

// Enabled reports whether the status server should be started.
func (c ServerConfig) Enabled() bool { return c.Address != "" }
