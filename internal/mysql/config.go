package mysql

import "fmt"

// Config identifies the server to diagnose and the administrative account
// used to query it.
type Config struct {
	Host     string
	Port     int
	Socket   string
	User     string
	Password string
}

// DSN renders the go-sql-driver connection string. A socket path takes
// precedence over host/port.
func (c Config) DSN() string {
	if c.Socket != "" {
		return fmt.Sprintf("%s:%s@unix(%s)/information_schema", c.User, c.Password, c.Socket)
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/information_schema", c.User, c.Password, c.Host, c.Port)
}

// Addr is the human-readable server address for error messages.
func (c Config) Addr() string {
	if c.Socket != "" {
		return c.Socket
	}
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
