package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

type Config struct {
	User     string `toml:"user"`
	Password string `toml:"-"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	DBName   string `toml:"dbName"`
	SSLMode  string `toml:"sslMode"`
}

// ConString returns the connection URL with user and password escaped.
func (c *Config) ConString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   c.DBName,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

func (c Config) String() string {
	c.Password = strings.Repeat("*", len([]rune(c.Password)))

	return fmt.Sprintf("%#v", c)
}

func (c *Config) IsValid() bool {
	if c.User == "" || c.Password == "" || c.Host == "" || c.Port == "" || c.DBName == "" {
		return false
	}
	return true
}
