package mongo

import (
	"fmt"
	"net/url"

	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrConfParamMissing = fmt.Errorf("configuration parameter missing")

type Config struct {
	Host   string `toml:"host"`
	Port   string `toml:"port"`
	DBName string `toml:"dbName"`
	User   string `toml:"-"`
	Pass   string `toml:"-"`
}

func (c *Config) Validate() error {
	switch {
	case c.Host == "":
		return fmt.Errorf("%w: host", ErrConfParamMissing)
	case c.Port == "":
		return fmt.Errorf("%w: port", ErrConfParamMissing)
	case c.DBName == "":
		return fmt.Errorf("%w: dbName", ErrConfParamMissing)
	}
	return nil
}

func (c *Config) conString() string {
	if c.User != "" && c.Pass != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s/",
			url.QueryEscape(c.User), url.QueryEscape(c.Pass), c.Host, c.Port)
	}
	return fmt.Sprintf("mongodb://%s:%s/", c.Host, c.Port)
}

func (c *Config) Options() *options.ClientOptions {
	return options.Client().ApplyURI(c.conString())
}
