package httpservice

import (
	"fmt"
	"net"
	"net/url"
)

type Config struct {
	Port        uint32
	CorsOrigins []string
}

func (c Config) Validate() error {
	lis, err := net.Listen("tcp", c.address())
	if err != nil {
		return fmt.Errorf("invalid port: %s", err)
	}
	// nolint:all
	lis.Close()

	for _, origin := range c.CorsOrigins {
		if origin == "*" {
			continue
		}
		if _, err := url.ParseRequestURI(origin); err != nil {
			return fmt.Errorf("invalid cors origin %s: %s", origin, err)
		}
	}
	return nil
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c Config) allowedOrigins() []string {
	if len(c.CorsOrigins) <= 0 {
		return []string{"*"}
	}
	return c.CorsOrigins
}
