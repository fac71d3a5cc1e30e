package main

import (
	"fmt"
	"time"
)

func parseTTL(s string) (time.Duration, error) {
	ttl, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid ttl %q: %w", s, err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("invalid ttl %q: must be positive", s)
	}
	return ttl, nil
}
