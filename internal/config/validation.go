package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 2*time.Hour {
		return fmt.Errorf("%s timeout too large (max 2 hours)", name)
	}
	return nil
}

// ValidateConcurrency validates the job concurrency cap. Zero means unlimited.
func ValidateConcurrency(concurrency int, name string) error {
	if concurrency < 0 {
		return fmt.Errorf("%s concurrency cannot be negative", name)
	}
	if concurrency > 100 {
		return fmt.Errorf("%s concurrency too high (max 100)", name)
	}
	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string, name string) error {
	if url == "" {
		return fmt.Errorf("%s URL is required", name)
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s URL must start with http:// or https://", name)
	}

	return nil
}

// ValidatePort validates port number
func ValidatePort(port string, name string) error {
	if port == "" {
		return fmt.Errorf("%s port is required", name)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("%s port invalid", name)
	}

	return nil
}

// ValidateRequired rejects an empty setting.
func ValidateRequired(value string, name string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
