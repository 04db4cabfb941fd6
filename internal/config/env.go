package config

import (
	"fmt"
	"os"
	"strings"
)

const API_KEY_ENV = "OPENAQ_API_KEY"

// APIKeyFromEnv reads the OpenAQ credential from the process environment.
// The environment read lives here, at the process boundary; the API client
// itself takes the credential as an explicit constructor argument.
func APIKeyFromEnv() (string, error) {
	key := strings.TrimSpace(os.Getenv(API_KEY_ENV))
	if key == "" {
		return "", fmt.Errorf("%s is not set", API_KEY_ENV)
	}
	return key, nil
}
