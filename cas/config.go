package cas

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvURL            = "CPK_CAS_URL"
	EnvNodeController = "CPK_NODE_CONTROLLER"
	EnvNodePrivateKey = "NODE_PRIVATE_KEY"
)

// Client Config

type ClientConfig struct {
	// Base URL of the anchor service, requests go to <URL>/api/v0/requests
	URL string `yaml:"url"`

	// DID the auth header is issued for, defaults to the did:key of
	// NodePrivateKey
	NodeController string `yaml:"node_controller"`

	// Hex encoded ed25519 seed, a random key is used when empty
	NodePrivateKey string `yaml:"node_private_key"`

	Timeout time.Duration `yaml:"timeout"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		URL:     "http://localhost:8081",
		Timeout: 30 * time.Second,
	}
}

// LoadClientConfig reads the YAML file at path over the defaults,
// a blank path skips the file, then applies env overrides
func LoadClientConfig(path string) (ClientConfig, error) {
	c := DefaultClientConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return ClientConfig{}, err
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return ClientConfig{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvURL); v != "" {
		c.URL = v
	}
	if v := os.Getenv(EnvNodeController); v != "" {
		c.NodeController = v
	}
	if v := os.Getenv(EnvNodePrivateKey); v != "" {
		c.NodePrivateKey = v
	}

	return c, nil
}
