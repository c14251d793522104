// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService is the service name under which arena stores secrets
// in the OS keyring (macOS Keychain, Linux Secret Service, Windows
// Credential Manager).
const KeyringService = "arena"

// ErrMissingAPIKey is returned when no API key can be resolved for a
// provider that requires one.
var ErrMissingAPIKey = errors.New("no API key configured")

// providerKey names where a provider's API key lives outside the
// config file: the keyring entry and the environment variable.
type providerKey struct {
	KeyringKey string
	EnvVar     string
}

var providerKeys = map[string]providerKey{
	"anthropic": {KeyringKey: "anthropic_api_key", EnvVar: "ANTHROPIC_API_KEY"},
	"deepseek":  {KeyringKey: "deepseek_api_key", EnvVar: "DEEPSEEK_API_KEY"},
	"gemini":    {KeyringKey: "gemini_api_key", EnvVar: "GEMINI_API_KEY"},
	"openai":    {KeyringKey: "openai_api_key", EnvVar: "OPENAI_API_KEY"},
}

// KeyedProviders returns the providers that authenticate with an API
// key, sorted. Bedrock uses the AWS credential chain and mock needs no
// credentials, so neither appears here.
func KeyedProviders() []string {
	names := make([]string, 0, len(providerKeys))
	for name := range providerKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveAPIKey resolves the API key for a provider. An explicit value
// (from a flag or config file) wins, then the provider's environment
// variable, then the OS keyring. Providers that do not authenticate
// with an API key resolve to empty with no error.
func ResolveAPIKey(provider, explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	name := NormalizeProvider(provider)
	pk, ok := providerKeys[name]
	if !ok {
		// bedrock and mock have no key to resolve.
		return "", nil
	}

	if key := os.Getenv(pk.EnvVar); key != "" {
		return key, nil
	}

	if key, err := keyring.Get(KeyringService, pk.KeyringKey); err == nil && key != "" {
		return key, nil
	}

	return "", fmt.Errorf("%w for provider %q: set %s or run 'arena keys set %s'",
		ErrMissingAPIKey, name, pk.EnvVar, name)
}

// SaveAPIKey stores a provider's API key in the OS keyring.
func SaveAPIKey(provider, key string) error {
	pk, err := keyFor(provider)
	if err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("refusing to store an empty API key for provider %q", NormalizeProvider(provider))
	}
	if err := keyring.Set(KeyringService, pk.KeyringKey, key); err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}
	return nil
}

// DeleteAPIKey removes a provider's API key from the OS keyring.
func DeleteAPIKey(provider string) error {
	pk, err := keyFor(provider)
	if err != nil {
		return err
	}
	if err := keyring.Delete(KeyringService, pk.KeyringKey); err != nil {
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	return nil
}

// APIKeyFromKeyring reads a provider's API key from the OS keyring
// only, without consulting the environment. Used by 'arena keys get'
// to show what is actually stored.
func APIKeyFromKeyring(provider string) (string, error) {
	pk, err := keyFor(provider)
	if err != nil {
		return "", err
	}
	key, err := keyring.Get(KeyringService, pk.KeyringKey)
	if err != nil {
		return "", fmt.Errorf("no key stored for provider %q: %w", NormalizeProvider(provider), err)
	}
	return key, nil
}

func keyFor(provider string) (providerKey, error) {
	name := NormalizeProvider(provider)
	pk, ok := providerKeys[name]
	if !ok {
		return providerKey{}, fmt.Errorf("%w: %q (key storage supports: %s)",
			ErrUnknownProvider, provider, strings.Join(KeyedProviders(), ", "))
	}
	return pk, nil
}
