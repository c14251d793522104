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
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/teradata-labs/arena/pkg/config"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage provider API keys in the system keyring",
	Long: heredoc.Doc(`
		Store provider API keys in your system's secure credential
		storage (Keychain on macOS, Credential Manager on Windows,
		Secret Service on Linux). Stored keys are picked up by every
		arena command and by the arenas server.

		Bedrock authenticates through the AWS credential chain and the
		mock provider needs no credentials; neither is managed here.
	`),
}

var keysSetCmd = &cobra.Command{
	Use:   "set [provider]",
	Short: "Save a provider's API key",
	Long: `Prompt for an API key and store it in the system keyring. The key is read without echo and never written to disk.`,
	Example: heredoc.Doc(`
		arena keys set openai
		arena keys set anthropic
	`),
	Args: cobra.ExactArgs(1),
	RunE: runKeysSet,
}

var keysGetCmd = &cobra.Command{
	Use:   "get [provider]",
	Short: "Show whether a provider's key is stored",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysGet,
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete [provider]",
	Short: "Remove a provider's API key from the keyring",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysDelete,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List providers that accept a stored API key",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(strings.Join(config.KeyedProviders(), "\n"))
	},
}

func init() {
	keysCmd.AddCommand(keysSetCmd)
	keysCmd.AddCommand(keysGetCmd)
	keysCmd.AddCommand(keysDeleteCmd)
	keysCmd.AddCommand(keysListCmd)
}

func runKeysSet(cmd *cobra.Command, args []string) error {
	provider := args[0]

	fmt.Printf("Enter API key for %s (input hidden): ", provider)
	keyBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	if err := config.SaveAPIKey(provider, strings.TrimSpace(string(keyBytes))); err != nil {
		return err
	}
	fmt.Printf("✓ Key for %s saved to keyring\n", provider)
	return nil
}

func runKeysGet(cmd *cobra.Command, args []string) error {
	provider := args[0]
	key, err := config.APIKeyFromKeyring(provider)
	if err != nil {
		return err
	}
	fmt.Printf("Key for %s is stored (%s)\n", provider, maskKey(key))
	return nil
}

func runKeysDelete(cmd *cobra.Command, args []string) error {
	provider := args[0]
	if err := config.DeleteAPIKey(provider); err != nil {
		return err
	}
	fmt.Printf("✓ Key for %s removed from keyring\n", provider)
	return nil
}

// maskKey keeps just enough of the key to recognise it.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", 4) + key[len(key)-4:]
}
