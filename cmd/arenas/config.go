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
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	arenaconfig "github.com/teradata-labs/arena/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Arena Server configuration",
}

var configExampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Print a commented example arenas.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(arenaconfig.GenerateExampleConfig())
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the example configuration to the data directory",
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Display the configuration merged from file, environment, and keyring. Secrets are redacted.`,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configExampleCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := arenaconfig.GetArenaDataDir()
	configPath := filepath.Join(configDir, "arenas.yaml")

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config file already exists: %s\n", configPath)
		fmt.Print("Overwrite? (y/N): ")
		var response string
		_, _ = fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := os.WriteFile(configPath, []byte(arenaconfig.GenerateExampleConfig()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("✓ Config file created: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Save an API key:   arena keys set openai")
	fmt.Println("2. Start the server:  arenas serve")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := arenaconfig.LoadServerConfig(cfgFile)
	if err != nil {
		return err
	}

	redacted := *cfg
	redacted.LLM.OpenAIAPIKey = redactSecret(cfg.LLM.OpenAIAPIKey)
	redacted.LLM.DeepSeekAPIKey = redactSecret(cfg.LLM.DeepSeekAPIKey)
	redacted.LLM.GeminiAPIKey = redactSecret(cfg.LLM.GeminiAPIKey)
	redacted.LLM.AnthropicAPIKey = redactSecret(cfg.LLM.AnthropicAPIKey)
	redacted.LLM.BedrockSecretAccessKey = redactSecret(cfg.LLM.BedrockSecretAccessKey)
	redacted.LLM.BedrockSessionToken = redactSecret(cfg.LLM.BedrockSessionToken)

	out, err := yaml.Marshal(redacted)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func redactSecret(s string) string {
	if s == "" {
		return ""
	}
	return "[redacted]"
}
