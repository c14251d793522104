// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package types provides type aliases for the provider packages.
// The actual types are defined in github.com/teradata-labs/arena/pkg/types
// to break import cycles between pkg/agent and pkg/llm packages.
package types

import (
	"github.com/teradata-labs/arena/pkg/types"
)

// Type aliases so provider code can keep a short llmtypes import.
type Message = types.Message
type ChatOptions = types.ChatOptions
type Usage = types.Usage
type LLMResponse = types.LLMResponse
type LLMProvider = types.LLMProvider
type TokenCallback = types.TokenCallback
type StreamingLLMProvider = types.StreamingLLMProvider
