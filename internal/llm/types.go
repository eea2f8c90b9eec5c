// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llm

// =============================================================================
// RUNTIME WIRE TYPES
// =============================================================================

// GenerateRequest is the body for POST /api/generate.
// Raw is always true: the prompt is already rendered in the chat
// grammar and the runtime must not apply its own template.
type GenerateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Raw     bool             `json:"raw"`
	Stream  bool             `json:"stream"`
	Options *GenerateOptions `json:"options,omitempty"`
}

// GenerateOptions carries the sampling parameters understood by the
// runtime. Field names follow the runtime's option vocabulary.
type GenerateOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// GenerateResponse is the non-streaming response from /api/generate.
type GenerateResponse struct {
	Model           string `json:"model"`
	Response        string `json:"response"`
	Done            bool   `json:"done"`
	TotalDuration   int64  `json:"total_duration,omitempty"`
	EvalCount       int    `json:"eval_count,omitempty"`
	PromptEvalCount int    `json:"prompt_eval_count,omitempty"`
}

// ShowRequest is the body for POST /api/show.
type ShowRequest struct {
	Name string `json:"name"`
}

// ShowResponse is the (partially decoded) response from /api/show.
// Only the fields the gateway inspects are declared.
type ShowResponse struct {
	Modelfile  string `json:"modelfile,omitempty"`
	Parameters string `json:"parameters,omitempty"`
	Template   string `json:"template,omitempty"`
}

// runtimeError is the error envelope the runtime returns on non-200
// responses.
type runtimeError struct {
	Error string `json:"error"`
}
