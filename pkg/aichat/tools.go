package aichat

import (
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/promptdeck/promptdeck/pkg/types"
)

// ToolLoader supplies the tool set applicable to a session mode. The set is
// static per mode; execution of the tools happens upstream.
type ToolLoader interface {
	ToolsForMode(mode types.ChatSessionMode) []openai.Tool
}

type StaticToolLoader struct{}

func (StaticToolLoader) ToolsForMode(mode types.ChatSessionMode) []openai.Tool {
	switch mode {
	case types.SESSION_MODE_MINI_PROMPT:
		return miniPromptTools
	default:
		return workflowTools
	}
}

var workflowTools = []openai.Tool{
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "update_workflow",
			Description: "Replace the workflow's name, description, complexity or stage list",
			Parameters: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"name":        {Type: jsonschema.String},
					"description": {Type: jsonschema.String},
					"complexity":  {Type: jsonschema.String, Enum: []string{"simple", "moderate", "complex"}},
					"stages": {
						Type: jsonschema.Array,
						Items: &jsonschema.Definition{
							Type: jsonschema.Object,
							Properties: map[string]jsonschema.Definition{
								"name":            {Type: jsonschema.String},
								"mini_prompt_ids": {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
							},
							Required: []string{"name"},
						},
					},
				},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "attach_mini_prompt",
			Description: "Attach an existing mini-prompt to a workflow stage",
			Parameters: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"stage_index":    {Type: jsonschema.Integer, Description: "1-based stage position"},
					"mini_prompt_id": {Type: jsonschema.String},
				},
				Required: []string{"stage_index", "mini_prompt_id"},
			},
		},
	},
}

var miniPromptTools = []openai.Tool{
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        "update_mini_prompt",
			Description: "Replace the mini-prompt's name, description or content",
			Parameters: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"name":        {Type: jsonschema.String},
					"description": {Type: jsonschema.String},
					"content":     {Type: jsonschema.String},
				},
			},
		},
	},
}
