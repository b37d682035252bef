package aichat

import "github.com/promptdeck/promptdeck/pkg/types"

const baseSystemPrompt = `You are an AI assistant helping users build and refine prompt workflows. Be precise and practical. When you change a workflow, describe exactly what you changed.`

const workflowModePrompt = `The user is editing a workflow: an ordered list of stages, each carrying attached mini-prompts. Use the provided workflow context and mini-prompt library when suggesting or applying changes. Refer to mini-prompts by name and ID.`

const miniPromptModePrompt = `The user is writing a reusable mini-prompt. Help them make it clear, focused and composable with other mini-prompts inside workflow stages.`

func modeSystemPrompt(mode types.ChatSessionMode) string {
	switch mode {
	case types.SESSION_MODE_MINI_PROMPT:
		return miniPromptModePrompt
	default:
		return workflowModePrompt
	}
}
