package aichat

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/promptdeck/promptdeck/pkg/types"
)

const (
	workflowContextPriority   = 5
	miniPromptLibraryPriority = 4

	// miniPromptListCap bounds the rendered library listing so the prompt
	// cannot grow with the user's collection.
	miniPromptListCap = 20
)

// WorkflowContextProvider renders the workflow the conversation is editing:
// name, description, complexity, multi-agent flag and the ordered stage list
// with each stage's attached mini-prompts.
type WorkflowContextProvider struct{}

func (p *WorkflowContextProvider) Name() string {
	return "workflow_context"
}

func (p *WorkflowContextProvider) ShouldProvide(req Request) bool {
	return req.Workflow != nil
}

func (p *WorkflowContextProvider) BuildContext(req Request) *ContextSection {
	wf := req.Workflow
	if wf == nil {
		return nil
	}

	sb := strings.Builder{}
	sb.WriteString("## Current Workflow\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", wf.Name))
	if wf.Description != "" {
		sb.WriteString(fmt.Sprintf("Description: %s\n", wf.Description))
	}
	if wf.Complexity != "" {
		sb.WriteString(fmt.Sprintf("Complexity: %s\n", wf.Complexity))
	}
	sb.WriteString(fmt.Sprintf("Multi-agent chat: %s\n", lo.If(wf.MultiAgentChat, "enabled").Else("disabled")))

	if len(wf.Stages) > 0 {
		sb.WriteString("Stages:\n")
		for i, stage := range wf.Stages {
			names := lo.Map(stage.MiniPrompts, func(ref types.MiniPromptRef, _ int) string {
				return ref.Name
			})
			if len(names) > 0 {
				sb.WriteString(fmt.Sprintf("%d. %s (mini-prompts: %s)\n", i+1, stage.Name, strings.Join(names, ", ")))
			} else {
				sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, stage.Name))
			}
		}
	}

	return &ContextSection{
		Content:  strings.TrimRight(sb.String(), "\n"),
		Priority: workflowContextPriority,
	}
}

// MiniPromptLibraryProvider lists the mini-prompts the assistant may attach to
// workflow stages, capped at miniPromptListCap entries with a footer counting
// the remainder.
type MiniPromptLibraryProvider struct{}

func (p *MiniPromptLibraryProvider) Name() string {
	return "mini_prompt_library"
}

func (p *MiniPromptLibraryProvider) ShouldProvide(req Request) bool {
	return len(req.AvailableMiniPrompts) > 0
}

func (p *MiniPromptLibraryProvider) BuildContext(req Request) *ContextSection {
	prompts := req.AvailableMiniPrompts
	if len(prompts) == 0 {
		return nil
	}

	truncated := 0
	if len(prompts) > miniPromptListCap {
		truncated = len(prompts) - miniPromptListCap
		prompts = prompts[:miniPromptListCap]
	}

	sb := strings.Builder{}
	sb.WriteString("## Available Mini-Prompts\n")
	for _, mp := range prompts {
		if mp.Description != "" {
			sb.WriteString(fmt.Sprintf("- **%s** (ID: %s): %s\n", mp.Name, mp.ID, mp.Description))
		} else {
			sb.WriteString(fmt.Sprintf("- **%s** (ID: %s)\n", mp.Name, mp.ID))
		}
	}
	if truncated > 0 {
		sb.WriteString(fmt.Sprintf("...and %d more\n", truncated))
	}

	return &ContextSection{
		Content:  strings.TrimRight(sb.String(), "\n"),
		Priority: miniPromptLibraryPriority,
	}
}
