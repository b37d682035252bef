package aichat

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptdeck/promptdeck/pkg/types"
)

type stubProvider struct {
	name    string
	provide bool
	section *ContextSection
	panics  bool
}

func (p *stubProvider) Name() string               { return p.name }
func (p *stubProvider) ShouldProvide(Request) bool { return p.provide }
func (p *stubProvider) BuildContext(Request) *ContextSection {
	if p.panics {
		panic("provider exploded")
	}
	return p.section
}

func TestContextBuilderOrdersByPriority(t *testing.T) {
	builder := NewContextBuilder(nil, []ContextProvider{
		&stubProvider{name: "low", provide: true, section: &ContextSection{Content: "low priority", Priority: 1}},
		&stubProvider{name: "high", provide: true, section: &ContextSection{Content: "high priority", Priority: 9}},
		&stubProvider{name: "mid", provide: true, section: &ContextSection{Content: "mid priority", Priority: 5}},
	})

	built := builder.BuildContext(Request{})
	assert.Equal(t, "high priority\n\nmid priority\n\nlow priority", built.UserContent)
	assert.Empty(t, built.SystemMessage)
}

func TestContextBuilderStableForEqualPriority(t *testing.T) {
	builder := NewContextBuilder(nil, []ContextProvider{
		&stubProvider{name: "a", provide: true, section: &ContextSection{Content: "first registered", Priority: 3}},
		&stubProvider{name: "b", provide: true, section: &ContextSection{Content: "second registered", Priority: 3}},
	})

	built := builder.BuildContext(Request{})
	assert.Equal(t, "first registered\n\nsecond registered", built.UserContent)
}

func TestContextBuilderIsolatesPanickingProvider(t *testing.T) {
	builder := NewContextBuilder(nil, []ContextProvider{
		&stubProvider{name: "bad", provide: true, panics: true},
		&stubProvider{name: "good", provide: true, section: &ContextSection{Content: "still here", Priority: 1}},
	})

	built := builder.BuildContext(Request{})
	assert.Equal(t, "still here", built.UserContent)
}

func TestContextBuilderSkipsDecliningProviders(t *testing.T) {
	builder := NewContextBuilder(nil, []ContextProvider{
		&stubProvider{name: "silent", provide: false, section: &ContextSection{Content: "never", Priority: 9}},
		&stubProvider{name: "empty", provide: true, section: nil},
	})

	built := builder.BuildContext(Request{})
	assert.Empty(t, built.UserContent)
}

func TestDefaultContextBuilderRendersWorkflowAboveLibrary(t *testing.T) {
	builder := NewDefaultContextBuilder()

	built := builder.BuildContext(Request{
		Workflow: testWorkflow(),
		AvailableMiniPrompts: []types.MiniPrompt{
			{ID: "mp-1", Name: "Spec writer", Description: "writes specs"},
		},
	})

	workflowAt := strings.Index(built.UserContent, "## Current Workflow")
	libraryAt := strings.Index(built.UserContent, "## Available Mini-Prompts")
	require.GreaterOrEqual(t, workflowAt, 0)
	require.GreaterOrEqual(t, libraryAt, 0)
	assert.Less(t, workflowAt, libraryAt)
}

func TestWorkflowProviderRendering(t *testing.T) {
	p := &WorkflowContextProvider{}

	assert.False(t, p.ShouldProvide(Request{}))

	section := p.BuildContext(Request{Workflow: testWorkflow()})
	require.NotNil(t, section)
	assert.Equal(t, workflowContextPriority, section.Priority)
	assert.Contains(t, section.Content, "Name: Release pipeline")
	assert.Contains(t, section.Content, "Multi-agent chat: enabled")
	assert.Contains(t, section.Content, "1. Draft (mini-prompts: Spec writer)")
	assert.Contains(t, section.Content, "2. Review")
}

func TestMiniPromptProviderCapsListing(t *testing.T) {
	p := &MiniPromptLibraryProvider{}

	var prompts []types.MiniPrompt
	for i := 0; i < miniPromptListCap+5; i++ {
		prompts = append(prompts, types.MiniPrompt{
			ID:   fmt.Sprintf("mp-%d", i),
			Name: fmt.Sprintf("Prompt %d", i),
		})
	}

	section := p.BuildContext(Request{AvailableMiniPrompts: prompts})
	require.NotNil(t, section)
	assert.Equal(t, miniPromptLibraryPriority, section.Priority)

	listed := strings.Count(section.Content, "- **")
	assert.Equal(t, miniPromptListCap, listed)
	assert.Contains(t, section.Content, "...and 5 more")

	// Under the cap there is no footer.
	section = p.BuildContext(Request{AvailableMiniPrompts: prompts[:3]})
	require.NotNil(t, section)
	assert.NotContains(t, section.Content, "more")
	assert.Contains(t, section.Content, "- **Prompt 0** (ID: mp-0)")
}
