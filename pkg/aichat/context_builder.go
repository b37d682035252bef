package aichat

import (
	"log/slog"
	"sort"
	"strings"
)

// ContextSection is a prompt fragment contributed by one provider. Higher
// priority sections are rendered first.
type ContextSection struct {
	Content  string
	Priority int
}

// ContextProvider is a strategy contributing an optional section of prompt
// text. ShouldProvide must be a cheap, side-effect-free predicate; the
// possibly expensive rendering happens in BuildContext, which may still
// return nil when filtering leaves nothing to say.
type ContextProvider interface {
	Name() string
	ShouldProvide(req Request) bool
	BuildContext(req Request) *ContextSection
}

type BuiltContext struct {
	SystemMessage string
	UserContent   string
}

// ContextBuilder merges provider sections into a system-message channel and a
// user-content channel. A failing provider is isolated: it loses its section,
// the others still contribute.
type ContextBuilder struct {
	systemProviders []ContextProvider
	userProviders   []ContextProvider
}

func NewContextBuilder(systemProviders, userProviders []ContextProvider) *ContextBuilder {
	return &ContextBuilder{
		systemProviders: systemProviders,
		userProviders:   userProviders,
	}
}

// NewDefaultContextBuilder wires the standard providers into the user-content
// channel. The system channel is intentionally empty for now; the split
// exists so future providers can target either.
func NewDefaultContextBuilder() *ContextBuilder {
	return NewContextBuilder(nil, []ContextProvider{
		&WorkflowContextProvider{},
		&MiniPromptLibraryProvider{},
	})
}

func (b *ContextBuilder) BuildContext(req Request) BuiltContext {
	return BuiltContext{
		SystemMessage: buildChannel(b.systemProviders, req),
		UserContent:   buildChannel(b.userProviders, req),
	}
}

func buildChannel(providers []ContextProvider, req Request) string {
	var sections []ContextSection
	for _, p := range providers {
		if section := collectSection(p, req); section != nil {
			sections = append(sections, *section)
		}
	}

	if len(sections) == 0 {
		return ""
	}

	// Stable: providers with equal priority keep registration order.
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Priority > sections[j].Priority
	})

	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n\n")
}

func collectSection(p ContextProvider, req Request) (section *ContextSection) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("context provider panicked, section dropped",
				slog.String("provider", p.Name()), slog.Any("recover", r))
			section = nil
		}
	}()

	if !p.ShouldProvide(req) {
		return nil
	}
	return p.BuildContext(req)
}
