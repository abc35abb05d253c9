package agent

import (
	"fmt"
	"strings"

	"agentone/internal/mcp"
)

// Variant is the closed set of agent variants.
type Variant string

const (
	VariantStrategist  Variant = "strategist"
	VariantResearcher  Variant = "researcher"
	VariantDataAnalyst Variant = "data_analyst"
	VariantWriter      Variant = "writer"
)

// Variants lists every known variant in catalog order.
var Variants = []Variant{VariantStrategist, VariantResearcher, VariantDataAnalyst, VariantWriter}

// Policy is the variant-specific part of an agent: naming, a prompt-shaping
// template, and the default domains it may query. Policies hold no mutable
// state; all state lives in the Runtime they are composed with.
type Policy struct {
	Variant      Variant
	Name         string
	Role         string
	Capabilities []string
	SystemPrompt string

	// Preamble is prepended before the user prompt, Postscript appended
	// after the retrieved context.
	Preamble   string
	Postscript string

	DefaultConfig Config
}

// Compose merges the user prompt with retrieved context, highest-priority
// context first, into the final model prompt.
func (p Policy) Compose(prompt string, contexts []mcp.Context) string {
	var b strings.Builder

	if p.Preamble != "" {
		b.WriteString(p.Preamble)
		b.WriteString("\n\n")
	}
	b.WriteString(prompt)

	if len(contexts) > 0 {
		b.WriteString("\n\nRetrieved context (most relevant source first):\n")
		for i, c := range contexts {
			b.WriteString(fmt.Sprintf("\n[%d] %s", i+1, c.Source))
			if c.Title != "" {
				b.WriteString(" — " + c.Title)
			}
			b.WriteString("\n")
			b.WriteString(c.Text)
			b.WriteString("\n")
		}
	}

	if p.Postscript != "" {
		b.WriteString("\n")
		b.WriteString(p.Postscript)
	}
	return b.String()
}

// PolicyFor returns the built-in policy for a variant.
func PolicyFor(variant Variant) (Policy, error) {
	policy, ok := builtinPolicies[variant]
	if !ok {
		return Policy{}, fmt.Errorf("unknown agent variant %q", variant)
	}
	return policy, nil
}

var builtinPolicies = map[Variant]Policy{
	VariantStrategist: {
		Variant: VariantStrategist,
		Name:    "Strategist",
		Role:    "Data-informed advisor for senior leadership",
		Capabilities: []string{
			"KPI analysis",
			"Strategic planning",
			"Performance evaluation",
			"Policy recommendations",
		},
		SystemPrompt: "You are a strategy advisor. Provide clear, actionable insights " +
			"focused on improving service delivery and operational efficiency. " +
			"Ground recommendations in the supplied context when it is relevant.",
		Preamble: "Frame your answer strategically: lead with the decision at stake, " +
			"then the options and their trade-offs.",
		DefaultConfig: Config{
			MemoryLimitMB:  512,
			MaxRequestRate: 60,
			ContextSize:    4000,
			SecurityLevel:  "high",
			AllowedDomains: []string{"wikipedia"},
		},
	},
	VariantResearcher: {
		Variant: VariantResearcher,
		Name:    "Researcher",
		Role:    "Conducts deep research and analysis for strategic initiatives",
		Capabilities: []string{
			"Web research",
			"Document analysis",
			"Source synthesis",
			"Best practices research",
		},
		SystemPrompt: "You are a research assistant. Synthesize the supplied sources " +
			"into an accurate, well-organized answer. Do not invent facts that the " +
			"sources do not support.",
		Postscript: "Cite the sources you drew on by name.",
		DefaultConfig: Config{
			MemoryLimitMB:  1024,
			MaxRequestRate: 120,
			ContextSize:    8000,
			SecurityLevel:  "standard",
			AllowedDomains: []string{"wikipedia", "arxiv"},
		},
	},
	VariantDataAnalyst: {
		Variant: VariantDataAnalyst,
		Name:    "Data Analyst",
		Role:    "Analyzes quantitative evidence and published results",
		Capabilities: []string{
			"Quantitative analysis",
			"Literature review",
			"Trend identification",
		},
		SystemPrompt: "You are a data analyst. Reason carefully about numbers, " +
			"methods, and uncertainty. Prefer evidence from the supplied context and " +
			"flag where the data is insufficient.",
		Preamble: "Answer analytically: state the evidence first, then the conclusion.",
		DefaultConfig: Config{
			MemoryLimitMB:  2048,
			MaxRequestRate: 180,
			ContextSize:    16000,
			SecurityLevel:  "high",
			AllowedDomains: []string{"arxiv", "wikipedia"},
		},
	},
	VariantWriter: {
		Variant: VariantWriter,
		Name:    "Writer",
		Role:    "Produces clear prose from prompts and reference material",
		Capabilities: []string{
			"Drafting",
			"Editing",
			"Summarization",
		},
		SystemPrompt: "You are a professional writer. Produce clear, well-structured " +
			"prose in a neutral register, using the supplied context for facts.",
		DefaultConfig: Config{
			MemoryLimitMB:  512,
			MaxRequestRate: 60,
			ContextSize:    4000,
			SecurityLevel:  "standard",
			AllowedDomains: []string{"wikipedia"},
		},
	},
}
