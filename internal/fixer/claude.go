package fixer

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const advisorSystem = `You are the remediation advisor for a small homelab
running containerized services. Given a service issue, reply with a short
diagnosis and at most three concrete shell-level steps an operator could
take. Be terse. If the issue looks like it needs a human, say so.`

// Advisor asks Claude for remediation advice when no runbook covers an
// issue or the runbook failed.
type Advisor struct {
	client anthropic.Client
	model  anthropic.Model
}

func NewAdvisor(apiKey, model string) *Advisor {
	return &Advisor{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

// Advise returns a short remediation suggestion for the issue.
func (a *Advisor) Advise(ctx context.Context, issue Issue) (string, error) {
	prompt := fmt.Sprintf("Service: %s\nCondition: %s\nDetail: %s",
		issue.Service, issue.Condition, issue.Detail)
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: advisorSystem},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("advisor request: %w", err)
	}
	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("advisor returned no text")
	}
	return out.String(), nil
}
