package api

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/scriptroom/internal/agent"
	"github.com/ShayCichocki/scriptroom/pkg/models"
)

// Backend answers worker turns with a single Messages call. Tool-use
// blocks in the response become requested actions; they are never
// executed here.
type Backend struct {
	client *Client
}

// Compile-time verification that Backend implements agent.Backend.
var _ agent.Backend = (*Backend)(nil)

// NewBackend creates a reasoning backend on top of client.
func NewBackend(client *Client) *Backend {
	return &Backend{client: client}
}

// Infer implements agent.Backend.
func (b *Backend) Infer(ctx context.Context, req agent.Request) (agent.Reply, error) {
	params := anthropic.MessageNewParams{
		Model:     b.client.Model(),
		MaxTokens: b.client.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: buildMessages(req),
	}
	if tools := ToolDefinitions(req.Tools); len(tools) > 0 {
		params.Tools = tools
	}

	resp, err := b.client.inner.Messages.New(ctx, params)
	if err != nil {
		return agent.Reply{}, fmt.Errorf("API call failed: %w", err)
	}
	b.client.Tracker().Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	var (
		reply agent.Reply
		text  []string
	)
	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text = append(text, variant.Text)
		case anthropic.ToolUseBlock:
			reply.Actions = append(reply.Actions, models.Action{
				ID:    variant.ID,
				Name:  models.ActionName(variant.Name),
				Input: variant.Input,
			})
		}
	}
	reply.Text = strings.TrimSpace(strings.Join(text, "\n"))
	return reply, nil
}

// buildMessages turns the worker's memory plus the rendered prompt into an
// alternating user/assistant conversation that starts with a user turn.
// Consecutive turns of the same speaker are merged.
func buildMessages(req agent.Request) []anthropic.MessageParam {
	turns := make([]agent.Turn, 0, len(req.Memory)+1)
	for _, t := range req.Memory {
		if len(turns) == 0 && t.Speaker != agent.SpeakerInstruction {
			continue
		}
		turns = append(turns, t)
	}
	turns = append(turns, agent.Turn{Speaker: agent.SpeakerInstruction, Text: req.Prompt()})

	var messages []anthropic.MessageParam
	var blocks []anthropic.ContentBlockParamUnion
	current := turns[0].Speaker

	flush := func() {
		if current == agent.SpeakerWorker {
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
		blocks = nil
	}

	for _, t := range turns {
		if t.Speaker != current {
			flush()
			current = t.Speaker
		}
		blocks = append(blocks, anthropic.NewTextBlock(t.Text))
	}
	flush()
	return messages
}
