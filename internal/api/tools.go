package api

import (
	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/scriptroom/pkg/models"
)

type prop = map[string]interface{}

// toolSchemas holds the input schema of every action a worker may request.
var toolSchemas = map[models.ActionName]anthropic.ToolParam{
	models.ActionSearch: {
		Name:        string(models.ActionSearch),
		Description: anthropic.String("Search the web for facts about the topic. Results are posted to the team."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: prop{
				"query": prop{"type": "string", "description": "Search query"},
				"count": prop{"type": "integer", "description": "Number of results (optional, default 5)"},
			},
			Required: []string{"query"},
		},
	},
	models.ActionDelegate: {
		Name:        string(models.ActionDelegate),
		Description: anthropic.String("Send a message to another team member, to everyone (all) or to the human (user)."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: prop{
				"to":      prop{"type": "string", "description": "Recipient role, e.g. writer, critic, all or user"},
				"message": prop{"type": "string", "description": "The task or message"},
				"kind": prop{
					"type":        "string",
					"enum":        []string{"info", "question", "task", "result", "feedback", "approval"},
					"description": "Intent of the message (optional, default task)",
				},
			},
			Required: []string{"to", "message"},
		},
	},
	models.ActionMutateScript: {
		Name:        string(models.ActionMutateScript),
		Description: anthropic.String("Create, update or delete one named section of the script. Section text must be speakable narration only."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: prop{
				"section": prop{"type": "string", "description": "Section name, e.g. hook or body-1"},
				"content": prop{"type": "string", "description": "Full section text (omit for delete)"},
				"op":      prop{"type": "string", "enum": []string{"create", "update", "delete"}},
			},
			Required: []string{"section", "op"},
		},
	},
	models.ActionRequestHumanInput: {
		Name:        string(models.ActionRequestHumanInput),
		Description: anthropic.String("Ask the human a question and wait for the answer."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: prop{
				"question": prop{"type": "string", "description": "The question"},
				"options": prop{
					"type":        "array",
					"items":       prop{"type": "string"},
					"description": "Suggested answers (optional)",
				},
			},
			Required: []string{"question"},
		},
	},
	models.ActionFinalize: {
		Name:        string(models.ActionFinalize),
		Description: anthropic.String("Submit the finished script. It is checked for length and purity before it is accepted."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: prop{
				"title":             prop{"type": "string"},
				"description":       prop{"type": "string"},
				"script":            prop{"type": "string", "description": "Full narration text (optional, defaults to the joined sections)"},
				"duration_estimate": prop{"type": "string", "description": "e.g. 1 minute"},
			},
			Required: []string{"title", "description"},
		},
	},
	models.ActionSynthesizeVoiceover: {
		Name:        string(models.ActionSynthesizeVoiceover),
		Description: anthropic.String("Record the voiceover from clean narration text. Bracketed directions are rejected."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: prop{
				"text":  prop{"type": "string", "description": "Narration text to speak"},
				"style": prop{"type": "string", "enum": []string{"default", "energetic", "calm", "documentary"}},
			},
			Required: []string{"text"},
		},
	},
}

// ToolDefinitions returns the tool schemas for the given actions, in the
// given order. Unknown names are skipped.
func ToolDefinitions(names []models.ActionName) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(names))
	for _, name := range names {
		schema, ok := toolSchemas[name]
		if !ok {
			continue
		}
		tool := schema
		tools = append(tools, anthropic.ToolUnionParam{OfTool: &tool})
	}
	return tools
}
