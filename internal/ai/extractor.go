package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"archecho/internal/config"
)

// Package ai implements the design-concept extraction collaborator on top
// of an OpenAI-compatible chat completion API.

// maxTextBytes caps how much of a text document is sent per request.
const maxTextBytes = 16000

const extractPrompt = `당신은 건축 설계 문서를 분석하는 전문가입니다. ` +
	`아래 문서에서 디자인 컨셉 태그를 추출하세요. ` +
	`각 태그는 "모던", "친환경"처럼 짧은 한국어 단어여야 합니다. ` +
	`JSON 문자열 배열만 출력하세요. 컨셉을 찾지 못하면 빈 배열을 출력하세요.`

// Extractor asks a chat model for short design-concept tags.
type Extractor struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewExtractor creates an extraction client. BaseURL may point at any
// OpenAI-compatible endpoint.
func NewExtractor(cfg config.OpenAIConfig, log *zap.Logger) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		log:    log,
	}
}

// Extract sends the document to the model and parses the returned tag list.
// Images travel as data URIs; everything else as (truncated) text.
func (e *Extractor) Extract(ctx context.Context, projectID, contentType string, data []byte) ([]string, error) {
	var parts []openai.ChatMessagePart
	if strings.HasPrefix(contentType, "image/") {
		uri := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
		parts = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: extractPrompt},
			{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: uri}},
		}
	} else {
		text := string(data)
		if len(text) > maxTextBytes {
			text = text[:maxTextBytes]
		}
		parts = []openai.ChatMessagePart{
			{Type: openai.ChatMessagePartTypeText, Text: extractPrompt + "\n\n" + text},
		}
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty completion response")
	}

	tags := parseTags(resp.Choices[0].Message.Content)
	e.log.Debug("concepts extracted",
		zap.String("project_id", projectID), zap.Strings("tags", tags))
	return tags, nil
}

// parseTags accepts a JSON string array, optionally fenced, and falls back
// to comma/newline splitting for models that ignore the format instruction.
func parseTags(content string) []string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var tags []string
	if err := json.Unmarshal([]byte(content), &tags); err == nil {
		return cleanTags(tags)
	}

	split := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	return cleanTags(split)
}

func cleanTags(tags []string) []string {
	out := []string{}
	for _, t := range tags {
		t = strings.Trim(strings.TrimSpace(t), `"`)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
