package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const systemPrompt = `You are an AI email assistant that helps users manage their emails effectively.
Your role is to analyze email threads, understand context, and generate appropriate responses.
You should maintain professionalism while being helpful and concise.`

// OpenAI implements Client against the OpenAI API.
type OpenAI struct {
	client     openai.Client
	chatModel  string
	embedModel string
}

// NewOpenAI builds a client for the given API key and models.
func NewOpenAI(apiKey, chatModel, embedModel string) *OpenAI {
	return &OpenAI{
		client:     openai.NewClient(option.WithAPIKey(apiKey)),
		chatModel:  chatModel,
		embedModel: embedModel,
	}
}

func (o *OpenAI) Chat(ctx context.Context, prompt string) (string, error) {
	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(o.chatModel),
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return completion.Choices[0].Message.Content, nil
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Model: openai.EmbeddingModel(o.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding: empty response")
	}
	return resp.Data[0].Embedding, nil
}
