// Package llm provides the streaming chat-model capability the engine
// consumes, implemented over langchaingo.
package llm

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/tavernworks/innkeep/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Role identifies the author of a chat message on the wire.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the message list sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Options are the sampling parameters for one model call.
type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// ChatModel is the abstract streaming chat capability. Implementations
// must support repeated invocation (retries, quest generation) and must
// eventually terminate every stream. Failure is reported through the
// stream's Err, or through the returned error for failures to start at all.
type ChatModel interface {
	Chat(ctx context.Context, messages []Message, opts Options) (*Stream, error)
}

// Model wraps a langchaingo LLM as a ChatModel.
type Model struct {
	llm       llms.Model
	modelName string
}

var _ ChatModel = (*Model)(nil)

// NewModel creates a chat model based on configuration.
func NewModel(cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key required")
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderBedrock:
		var loadOpts []func(*awsconfig.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.AWSRegion))
		}
		awsCfg, awsErr := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
		if awsErr != nil {
			return nil, fmt.Errorf("load aws config: %w", awsErr)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithClient(client),
			bedrock.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
	}, nil
}

// Model returns the configured model name.
func (m *Model) Model() string {
	return m.modelName
}

// Chat starts a streaming completion. The returned error covers failures
// to start the call; mid-stream failures surface through Stream.Err after
// the stream is drained.
func (m *Model) Chat(ctx context.Context, messages []Message, opts Options) (*Stream, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(chatMessageType(msg.Role), msg.Content))
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(opts.Temperature),
		llms.WithTopP(opts.TopP),
	}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(opts.MaxTokens))
	}

	stream, producer := NewStream()
	var streamed bool
	callOpts = append(callOpts, llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		streamed = true
		producer.Send(string(chunk))
		return nil
	}))

	go func() {
		resp, err := m.llm.GenerateContent(ctx, content, callOpts...)
		// Providers without streaming support deliver the full response
		// in one piece.
		if err == nil && !streamed && resp != nil && len(resp.Choices) > 0 {
			producer.Send(resp.Choices[0].Content)
		}
		producer.CloseSend(wrapFatalError(err))
	}()

	return stream, nil
}

func chatMessageType(role Role) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
