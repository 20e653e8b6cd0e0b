package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const systemPrompt = `You are a neutral mediator helping two people settle a dispute.
Read the conversation and propose exactly 3 distinct resolutions.
Respond with JSON only, no prose, in this shape:
{"resolutions":[{"title":"...","description":"...","confidence":0,"recommended":false}]}
"confidence" is an integer from 0 to 100 saying how likely both people are to accept it.
Mark exactly one resolution, the one with the highest confidence, as "recommended": true.`

// OpenAI implements Generator and Transcriber against any endpoint speaking
// the OpenAI chat completions and audio transcription wire format.
type OpenAI struct {
	httpClient      *http.Client
	baseURL         string
	apiKey          string
	model           string
	transcribeModel string
}

// NewOpenAI creates a client for baseURL (for example https://api.openai.com).
func NewOpenAI(httpClient *http.Client, baseURL, apiKey, model, transcribeModel string) *OpenAI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{
		httpClient:      httpClient,
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		model:           model,
		transcribeModel: transcribeModel,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends the conversation and parses the model's batch.
func (o *OpenAI) Generate(ctx context.Context, utterances []string, temperature float64) ([]Candidate, error) {
	wireRequest := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Conversation:\n" + strings.Join(utterances, "\n")},
		},
		Temperature:    temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	body, err := json.Marshal(wireRequest)
	if err != nil {
		return nil, fmt.Errorf("ai: marshaling request: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ai: creating request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")

	var wireResponse chatResponse
	if err := o.do(httpRequest, &wireResponse); err != nil {
		return nil, err
	}
	if len(wireResponse.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrMalformedResponse)
	}
	return ParseCandidates(wireResponse.Choices[0].Message.Content)
}

// Transcribe uploads audio as multipart form data and returns the text.
func (o *OpenAI) Transcribe(ctx context.Context, filename string, audio []byte) (string, error) {
	var form bytes.Buffer
	writer := multipart.NewWriter(&form)
	if err := writer.WriteField("model", o.transcribeModel); err != nil {
		return "", fmt.Errorf("ai: writing form: %w", err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("ai: writing form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("ai: writing form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("ai: writing form: %w", err)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/v1/audio/transcriptions", &form)
	if err != nil {
		return "", fmt.Errorf("ai: creating request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", writer.FormDataContentType())

	var wireResponse struct {
		Text string `json:"text"`
	}
	if err := o.do(httpRequest, &wireResponse); err != nil {
		return "", err
	}
	return strings.TrimSpace(wireResponse.Text), nil
}

func (o *OpenAI) do(httpRequest *http.Request, out any) error {
	if o.apiKey != "" {
		httpRequest.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	httpResponse, err := o.httpClient.Do(httpRequest)
	if err != nil {
		return fmt.Errorf("ai: sending request: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return readProviderError(httpResponse)
	}
	if err := json.NewDecoder(httpResponse.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrMalformedResponse, err)
	}
	return nil
}

// readProviderError parses {"error":{"type":"...","message":"..."}} bodies,
// falling back to the raw text.
func readProviderError(httpResponse *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(httpResponse.Body, 4096))

	var wireError struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &wireError) == nil && wireError.Error.Message != "" {
		return &ProviderError{
			StatusCode: httpResponse.StatusCode,
			Type:       wireError.Error.Type,
			Message:    wireError.Error.Message,
		}
	}
	return &ProviderError{StatusCode: httpResponse.StatusCode, Message: string(body)}
}
