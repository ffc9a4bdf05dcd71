package backend

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ledgerline/billparse/internal/model"
)

const openaiSystemPrompt = "You are a strict JSON extractor for utility bills. " +
	"Return only valid JSON (no extra commentary). " +
	"Numbers must be plain (no $ or commas). " +
	"Dates must be YYYY-MM-DD or null when unknown. " +
	"Include all requested keys even if the value is null."

const openaiUserPrompt = `Extract the following fields from the bill text. Return only valid JSON in this exact schema:

{
  "provider_name": string or null,
  "utility_type": "gas" | "water" | "electricity" | "trash" | "sewer" | "other" | null,
  "customer_name": string or null,
  "account_number": string or null,
  "service_address": string or null,
  "mailing_address": string or null,
  "invoice_id": string or null,
  "issue_id": string or null,
  "statement_issued": YYYY-MM-DD or null,
  "service_start": YYYY-MM-DD or null,
  "service_end": YYYY-MM-DD or null,
  "amount_due_by": YYYY-MM-DD or null,
  "due_date": YYYY-MM-DD or null,
  "amount_due_after": YYYY-MM-DD or null,
  "previous_balance": number or null,
  "payments": number or null,
  "balance_forward": number or null,
  "past_due_balance": number or null,
  "current_charges": number or null,
  "water_charges": number or null,
  "sewer_charges": number or null,
  "storm_water_charges": number or null,
  "environmental_fee": number or null,
  "trash_charges": number or null,
  "gas_charges": number or null,
  "electric_charges": number or null,
  "total_amount_due": number or null,
  "rate_plan": string or null,
  "service_days": number or null,
  "total_usage": number or null,
  "meters": [
    {
      "meter_number": string or null,
      "previous_read": string or null,
      "usage": number or null,
      "base_charge": number or null,
      "usage_charge": number or null,
      "total": number or null
    }
  ] or null
}

Rules:
- Dates as YYYY-MM-DD or null.
- Numbers must be plain (no $ or commas).
- If field not found, set it to null.
- 'utility_type' can be inferred from provider/charges (gas, water, electricity, trash, sewer, other).
- Include all keys even if null.`

// maxPromptTextLen bounds how much of the bill text goes into the
// prompt.
const maxPromptTextLen = 150000

// rawTextSampleLen is how much of the bill text is retained on the
// extraction record.
const rawTextSampleLen = 2000

// openaiConfidence is the base confidence reported by this backend.
// The model reads the document as a whole, so it starts higher than
// pattern extraction.
const openaiConfidence = 0.80

// OpenAIConfig configures the OpenAI backend. APIKey has no default
// and must be supplied by the caller.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Org     string
}

// OpenAI extracts bills by reading the PDF text locally and asking a
// chat model, in JSON mode, for the full field schema.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates the OpenAI backend. Returns a ConfigurationError
// when no API key is supplied.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigurationError{Backend: "openai", Missing: "api key"}
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if cfg.Org != "" {
		clientConfig.OrgID = cfg.Org
	}

	mdl := cfg.Model
	if mdl == "" {
		mdl = openai.GPT4oMini
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  mdl,
	}, nil
}

// Name returns the backend name
func (o *OpenAI) Name() string {
	return "openai"
}

// Extract reads the PDF text locally and asks the model for the field
// payload.
func (o *OpenAI) Extract(ctx context.Context, pdfBytes []byte) (*model.RawExtraction, error) {
	txt, err := pdfToText(pdfBytes)
	if err != nil {
		return nil, &ExtractionError{Backend: "openai", Reason: "read pdf text", Err: err}
	}

	promptText := txt
	if len(promptText) > maxPromptTextLen {
		promptText = promptText[:maxPromptTextLen]
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: openaiSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				Content: openaiUserPrompt +
					"\n\n=== BILL TEXT START ===\n" + promptText + "\n=== BILL TEXT END ===",
			},
		},
		Temperature:    0.0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return nil, &ExtractionError{Backend: "openai", Reason: "chat completion", Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &ExtractionError{Backend: "openai", Reason: "model returned no choices"}
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, &ExtractionError{Backend: "openai", Reason: "model returned empty content"}
	}

	raw, err := decodeModelPayload([]byte(content))
	if err != nil {
		return nil, &ExtractionError{Backend: "openai", Reason: "model did not return valid JSON", Err: err}
	}

	conf := openaiConfidence
	raw.Confidence = &conf
	raw.RawTextSample = sample(txt, rawTextSampleLen)
	return raw, nil
}

// modelPayload mirrors RawExtraction but keeps meters untyped, because
// models sometimes return a single meter object instead of a list.
type modelPayload struct {
	model.RawExtraction
	Meters json.RawMessage `json:"meters"`
}

func decodeModelPayload(content []byte) (*model.RawExtraction, error) {
	var p modelPayload
	if err := json.Unmarshal(content, &p); err != nil {
		return nil, err
	}

	raw := p.RawExtraction
	raw.Meters = decodeMeters(p.Meters)

	// Telecom provider hint: Comcast bills are "other", the model tends
	// to leave the type null.
	if raw.ProviderName != nil && raw.UtilityType == nil {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(*raw.ProviderName)), "comcast") {
			other := string(model.UtilityOther)
			raw.UtilityType = &other
		}
	}

	return &raw, nil
}

// decodeMeters accepts a list, a single object, or anything else
// (dropped).
func decodeMeters(data json.RawMessage) []model.RawMeter {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	var list []model.RawMeter
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return nil
		}
		return list
	}

	var single model.RawMeter
	if err := json.Unmarshal(data, &single); err == nil {
		return []model.RawMeter{single}
	}
	return nil
}

// sample returns the first n bytes of txt.
func sample(txt string, n int) string {
	if len(txt) <= n {
		return txt
	}
	return txt[:n]
}
