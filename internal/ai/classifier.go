package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// Classifier turns a rendered router prompt into raw classifier output.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// classification is the structured output the router model must produce.
type classification struct {
	ActionName string               `json:"action_name" jsonschema:"enum=get_my_personal_info,enum=check_my_document_status,enum=get_information_about_anyone,enum=get_applicant_count"`
	Parameters classificationParams `json:"parameters"`
}

type classificationParams struct {
	Field            string `json:"field" jsonschema:"description=Personal field for get_my_personal_info"`
	DocumentName     string `json:"document_name" jsonschema:"description=Document for check_my_document_status"`
	TargetIdentifier string `json:"target_identifier" jsonschema:"description=Name or email of the other person"`
	RequestDetails   string `json:"request_details" jsonschema:"description=Information wanted about the other person"`
}

// reflectSchema converts v into the map form the Responses API expects.
func reflectSchema(v any) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaJSON, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}
	// The Responses API rejects the draft marker and id on strict schemas.
	delete(schemaMap, "$schema")
	delete(schemaMap, "$id")
	return schemaMap, nil
}

// OpenAIClassifier classifies with a small model at temperature zero using a
// strict JSON schema.
type OpenAIClassifier struct {
	client *openai.Client
	model  string
	schema map[string]any
}

// NewOpenAIClassifier builds a classifier that calls model through client.
func NewOpenAIClassifier(client *openai.Client, model string) (*OpenAIClassifier, error) {
	schema, err := reflectSchema(classification{})
	if err != nil {
		return nil, err
	}
	return &OpenAIClassifier{client: client, model: model, schema: schema}, nil
}

func (c *OpenAIClassifier) Classify(ctx context.Context, prompt string) (string, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(c.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Temperature: openai.Float(0),
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "intent_classification",
					Strict:      param.NewOpt(true),
					Schema:      c.schema,
					Description: param.NewOpt("The single action to perform and its parameters"),
				},
			},
		},
	}

	resp, err := c.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return "", errors.New("empty response content")
	}
	return content, nil
}
