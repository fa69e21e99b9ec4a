package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// Client транспорт классификатора через OpenAI Responses API.
type Client struct {
	client *openai.Client
	model  string
}

// New: apiKey пустой: ключ берётся из OPENAI_API_KEY; baseURL пустой: официальный API.
func New(apiKey, baseURL, model string) *Client {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	c := openai.NewClient(opts...)
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	return &Client{client: &c, model: model}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						{
							OfInputText: &responses.ResponseInputTextParam{
								Text: prompt,
							},
						},
					},
					responses.EasyInputMessageRoleUser,
				),
			},
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.OutputText()), nil
}

// Ready проверяет, что ключ рабочий и модель доступна.
func (c *Client) Ready(ctx context.Context) error {
	m, err := c.client.Models.Get(ctx, c.model)
	if err != nil {
		return err
	}
	if m == nil || m.ID == "" {
		return errors.New("openai: empty model info")
	}
	return nil
}
