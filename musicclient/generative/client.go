package generative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/artist-analytics/apperrors"
	"github.com/artist-analytics/datadog"
	"github.com/artist-analytics/logger"
	"github.com/artist-analytics/musicclient/clientcommon"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

const source = datadog.GenerativeProvider

const defaultTimeout = 30 * time.Second
const maxTokens = 400

type Config struct {
	ApiKey     string
	ApiUrl     string
	Model      string
	HttpClient *http.Client
}

// Facts are what is known about the artist, the model is asked not to go beyond them
type Facts struct {
	Name        string
	Genres      []string
	Country     string
	Gender      string
	ActiveBegin *string
	ActiveEnd   *string
}

type Client struct {
	config Config
}

func NewClient(config Config) *Client {
	if config.HttpClient == nil {
		config.HttpClient = clientcommon.NewHttpClient(defaultTimeout)
	}

	return &Client{config: config}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// GenerateBiography is best effort, any failure is an UpstreamError and the caller keeps no biography
func (c *Client) GenerateBiography(ctx context.Context, facts Facts) (string, error) {
	span, ctx := tracer.StartSpanFromContext(ctx, "generative.biography")
	defer span.Finish()
	defer clientcommon.SendRequestTiming(source, datadog.RequestTypeBiography, time.Now())

	payload, err := json.Marshal(completionRequest{
		Model: c.config.Model,
		Messages: []message{
			{Role: "system", Content: "You write short, neutral artist biographies for a music analytics product. Use only the facts given. Never invent awards, dates or collaborations."},
			{Role: "user", Content: BiographyPrompt(facts)},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	})

	if err != nil {
		return "", apperrors.Upstream(source, 0, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.ApiUrl, bytes.NewReader(payload))

	if err != nil {
		return "", apperrors.Upstream(source, 0, err)
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.config.ApiKey)

	var response completionResponse
	err = clientcommon.GetJson(ctx, c.config.HttpClient, source, request, &response)

	if err == nil && (len(response.Choices) == 0 || strings.TrimSpace(response.Choices[0].Message.Content) == "") {
		err = apperrors.Upstream(source, http.StatusOK, fmt.Errorf("empty completion"))
	}

	clientcommon.SendRequestMetric(source, datadog.RequestTypeBiography, err)

	if err != nil {
		span.Finish(tracer.WithError(err))
		logger.WithArtistSource(facts.Name, source).Warning("Failed to generate biography ", err)
		return "", err
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func BiographyPrompt(facts Facts) string {
	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Write a biography of about 80 words for the artist %s.", facts.Name))

	if len(facts.Genres) > 0 {
		builder.WriteString(fmt.Sprintf(" Genres: %s.", strings.Join(facts.Genres, ", ")))
	}

	if facts.Country != "" {
		builder.WriteString(fmt.Sprintf(" Country: %s.", facts.Country))
	}

	if facts.Gender != "" {
		builder.WriteString(fmt.Sprintf(" Gender: %s.", facts.Gender))
	}

	if facts.ActiveBegin != nil {
		builder.WriteString(fmt.Sprintf(" Active since %s.", *facts.ActiveBegin))
	}

	if facts.ActiveEnd != nil {
		builder.WriteString(fmt.Sprintf(" Active until %s.", *facts.ActiveEnd))
	}

	return builder.String()
}
