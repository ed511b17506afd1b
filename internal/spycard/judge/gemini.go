package judge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"google.golang.org/genai"

	"github.com/park285/spycard-go/internal/common/messageprovider"
	"github.com/park285/spycard-go/internal/spycard/config"
	serrors "github.com/park285/spycard-go/internal/spycard/errors"
	"github.com/park285/spycard-go/internal/spycard/messages"
	"github.com/park285/spycard-go/internal/spycard/model"
)

// ErrMissingAPIKey: 판정 API 키가 설정되지 않았을 때의 에러
var ErrMissingAPIKey = errors.New("judge api key is not configured")

// GeminiAnalyzer: Gemini 구조화 JSON 응답으로 능력치 원점수를 받는 Analyzer
type GeminiAnalyzer struct {
	client      *genai.Client
	model       string
	temperature float32
	msgProvider *messageprovider.Provider
	logger      *slog.Logger
}

// NewGeminiAnalyzer: 새로운 GeminiAnalyzer 인스턴스를 생성합니다.
// httpClient 가 nil 이면 SDK 기본 클라이언트를 쓴다.
func NewGeminiAnalyzer(
	ctx context.Context,
	cfg config.JudgeConfig,
	httpClient *http.Client,
	msgProvider *messageprovider.Provider,
	logger *slog.Logger,
) (*GeminiAnalyzer, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			Timeout: genai.Ptr(timeout),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		modelName = config.DefaultJudgeModel
	}
	return &GeminiAnalyzer{
		client:      client,
		model:       modelName,
		temperature: float32(cfg.Temperature),
		msgProvider: msgProvider,
		logger:      logger,
	}, nil
}

// Analyze: 경기 데이터를 모델에 보내고 JSON 객체 응답을 그대로 돌려준다.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, req Request) (map[string]any, error) {
	start := time.Now()
	contents := []*genai.Content{
		genai.NewContentFromText(buildUserPrompt(a.msgProvider, req), genai.RoleUser),
	}
	response, err := a.client.Models.GenerateContent(ctx, a.model, contents, a.buildGenerateConfig())
	if err != nil {
		a.logger.Warn("judge_generate_failed",
			"mission_id", req.MissionID,
			"game_ref", req.GameRef,
			"model", a.model,
			"duration_ms", time.Since(start).Milliseconds(),
			"err", err,
		)
		return nil, serrors.UpstreamError{Operation: "judge_generate", Err: err}
	}

	parsed, err := parseResponse(response)
	if err != nil {
		a.logger.Warn("judge_response_invalid",
			"mission_id", req.MissionID,
			"game_ref", req.GameRef,
			"err", err,
		)
		return nil, serrors.UpstreamError{Operation: "judge_decode", Err: err}
	}

	a.logger.Debug("judge_analyzed",
		"mission_id", req.MissionID,
		"game_ref", req.GameRef,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return parsed, nil
}

func (a *GeminiAnalyzer) buildGenerateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(a.temperature),
		ResponseMIMEType:   "application/json",
		ResponseJsonSchema: responseSchema(),
	}
	if system := messageOrEmpty(a.msgProvider, messages.JudgeSystem); system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	return cfg
}

// responseSchema 여섯 능력치를 모두 필수로 하는 JSON 스키마.
func responseSchema() map[string]any {
	properties := make(map[string]any, len(model.Abilities))
	required := make([]string, 0, len(model.Abilities))
	for _, ability := range model.Abilities {
		properties[string(ability)] = map[string]any{
			"type":    "number",
			"minimum": MinScore,
			"maximum": MaxScore,
		}
		required = append(required, string(ability))
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func buildUserPrompt(msgProvider *messageprovider.Provider, req Request) string {
	missionContext := strings.TrimSpace(req.MissionContext)
	if missionContext == "" {
		missionContext = messageOrEmpty(msgProvider, messages.JudgeNoContext)
	}
	payload := strings.TrimSpace(string(req.Payload))

	prompt, ok := msgProvider.Lookup(messages.JudgeUser,
		messageprovider.P("context", missionContext),
		messageprovider.P("payload", payload),
	)
	if !ok {
		return missionContext + "\n\n" + payload
	}
	return prompt
}

func parseResponse(response *genai.GenerateContentResponse) (map[string]any, error) {
	if response == nil {
		return nil, errors.New("empty judge response")
	}
	payload := strings.TrimSpace(response.Text())
	if payload == "" {
		return nil, errors.New("empty judge response")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return nil, fmt.Errorf("decode judge response: %w", err)
	}
	return parsed, nil
}

func messageOrEmpty(msgProvider *messageprovider.Provider, key messageprovider.Key) string {
	text, _ := msgProvider.Lookup(key)
	return text
}
