package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kursus_backend/internal/config"
	"kursus_backend/internal/model"
)

// GenerateRequest 出题参数。引擎不存储题目内容，只保留判分所需字段
type GenerateRequest struct {
	Subject            string
	GradeLevel         int
	LessonTitle        string
	LessonContent      string
	TargetDifficulty   model.Difficulty
	WeakTopics         []string
	ExcludeQuestionIDs []string
	QuestionNumber     int
}

type GeneratedOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type GeneratedQuestion struct {
	ID            string            `json:"id"`
	Content       string            `json:"content"`
	Options       []GeneratedOption `json:"options"`
	CorrectOption string            `json:"correctOption"`
	Explanation   string            `json:"explanation"`
	Difficulty    model.Difficulty  `json:"difficulty"`
	Topic         string            `json:"topic"`
}

// QuestionGenerator 外部出题协作方。生成失败不重试，
// 由调用端携带原会话计数重新请求
type QuestionGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GeneratedQuestion, error)
}

// AIQuestionGenerator 走 OpenAI 兼容的 chat completions 接口
type AIQuestionGenerator struct {
	config config.GeneratorConfig
	client *http.Client
}

func NewAIQuestionGenerator(cfg config.GeneratorConfig) *AIQuestionGenerator {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIQuestionGenerator{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (g *AIQuestionGenerator) Generate(ctx context.Context, req GenerateRequest) (*GeneratedQuestion, error) {
	payload := chatCompletionRequest{
		Model: g.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: generatorSystemPrompt},
			{Role: "user", Content: buildGeneratorPrompt(req)},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(g.config.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("generator returned status %d: %s", resp.StatusCode, string(raw))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(raw, &completion); err != nil {
		return nil, err
	}
	if completion.Error != nil {
		return nil, fmt.Errorf("generator error: %s", completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("generator returned no choices")
	}

	question, err := parseGeneratedQuestion(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if question.ID == "" {
		question.ID = model.GenerateUUID()
	}
	if !question.Difficulty.Valid() {
		question.Difficulty = req.TargetDifficulty
	}
	return question, nil
}

const generatorSystemPrompt = "你是一个出题引擎。只输出一个JSON对象，不要输出任何其他文字：" +
	`{"content":"题干","options":[{"id":"a","text":"..."},{"id":"b","text":"..."},{"id":"c","text":"..."},{"id":"d","text":"..."}],` +
	`"correctOption":"a","explanation":"解析","topic":"知识点","difficulty":"easy|medium|hard"}`

func buildGeneratorPrompt(req GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "学科：%s，年级：%d，课时：%s，第%d题，目标难度：%s。\n",
		req.Subject, req.GradeLevel, req.LessonTitle, req.QuestionNumber, req.TargetDifficulty)
	if req.LessonContent != "" {
		fmt.Fprintf(&b, "课时内容：\n%s\n", req.LessonContent)
	}
	if len(req.WeakTopics) > 0 {
		fmt.Fprintf(&b, "优先考查学习者的薄弱知识点：%s。\n", strings.Join(req.WeakTopics, "、"))
	}
	if len(req.ExcludeQuestionIDs) > 0 {
		fmt.Fprintf(&b, "不要重复本次会话已出过的题（已出%d题）。\n", len(req.ExcludeQuestionIDs))
	}
	return b.String()
}

// parseGeneratedQuestion 容忍模型把JSON包进```代码块
func parseGeneratedQuestion(content string) (*GeneratedQuestion, error) {
	content = strings.TrimSpace(content)
	if idx := strings.Index(content, "{"); idx > 0 {
		content = content[idx:]
	}
	if idx := strings.LastIndex(content, "}"); idx >= 0 {
		content = content[:idx+1]
	}

	var question GeneratedQuestion
	if err := json.Unmarshal([]byte(content), &question); err != nil {
		return nil, fmt.Errorf("generator returned malformed question: %w", err)
	}
	if question.Content == "" || len(question.Options) < 2 || question.CorrectOption == "" {
		return nil, fmt.Errorf("generator returned incomplete question")
	}
	return &question, nil
}
