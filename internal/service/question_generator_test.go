package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"kursus_backend/internal/config"
	"kursus_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGeneratedQuestion(t *testing.T) {
	raw := `{"content":"1/2+1/4=?","options":[{"id":"a","text":"3/4"},{"id":"b","text":"2/6"}],"correctOption":"a","topic":"fractions","difficulty":"easy"}`

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"裸JSON", raw, false},
		{"围栏代码块", "```json\n" + raw + "\n```", false},
		{"前置说明文字", "好的，题目如下：\n" + raw, false},
		{"非JSON", "抱歉，我无法出题", true},
		{"缺题干", `{"options":[{"id":"a","text":"x"},{"id":"b","text":"y"}],"correctOption":"a"}`, true},
		{"选项不足", `{"content":"?","options":[{"id":"a","text":"x"}],"correctOption":"a"}`, true},
		{"缺正确选项", `{"content":"?","options":[{"id":"a","text":"x"},{"id":"b","text":"y"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := parseGeneratedQuestion(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "1/2+1/4=?", q.Content)
			assert.Equal(t, "a", q.CorrectOption)
			assert.Equal(t, "fractions", q.Topic)
		})
	}
}

func TestAIQuestionGeneratorRoundTrip(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)

		question := `{"content":"2+2=?","options":[{"id":"a","text":"4"},{"id":"b","text":"5"}],"correctOption":"a","topic":"addition"}`
		resp := chatCompletionResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: question}})
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	gen := NewAIQuestionGenerator(config.GeneratorConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	})

	q, err := gen.Generate(context.Background(), GenerateRequest{
		Subject:          "math",
		GradeLevel:       2,
		LessonTitle:      "加法",
		TargetDifficulty: model.DifficultyEasy,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "2+2=?", q.Content)
	// 生成端未给难度时回落到目标难度，并补齐题目ID
	assert.Equal(t, model.DifficultyEasy, q.Difficulty)
	assert.NotEmpty(t, q.ID)
}

func TestAIQuestionGeneratorUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	}))
	defer server.Close()

	gen := NewAIQuestionGenerator(config.GeneratorConfig{BaseURL: server.URL})

	_, err := gen.Generate(context.Background(), GenerateRequest{Subject: "math"})
	assert.Error(t, err)
}
