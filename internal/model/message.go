// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// Sender identifies who wrote a transcript entry.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Response sources reported by the chatbot.
const (
	SourceChatbot  = "chatbot"
	SourcePattern  = "pattern"
	SourceGdpr     = "gdpr"
	SourceAI       = "ai_api"
	SourceFallback = "fallback"
)

// ChatMessage is one entry of the assistant transcript. IDs derive from
// the creation time in milliseconds and increase strictly.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	Source        string `json:"source,omitempty"`
	PatternID     int    `json:"patternId,omitempty"`
	PatternTitle  string `json:"patternTitle,omitempty"`
	ArticleID     int    `json:"articleId,omitempty"`
	ArticleNumber string `json:"articleNumber,omitempty"`

	// IsError marks the inline entry appended when a send fails.
	IsError bool `json:"isError,omitempty"`
}

// HistoryEntry is one element of conversation_history in a chat request.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chatbot/chat.
type ChatRequest struct {
	Message             string         `json:"message"`
	ConversationHistory []HistoryEntry `json:"conversation_history"`
}

// ChatResponse is the reply of POST /chatbot/chat.
type ChatResponse struct {
	Response      string `json:"response"`
	Source        string `json:"source,omitempty"`
	PatternID     *int   `json:"pattern_id,omitempty"`
	PatternTitle  string `json:"pattern_title,omitempty"`
	ArticleID     *int   `json:"article_id,omitempty"`
	ArticleNumber string `json:"article_number,omitempty"`
}
