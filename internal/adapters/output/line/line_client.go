package line

import (
	"fmt"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/output"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure LineClientAdapter implements LineClient interface
var _ output.LineClient = (*LineClientAdapter)(nil)

// LineClientAdapter struct - Output adapter for LINE messaging platform
type LineClientAdapter struct {
	client *messaging_api.MessagingApiAPI
}

// NewLineClientAdapter func - Creates new LINE client adapter
func NewLineClientAdapter(channelToken string) (*LineClientAdapter, error) {
	client, err := messaging_api.NewMessagingApiAPI(channelToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create LINE messaging API client: %w", err)
	}

	return &LineClientAdapter{
		client: client,
	}, nil
}

// ReplyMessage - Sends reply messages to LINE user via reply token
func (a *LineClientAdapter) ReplyMessage(request domain.LineReplyMessageRequest) (*domain.LineMessageResponse, error) {
	messages := a.convertMessages(request.Messages)
	if len(messages) == 0 {
		return nil, fmt.Errorf("no valid messages to send")
	}

	req := &messaging_api.ReplyMessageRequest{
		ReplyToken: request.ReplyToken,
		Messages:   messages,
	}

	if _, err := a.client.ReplyMessage(req); err != nil {
		return nil, fmt.Errorf("failed to send reply message: %w", err)
	}

	return &domain.LineMessageResponse{
		Status:  "success",
		Message: "Reply message sent successfully",
	}, nil
}

// PushMessage - Sends push messages to LINE user directly
func (a *LineClientAdapter) PushMessage(request domain.LinePushMessageRequest) (*domain.LineMessageResponse, error) {
	messages := a.convertMessages(request.Messages)
	if len(messages) == 0 {
		return nil, fmt.Errorf("no valid messages to send")
	}

	req := &messaging_api.PushMessageRequest{
		To:       request.To,
		Messages: messages,
	}

	if _, err := a.client.PushMessage(req, ""); err != nil {
		return nil, fmt.Errorf("failed to send push message: %w", err)
	}

	return &domain.LineMessageResponse{
		Status:  "success",
		Message: "Push message sent successfully",
	}, nil
}

// convertMessages - Converts domain messages to LINE SDK messages,
// dropping any the SDK cannot represent
func (a *LineClientAdapter) convertMessages(msgs []domain.LineOutgoingMessage) []messaging_api.MessageInterface {
	messages := make([]messaging_api.MessageInterface, 0, len(msgs))

	for _, msg := range msgs {
		lineMsg, err := a.convertToLineMessage(msg)
		if err != nil {
			logrus.Errorf("Failed to convert message: %v", err)
			continue
		}
		messages = append(messages, lineMsg)
	}

	return messages
}

// convertToLineMessage - Helper function to convert domain message to LINE SDK message
func (a *LineClientAdapter) convertToLineMessage(msg domain.LineOutgoingMessage) (messaging_api.MessageInterface, error) {
	switch msg.Type {
	case domain.LineMessageTypeText:
		textMsg := &messaging_api.TextMessage{
			Text: msg.Text,
		}
		if len(msg.QuickReplies) > 0 {
			textMsg.QuickReply = a.buildQuickReply(msg.QuickReplies)
		}
		return textMsg, nil

	default:
		return nil, fmt.Errorf("unsupported message type: %s", msg.Type)
	}
}

// buildQuickReply - Renders the command keyboard as quick-reply buttons
// that send their label back as a message
func (a *LineClientAdapter) buildQuickReply(labels []string) *messaging_api.QuickReply {
	items := make([]messaging_api.QuickReplyItem, 0, len(labels))
	for _, label := range labels {
		items = append(items, messaging_api.QuickReplyItem{
			Action: &messaging_api.MessageAction{
				Label: label,
				Text:  label,
			},
		})
	}
	return &messaging_api.QuickReply{Items: items}
}
