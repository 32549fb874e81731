package domain

// DTOs (Data Transfer Objects) - Domain layer request/response structures

type (
	// LineWebhookRequest struct - Domain LINE webhook request DTO
	LineWebhookRequest struct {
		Events []LineWebhookEvent
	}

	// LineReplyMessageRequest struct - Domain LINE reply message request DTO
	LineReplyMessageRequest struct {
		ReplyToken string
		Messages   []LineOutgoingMessage
	}

	// LinePushMessageRequest struct - Domain LINE push message request DTO
	LinePushMessageRequest struct {
		To       string
		Messages []LineOutgoingMessage
	}

	// LineOutgoingMessage struct - Domain LINE outgoing message DTO.
	// QuickReplies render as tappable buttons that send their text back,
	// which is how the command keyboard is surfaced to the user.
	LineOutgoingMessage struct {
		Type         LineMessageType
		Text         string
		QuickReplies []string
	}

	// LineMessageResponse struct - Domain LINE API response DTO
	LineMessageResponse struct {
		Status  string
		Message string
	}

	// Email struct - Domain outbound mail DTO
	Email struct {
		To      string
		Subject string
		Body    string
	}
)
