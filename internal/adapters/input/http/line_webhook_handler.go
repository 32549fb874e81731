package http

import (
	"bytes"
	"net/http"

	"spotify-line-bot/internal/domain"
	"spotify-line-bot/internal/ports/input"

	"github.com/gofiber/fiber/v2"
	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
	"github.com/sirupsen/logrus"
)

// LineWebhookHandler struct - Primary/Driving adapter for LINE webhook
type LineWebhookHandler struct {
	service       input.BotService
	channelSecret string
}

// NewLineWebhookHandler func - Creates new LINE webhook handler
func NewLineWebhookHandler(service input.BotService, channelSecret string) *LineWebhookHandler {
	return &LineWebhookHandler{
		service:       service,
		channelSecret: channelSecret,
	}
}

// HandleWebhook func - Handles incoming LINE webhook requests
func (h *LineWebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	// Convert Fiber request to http.Request for LINE SDK signature check
	body := c.Body()
	httpReq, err := http.NewRequest(http.MethodPost, "/webhook/line", bytes.NewReader(body))
	if err != nil {
		logrus.Errorf("Failed to create http request: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}

	c.Request().Header.VisitAll(func(key, value []byte) {
		httpReq.Header.Set(string(key), string(value))
	})

	cb, err := webhook.ParseRequest(h.channelSecret, httpReq)
	if err != nil {
		logrus.Errorf("Failed to parse webhook request: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(ResponseBody{Status: BadRequest})
	}

	// Convert LINE SDK events to domain events
	domainEvents := make([]domain.LineWebhookEvent, 0, len(cb.Events))
	for _, event := range cb.Events {
		if domainEvent := h.convertToDomainEvent(event); domainEvent != nil {
			domainEvents = append(domainEvents, *domainEvent)
		}
	}

	webhookReq := domain.LineWebhookRequest{
		Events: domainEvents,
	}

	if err := h.service.HandleWebhook(c.Context(), webhookReq); err != nil {
		logrus.Errorf("Failed to handle webhook: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ResponseBody{Status: InternalServerError})
	}

	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success})
}

// convertToDomainEvent - Converts LINE SDK event to domain event
func (h *LineWebhookHandler) convertToDomainEvent(event webhook.EventInterface) *domain.LineWebhookEvent {
	switch e := event.(type) {
	case webhook.MessageEvent:
		return h.convertMessageEvent(e)
	case webhook.FollowEvent:
		return &domain.LineWebhookEvent{
			Type:       domain.LineEventTypeFollow,
			ReplyToken: e.ReplyToken,
			Source:     h.convertSource(e.Source),
		}
	case webhook.UnfollowEvent:
		return &domain.LineWebhookEvent{
			Type:   domain.LineEventTypeUnfollow,
			Source: h.convertSource(e.Source),
		}
	default:
		logrus.Warnf("Unsupported event type: %T", event)
		return nil
	}
}

// convertMessageEvent - Converts message event
func (h *LineWebhookHandler) convertMessageEvent(event webhook.MessageEvent) *domain.LineWebhookEvent {
	domainEvent := &domain.LineWebhookEvent{
		Type:       domain.LineEventTypeMessage,
		ReplyToken: event.ReplyToken,
		Source:     h.convertSource(event.Source),
	}

	switch msg := event.Message.(type) {
	case webhook.TextMessageContent:
		domainEvent.Message = &domain.LineMessage{
			ID:   msg.Id,
			Type: domain.LineMessageTypeText,
			Text: msg.Text,
		}
	default:
		logrus.Infof("Ignoring unsupported message type: %T", msg)
		return nil
	}

	return domainEvent
}

// convertSource - Converts event source
func (h *LineWebhookHandler) convertSource(source webhook.SourceInterface) domain.LineSource {
	switch s := source.(type) {
	case webhook.UserSource:
		return domain.LineSource{
			Type:   domain.LineSourceTypeUser,
			UserID: s.UserId,
		}
	case webhook.GroupSource:
		return domain.LineSource{
			Type:    domain.LineSourceTypeGroup,
			UserID:  s.UserId,
			GroupID: s.GroupId,
		}
	case webhook.RoomSource:
		return domain.LineSource{
			Type:   domain.LineSourceTypeRoom,
			UserID: s.UserId,
			RoomID: s.RoomId,
		}
	default:
		return domain.LineSource{}
	}
}
