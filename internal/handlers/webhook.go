package handlers

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/lojazap/vendas-backend/internal/models"
	"github.com/lojazap/vendas-backend/internal/services"
	"github.com/lojazap/vendas-backend/internal/storage"
)

// eventMessagesUpsert is the only gateway event this service reacts to
const eventMessagesUpsert = "messages.upsert"

// WebhookPayload is the inbound event shape posted by the Evolution API
type WebhookPayload struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

// WebhookData carries the message and its addressing key
type WebhookData struct {
	Key     MessageKey      `json:"key"`
	Message *MessageContent `json:"message"`
}

// MessageKey identifies the sender of a message
type MessageKey struct {
	RemoteJid string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
}

// MessageContent holds the two possible text shapes
type MessageContent struct {
	Conversation        string               `json:"conversation"`
	ExtendedTextMessage *ExtendedTextMessage `json:"extendedTextMessage"`
}

// ExtendedTextMessage is the quoted/extended text shape
type ExtendedTextMessage struct {
	Text string `json:"text"`
}

// Text extracts the message text from whichever shape is populated
func (m *MessageContent) Text() string {
	if m == nil {
		return ""
	}
	if m.Conversation != "" {
		return m.Conversation
	}
	if m.ExtendedTextMessage != nil {
		return m.ExtendedTextMessage.Text
	}
	return ""
}

// WebhookHandler routes inbound chat messages to the admin command
// processor or the AI sales engine and relays replies through the gateway.
type WebhookHandler struct {
	store    storage.Store
	memory   *services.SessionMemory
	commands *services.AdminCommandService
	ai       *services.AIService
	gateway  *services.EvolutionService
}

// NewWebhookHandler creates the webhook router
func NewWebhookHandler(store storage.Store, memory *services.SessionMemory, commands *services.AdminCommandService, ai *services.AIService, gateway *services.EvolutionService) *WebhookHandler {
	return &WebhookHandler{
		store:    store,
		memory:   memory,
		commands: commands,
		ai:       ai,
		gateway:  gateway,
	}
}

// HandleWebhook processes one inbound gateway event
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	if payload.Event != eventMessagesUpsert {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	// Echo suppression: skip our own outbound sends
	if payload.Data.Key.FromMe {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	texto := payload.Data.Message.Text()
	if texto == "" {
		return c.JSON(fiber.Map{"status": "ignored"})
	}

	telefone := services.NormalizePhone(payload.Data.Key.RemoteJid)
	log.Printf("💬 %s: %s", telefone, texto)

	err := h.store.SaveConversation(&models.Conversa{
		Telefone: telefone,
		Mensagem: texto,
		Tipo:     models.ConversaTipoCliente,
	})
	if err != nil {
		return h.internalError(c, err)
	}

	ehAdmin, err := h.store.IsAdmin(telefone)
	if err != nil {
		return h.internalError(c, err)
	}

	ctx := c.UserContext()

	if ehAdmin {
		// A live wizard consumes plain-text messages until it finishes
		if op, ok := h.memory.Pending(telefone); ok && !strings.HasPrefix(texto, "/") {
			resposta, err := h.commands.AdvanceWizard(telefone, texto, op)
			if err != nil {
				return h.internalError(c, err)
			}
			h.send(c, telefone, resposta)
			if err := h.saveReply(telefone, resposta, models.ConversaTipoAdmin); err != nil {
				return h.internalError(c, err)
			}
			return c.JSON(fiber.Map{"status": "success"})
		}

		if strings.HasPrefix(texto, "/") {
			resposta, err := h.commands.Handle(telefone, texto)
			if err != nil {
				return h.internalError(c, err)
			}

			if resposta == "" {
				// Unrecognized command: hint is sent but not persisted
				h.send(c, telefone, services.MsgComandoNaoReconhecido)
				return c.JSON(fiber.Map{"status": "success"})
			}

			h.send(c, telefone, resposta)
			if err := h.saveReply(telefone, resposta, models.ConversaTipoAdmin); err != nil {
				return h.internalError(c, err)
			}
			return c.JSON(fiber.Map{"status": "success"})
		}
	}

	resposta, err := h.ai.ProcessCustomerMessage(ctx, telefone, texto)
	if err != nil {
		return h.internalError(c, err)
	}

	h.send(c, telefone, resposta)
	if err := h.saveReply(telefone, resposta, models.ConversaTipoBot); err != nil {
		return h.internalError(c, err)
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// send relays a reply through the gateway. Delivery is best-effort: a
// failed send is logged and never fails the webhook.
func (h *WebhookHandler) send(c *fiber.Ctx, telefone, mensagem string) {
	if err := h.gateway.SendText(c.UserContext(), telefone, mensagem); err != nil {
		log.Printf("❌ Failed to send message to %s: %v", telefone, err)
	}
}

func (h *WebhookHandler) saveReply(telefone, mensagem, tipo string) error {
	return h.store.SaveConversation(&models.Conversa{
		Telefone: telefone,
		Mensagem: mensagem,
		Tipo:     tipo,
	})
}

// internalError logs the real failure and answers with a generic body
func (h *WebhookHandler) internalError(c *fiber.Ctx, err error) error {
	log.Printf("❌ Error processing webhook: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "erro interno ao processar mensagem",
	})
}
