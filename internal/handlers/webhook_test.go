package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/lojazap/vendas-backend/internal/events"
	"github.com/lojazap/vendas-backend/internal/handlers"
	"github.com/lojazap/vendas-backend/internal/models"
	"github.com/lojazap/vendas-backend/internal/routes"
	"github.com/lojazap/vendas-backend/internal/services"
	"github.com/lojazap/vendas-backend/internal/storage"
)

const (
	customerJid = "5511999998888@s.whatsapp.net"
	adminJid    = "5511988887777@s.whatsapp.net"
)

type sentMessage struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// gatewayRecorder captures every outbound send the handler attempts
type gatewayRecorder struct {
	mu    sync.Mutex
	calls []sentMessage
}

func (g *gatewayRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.Header.Get("apikey"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var msg sentMessage
		require.NoError(t, json.Unmarshal(body, &msg))

		g.mu.Lock()
		g.calls = append(g.calls, msg)
		g.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
	}
}

func (g *gatewayRecorder) sent() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sentMessage, len(g.calls))
	copy(out, g.calls)
	return out
}

func completionStub(reply string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"cmpl-1","model":"gpt-4-turbo-preview","choices":[{"index":0,"message":{"role":"assistant","content":%s},"finish_reason":"stop"}]}`,
			strconv.Quote(reply))
	}
}

func newTestApp(t *testing.T, store storage.Store, openaiURL, gatewayURL string) *fiber.App {
	t.Helper()

	memory := services.NewSessionMemory()
	commands := services.NewAdminCommandService(store, memory)
	orders := services.NewOrderService(store, events.NewFallback())
	client := services.NewOpenAIClient("test-key", services.WithOpenAIBaseURL(openaiURL))
	ai := services.NewAIService(store, memory, client, orders)
	gateway := services.NewEvolutionService(gatewayURL, "secret", "vendas")

	app := fiber.New()
	routes.SetupRoutes(app, handlers.NewWebhookHandler(store, memory, commands, ai, gateway))
	return app
}

func webhookRequest(t *testing.T, event, jid string, fromMe bool, message map[string]interface{}) *http.Request {
	t.Helper()

	payload := map[string]interface{}{
		"event": event,
		"data": map[string]interface{}{
			"key": map[string]interface{}{
				"remoteJid": jid,
				"fromMe":    fromMe,
			},
			"message": message,
		},
	}

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeStatus(t *testing.T, resp *http.Response) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["status"]
}

func TestWebhook_IgnoresNonTargetEvent(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	app := newTestApp(t, storage.NewMemoryStore(), "http://unused.invalid", gwServer.URL)

	req := webhookRequest(t, "connection.update", customerJid, false, map[string]interface{}{"conversation": "oi"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ignored", decodeStatus(t, resp))
	require.Empty(t, gw.sent())
}

func TestWebhook_IgnoresOwnEcho(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	app := newTestApp(t, storage.NewMemoryStore(), "http://unused.invalid", gwServer.URL)

	req := webhookRequest(t, "messages.upsert", customerJid, true, map[string]interface{}{"conversation": "oi"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "ignored", decodeStatus(t, resp))
	require.Empty(t, gw.sent())
}

func TestWebhook_IgnoresEmptyText(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	store := storage.NewMemoryStore()
	app := newTestApp(t, store, "http://unused.invalid", gwServer.URL)

	req := webhookRequest(t, "messages.upsert", customerJid, false, map[string]interface{}{
		"conversation":        "",
		"extendedTextMessage": map[string]interface{}{"text": ""},
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "ignored", decodeStatus(t, resp))
	require.Empty(t, gw.sent())
	require.Empty(t, store.Conversations())
}

func TestWebhook_CustomerMessageFlowsThroughAI(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	aiServer := httptest.NewServer(completionStub("Temos X-Burger (ID 1) por R$ 25.90! 🍔"))
	defer aiServer.Close()

	store := storage.NewMemoryStore()
	require.NoError(t, store.CreateProduct(&models.Produto{Nome: "X-Burger", Categoria: "Lanches", Preco: 25.9, Estoque: 10, Ativo: true}))

	app := newTestApp(t, store, aiServer.URL, gwServer.URL)

	req := webhookRequest(t, "messages.upsert", customerJid, false, map[string]interface{}{"conversation": "Quanto custa o X-Burger?"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "success", decodeStatus(t, resp))

	sent := gw.sent()
	require.Len(t, sent, 1)
	require.Equal(t, customerJid, sent[0].Number)
	require.Contains(t, sent[0].Text, "X-Burger")

	conversas := store.Conversations()
	require.Len(t, conversas, 2)
	require.Equal(t, models.ConversaTipoCliente, conversas[0].Tipo)
	require.Equal(t, customerJid, conversas[0].Telefone)
	require.Equal(t, models.ConversaTipoBot, conversas[1].Tipo)
}

func TestWebhook_ExtendedTextMessageShape(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	aiServer := httptest.NewServer(completionStub("Claro! 😊"))
	defer aiServer.Close()

	store := storage.NewMemoryStore()
	app := newTestApp(t, store, aiServer.URL, gwServer.URL)

	req := webhookRequest(t, "messages.upsert", customerJid, false, map[string]interface{}{
		"extendedTextMessage": map[string]interface{}{"text": "me manda o cardápio"},
	})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "success", decodeStatus(t, resp))
	require.Len(t, gw.sent(), 1)
}

func TestWebhook_AdminCommandReplyPersisted(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	store := storage.NewMemoryStore()
	store.AddAdmin(adminJid, true)

	app := newTestApp(t, store, "http://unused.invalid", gwServer.URL)

	req := webhookRequest(t, "messages.upsert", adminJid, false, map[string]interface{}{"conversation": "/produtos"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "success", decodeStatus(t, resp))

	sent := gw.sent()
	require.Len(t, sent, 1)
	require.Equal(t, "❌ Nenhum produto cadastrado ainda.", sent[0].Text)

	conversas := store.Conversations()
	require.Len(t, conversas, 2)
	require.Equal(t, models.ConversaTipoAdmin, conversas[1].Tipo)
}

func TestWebhook_AdminUnrecognizedCommandNotPersisted(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	store := storage.NewMemoryStore()
	store.AddAdmin(adminJid, true)

	app := newTestApp(t, store, "http://unused.invalid", gwServer.URL)

	req := webhookRequest(t, "messages.upsert", adminJid, false, map[string]interface{}{"conversation": "/naoexiste"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "success", decodeStatus(t, resp))

	sent := gw.sent()
	require.Len(t, sent, 1)
	require.Equal(t, services.MsgComandoNaoReconhecido, sent[0].Text)

	// Only the inbound message is logged
	conversas := store.Conversations()
	require.Len(t, conversas, 1)
	require.Equal(t, models.ConversaTipoCliente, conversas[0].Tipo)
}

func TestWebhook_AdminWizardConsumesPlainText(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	store := storage.NewMemoryStore()
	store.AddAdmin(adminJid, true)

	app := newTestApp(t, store, "http://unused.invalid", gwServer.URL)

	req := webhookRequest(t, "messages.upsert", adminJid, false, map[string]interface{}{"conversation": "/adicionar"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "success", decodeStatus(t, resp))

	// Plain text now advances the wizard instead of hitting the AI
	req = webhookRequest(t, "messages.upsert", adminJid, false, map[string]interface{}{"conversation": "Pastel de Queijo"})
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "success", decodeStatus(t, resp))

	sent := gw.sent()
	require.Len(t, sent, 2)
	require.Contains(t, sent[0].Text, "CADASTRAR NOVO PRODUTO")
	require.Contains(t, sent[1].Text, "categoria")
}

func TestWebhook_NonAdminSlashCommandGoesToAI(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	aiServer := httptest.NewServer(completionStub("Posso ajudar com nosso cardápio! 😊"))
	defer aiServer.Close()

	store := storage.NewMemoryStore()
	app := newTestApp(t, store, aiServer.URL, gwServer.URL)

	req := webhookRequest(t, "messages.upsert", customerJid, false, map[string]interface{}{"conversation": "/produtos"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "success", decodeStatus(t, resp))

	sent := gw.sent()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0].Text, "cardápio")

	conversas := store.Conversations()
	require.Len(t, conversas, 2)
	require.Equal(t, models.ConversaTipoBot, conversas[1].Tipo)
}

func TestWebhook_CompletionFailureReturnsGenericError(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	aiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer aiServer.Close()

	store := storage.NewMemoryStore()
	app := newTestApp(t, store, aiServer.URL, gwServer.URL)

	req := webhookRequest(t, "messages.upsert", customerJid, false, map[string]interface{}{"conversation": "oi"})
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	// Generic message only, no internal details
	require.Equal(t, "erro interno ao processar mensagem", body["error"])
	require.Empty(t, gw.sent())
}

func TestHealthEndpoints(t *testing.T) {
	gw := &gatewayRecorder{}
	gwServer := httptest.NewServer(gw.handler(t))
	defer gwServer.Close()

	app := newTestApp(t, storage.NewMemoryStore(), "http://unused.invalid", gwServer.URL)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "healthy", decodeStatus(t, resp))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "online", decodeStatus(t, resp))
}
