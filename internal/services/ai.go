package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/lojazap/vendas-backend/internal/models"
	"github.com/lojazap/vendas-backend/internal/storage"
)

const (
	completionModel       = "gpt-4-turbo-preview"
	completionTemperature = 0.8
	completionMaxTokens   = 700
)

// pedidoTag marks the machine-readable order line the model appends after
// a confirmed order. The JSON payload stays on a single line.
var pedidoTag = regexp.MustCompile(`\[PEDIDO_JSON\]\s*(\{.*\})`)

// AIService assembles conversational context and produces sales replies
// grounded in the live catalog and store configuration.
type AIService struct {
	store  storage.Store
	memory *SessionMemory
	openai *OpenAIClient
	orders *OrderService
}

// NewAIService creates the AI conversation engine
func NewAIService(store storage.Store, memory *SessionMemory, openai *OpenAIClient, orders *OrderService) *AIService {
	return &AIService{
		store:  store,
		memory: memory,
		openai: openai,
		orders: orders,
	}
}

// ProcessCustomerMessage generates a reply for a customer message. Failures
// of the store or the completion API propagate to the caller; order
// persistence extracted from a confirmed conversation is best-effort.
func (s *AIService) ProcessCustomerMessage(ctx context.Context, telefone, mensagem string) (string, error) {
	produtos, err := s.store.GetActiveProducts()
	if err != nil {
		return "", err
	}

	configs, err := s.store.GetConfigs()
	if err != nil {
		return "", err
	}

	s.memory.AppendTurn(telefone, RoleUser, mensagem)

	messages := []ChatMessage{
		{Role: RoleSystem, Content: s.buildSystemPrompt(produtos, configs)},
	}
	for _, turn := range s.memory.Window(telefone) {
		messages = append(messages, ChatMessage{Role: turn.Role, Content: turn.Content})
	}

	resposta, err := s.openai.CreateChatCompletion(ctx, &ChatCompletionRequest{
		Model:       completionModel,
		Messages:    messages,
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", err
	}

	resposta = s.capturePedido(ctx, telefone, resposta)

	s.memory.AppendTurn(telefone, RoleAssistant, resposta)
	return resposta, nil
}

// capturePedido extracts and strips the machine-readable order line, if
// present, and persists the order. A malformed or unpersistable draft is
// logged and does not block the reply.
func (s *AIService) capturePedido(ctx context.Context, telefone, resposta string) string {
	match := pedidoTag.FindStringSubmatch(resposta)
	if match == nil {
		return resposta
	}

	limpo := strings.TrimSpace(pedidoTag.ReplaceAllString(resposta, ""))

	var draft OrderDraft
	if err := json.Unmarshal([]byte(match[1]), &draft); err != nil {
		log.Printf("⚠️  Invalid order payload from %s: %v", telefone, err)
		return limpo
	}

	pedido, err := s.orders.CreateFromDraft(ctx, telefone, &draft)
	if err != nil {
		log.Printf("⚠️  Failed to persist order from %s: %v", telefone, err)
		return limpo
	}

	log.Printf("🛒 Pedido %s registrado para %s (R$ %.2f)", pedido.NumeroPedido, pedido.ClienteTelefone, pedido.Total)
	return limpo
}

func (s *AIService) buildSystemPrompt(produtos []*models.Produto, configs map[string]string) string {
	var catalogo strings.Builder
	for i, p := range produtos {
		if i > 0 {
			catalogo.WriteString("\n")
		}
		fmt.Fprintf(&catalogo, "ID: %d | %s | R$ %.2f | Estoque: %d | %s", p.ID, p.Nome, p.Preco, p.Estoque, p.Descricao)
	}

	horario := configValue(configs, models.ConfigHorarioFuncionamento, "Consulte disponibilidade")
	taxa := configValue(configs, models.ConfigTaxaEntrega, "0.00")
	tempo := configValue(configs, models.ConfigTempoEntrega, "30-40 minutos")
	taxaConfirmacao := configValue(configs, models.ConfigTaxaEntrega, "5.00")
	tempoConfirmacao := configValue(configs, models.ConfigTempoEntrega, "40-50 min")

	return fmt.Sprintf(`Você é um assistente de vendas via WhatsApp super atencioso! 🛍️

**CATÁLOGO DE PRODUTOS:**
%s

**INFORMAÇÕES DA LOJA:**
- Horário: %s
- Taxa de entrega: R$ %s
- Tempo de entrega: %s

**SUAS FUNÇÕES:**
1. 🎯 Apresentar produtos de forma atrativa com emojis
2. 💬 Responder dúvidas sobre produtos, preços e disponibilidade
3. 🛒 Ajudar a montar pedidos
4. ✅ Coletar dados para finalizar: nome, endereço completo, forma de pagamento

**REGRAS IMPORTANTES:**
- SEMPRE mencione o ID do produto quando falar dele
- Verifique estoque (se = 0, produto indisponível)
- Seja simpático e use emojis relevantes
- Nunca invente produtos que não estão no catálogo
- Quando cliente quiser finalizar, peça: nome completo, endereço com número/bairro/CEP, forma de pagamento (PIX/Dinheiro/Cartão)

**FORMATO DE CONFIRMAÇÃO:**
"✅ *PEDIDO CONFIRMADO!*
📦 Itens: [lista]
💰 Subtotal: R$ [valor]
🚚 Taxa de entrega: R$ %s
💵 *Total: R$ [valor total]*
📍 Endereço: [endereço completo]
💳 Pagamento: [forma]
⏰ Previsão: %s"

**REGISTRO DO PEDIDO:**
Imediatamente após a mensagem de confirmação, adicione UMA linha extra, exatamente neste formato, usando apenas IDs do catálogo:
[PEDIDO_JSON]{"cliente_nome":"...","endereco":"...","pagamento":"...","itens":[{"produto_id":1,"quantidade":2}]}
Nunca adicione essa linha em nenhuma outra situação.`,
		catalogo.String(), horario, taxa, tempo, taxaConfirmacao, tempoConfirmacao)
}

func configValue(configs map[string]string, chave, padrao string) string {
	if v, ok := configs[chave]; ok && v != "" {
		return v
	}
	return padrao
}
