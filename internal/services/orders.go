package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lojazap/vendas-backend/internal/events"
	"github.com/lojazap/vendas-backend/internal/models"
	"github.com/lojazap/vendas-backend/internal/storage"
)

// OrderDraft is the machine-readable order the AI engine extracts from a
// confirmed sales conversation.
type OrderDraft struct {
	ClienteNome string           `json:"cliente_nome"`
	Endereco    string           `json:"endereco"`
	Pagamento   string           `json:"pagamento"`
	Itens       []OrderDraftItem `json:"itens"`
}

// OrderDraftItem references a catalog product by id
type OrderDraftItem struct {
	ProdutoID  uint `json:"produto_id"`
	Quantidade int  `json:"quantidade"`
}

// OrderService turns finalized chat orders into persisted records
type OrderService struct {
	store     storage.Store
	publisher events.Publisher
}

// NewOrderService creates the order service
func NewOrderService(store storage.Store, publisher events.Publisher) *OrderService {
	return &OrderService{
		store:     store,
		publisher: publisher,
	}
}

// CreateFromDraft resolves the draft against the live catalog, persists the
// order with its line items (stock is decremented in the same transaction)
// and publishes a pedido.criado event. The event publish is best-effort.
func (s *OrderService) CreateFromDraft(ctx context.Context, telefone string, draft *OrderDraft) (*models.Pedido, error) {
	if len(draft.Itens) == 0 {
		return nil, fmt.Errorf("pedido sem itens")
	}

	configs, err := s.store.GetConfigs()
	if err != nil {
		return nil, err
	}

	pedido := &models.Pedido{
		NumeroPedido:    novoNumeroPedido(),
		ClienteNome:     draft.ClienteNome,
		ClienteTelefone: NormalizePhone(telefone),
		Endereco:        draft.Endereco,
		Pagamento:       draft.Pagamento,
		Status:          models.PedidoStatusPendente,
		DataPedido:      time.Now(),
	}

	subtotal := 0.0
	for _, item := range draft.Itens {
		if item.Quantidade <= 0 {
			return nil, fmt.Errorf("quantidade inválida para produto %d", item.ProdutoID)
		}

		produto, err := s.store.GetProduct(item.ProdutoID)
		if err != nil {
			return nil, err
		}
		if !produto.Ativo {
			return nil, fmt.Errorf("produto %d: %w", item.ProdutoID, storage.ErrNotFound)
		}

		valor := produto.Preco * float64(item.Quantidade)
		pedido.Itens = append(pedido.Itens, models.ItemPedido{
			ProdutoID:   produto.ID,
			Quantidade:  item.Quantidade,
			ProdutoNome: produto.Nome,
			Subtotal:    valor,
		})
		subtotal += valor
	}

	pedido.Total = subtotal + taxaEntrega(configs)

	if err := s.store.CreateOrder(pedido); err != nil {
		return nil, err
	}

	evt := events.PedidoCriado{
		EventID:         uuid.NewString(),
		NumeroPedido:    pedido.NumeroPedido,
		ClienteTelefone: pedido.ClienteTelefone,
		Total:           pedido.Total,
		QtdItens:        len(pedido.Itens),
		CriadoEm:        pedido.DataPedido,
	}
	if err := s.publisher.Publish(ctx, events.RoutingKeyPedidoCriado, evt); err != nil {
		log.Printf("⚠️  Failed to publish order event %s: %v", pedido.NumeroPedido, err)
	}

	return pedido, nil
}

func novoNumeroPedido() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "PED-" + id[:8]
}

func taxaEntrega(configs map[string]string) float64 {
	valor, ok := configs[models.ConfigTaxaEntrega]
	if !ok {
		return 0
	}
	taxa, err := strconv.ParseFloat(strings.ReplaceAll(valor, ",", "."), 64)
	if err != nil {
		return 0
	}
	return taxa
}
