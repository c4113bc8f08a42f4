package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lojazap/vendas-backend/internal/models"
	"github.com/lojazap/vendas-backend/internal/storage"
)

const separador = "━━━━━━━━━━━━━━"

// MsgComandoNaoReconhecido is sent when an admin issues an unknown command
const MsgComandoNaoReconhecido = "❌ Comando não reconhecido. Use /ajuda para ver comandos disponíveis."

// AdminCommandService parses slash-commands from authorized senders and
// runs catalog/order queries against the store.
type AdminCommandService struct {
	store  storage.Store
	memory *SessionMemory
}

// NewAdminCommandService creates the admin command processor
func NewAdminCommandService(store storage.Store, memory *SessionMemory) *AdminCommandService {
	return &AdminCommandService{
		store:  store,
		memory: memory,
	}
}

// Handle matches the text against the command grammar. An empty reply with
// a nil error means the command was not recognized; the caller sends the
// generic usage hint in that case.
func (s *AdminCommandService) Handle(phone, text string) (string, error) {
	comando := strings.ToLower(strings.TrimSpace(text))

	switch {
	case comando == "/produtos" || comando == "/lista":
		return s.listarProdutos()

	case comando == "/adicionar" || comando == "/add":
		s.memory.SetPending(phone, &PendingOp{
			Tipo:     PendingOpAdicionarProduto,
			Etapa:    1,
			CriadoEm: time.Now(),
		})
		return "➕ *CADASTRAR NOVO PRODUTO*\n\nEnvie o *nome* do produto:", nil

	case strings.HasPrefix(comando, "/estoque "):
		return s.atualizarEstoque(comando)

	case comando == "/pedidos":
		return s.listarPedidos()

	case comando == "/relatorio" || comando == "/vendas":
		return s.relatorioVendas()

	case strings.HasPrefix(comando, "/desativar "):
		return s.desativarProduto(comando)

	case strings.HasPrefix(comando, "/editar "):
		return s.editarProduto(strings.TrimSpace(text))

	case comando == "/cancelar":
		if _, ok := s.memory.Pending(phone); ok {
			s.memory.ClearPending(phone)
			return "🚫 Operação cancelada.", nil
		}
		return "ℹ️ Nenhuma operação em andamento.", nil

	case comando == "/ajuda" || comando == "/help" || comando == "/comandos":
		return s.ajuda(), nil
	}

	// Not a recognized admin command
	return "", nil
}

func (s *AdminCommandService) listarProdutos() (string, error) {
	produtos, err := s.store.GetActiveProducts()
	if err != nil {
		return "", err
	}

	if len(produtos) == 0 {
		return "❌ Nenhum produto cadastrado ainda.", nil
	}

	var b strings.Builder
	b.WriteString("📋 *PRODUTOS CADASTRADOS*\n\n")

	categoriaAtual := ""
	for _, p := range produtos {
		if p.Categoria != categoriaAtual {
			categoriaAtual = p.Categoria
			fmt.Fprintf(&b, "\n*%s*\n", strings.ToUpper(categoriaAtual))
		}
		fmt.Fprintf(&b, "\n🆔 ID: %d\n", p.ID)
		fmt.Fprintf(&b, "📦 %s\n", p.Nome)
		fmt.Fprintf(&b, "💰 R$ %.2f\n", p.Preco)
		fmt.Fprintf(&b, "📊 Estoque: %d un\n", p.Estoque)
		b.WriteString(separador + "\n")
	}

	b.WriteString("\n💡 *Comandos disponíveis:*\n")
	b.WriteString("/adicionar - Cadastrar produto\n")
	b.WriteString("/editar [ID] [CAMPO] [VALOR] - Editar produto\n")
	b.WriteString("/estoque [ID] [QTD] - Atualizar estoque\n")
	b.WriteString("/desativar [ID] - Desativar produto\n")
	b.WriteString("/pedidos - Ver pedidos do dia\n")
	b.WriteString("/relatorio - Relatório de vendas")

	return b.String(), nil
}

func (s *AdminCommandService) atualizarEstoque(comando string) (string, error) {
	partes := strings.Fields(comando)
	if len(partes) != 3 {
		return "❌ Formato correto: /estoque [ID] [QUANTIDADE]\n\nExemplo: /estoque 5 100", nil
	}

	id, errID := strconv.ParseUint(partes[1], 10, 32)
	quantidade, errQtd := strconv.Atoi(partes[2])
	if errID != nil || errQtd != nil {
		return "❌ Formato correto: /estoque [ID] [QUANTIDADE]\n\nExemplo: /estoque 5 100", nil
	}

	produto, err := s.store.UpdateProductStock(uint(id), quantidade)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Sprintf("❌ Produto ID %d não encontrado.", id), nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ *Estoque atualizado!*\n\n📦 %s\n📊 Novo estoque: %d unidades", produto.Nome, quantidade), nil
}

func (s *AdminCommandService) listarPedidos() (string, error) {
	pedidos, err := s.store.GetTodayOrders(inicioDoDia())
	if err != nil {
		return "", err
	}

	if len(pedidos) == 0 {
		return "📭 Nenhum pedido hoje ainda.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *PEDIDOS DE HOJE* (%d)\n\n", len(pedidos))

	total := 0.0
	for _, p := range pedidos {
		fmt.Fprintf(&b, "🆔 #%s\n", p.NumeroPedido)
		fmt.Fprintf(&b, "👤 %s\n", p.ClienteNome)
		fmt.Fprintf(&b, "📞 %s\n", p.ClienteTelefone)
		fmt.Fprintf(&b, "💰 R$ %.2f\n", p.Total)
		fmt.Fprintf(&b, "📍 Status: %s\n", strings.ToUpper(p.Status))
		b.WriteString(separador + "\n\n")
		total += p.Total
	}

	fmt.Fprintf(&b, "💵 *Total do dia:* R$ %.2f", total)
	return b.String(), nil
}

func (s *AdminCommandService) relatorioVendas() (string, error) {
	pedidos, err := s.store.GetTodayOrders(inicioDoDia())
	if err != nil {
		return "", err
	}

	total := 0.0
	concluidos := 0
	pendentes := 0
	for _, p := range pedidos {
		total += p.Total
		switch p.Status {
		case models.PedidoStatusConcluido:
			concluidos++
		case models.PedidoStatusPendente:
			pendentes++
		}
	}

	return fmt.Sprintf("📈 *RELATÓRIO DE HOJE*\n\n"+
		"📦 Total de pedidos: %d\n"+
		"✅ Concluídos: %d\n"+
		"⏳ Pendentes: %d\n"+
		"💰 Faturamento: R$ %.2f", len(pedidos), concluidos, pendentes, total), nil
}

func (s *AdminCommandService) desativarProduto(comando string) (string, error) {
	partes := strings.Fields(comando)
	if len(partes) != 2 {
		return "❌ Formato correto: /desativar [ID]\n\nExemplo: /desativar 5", nil
	}

	id, errID := strconv.ParseUint(partes[1], 10, 32)
	if errID != nil {
		return "❌ Formato correto: /desativar [ID]\n\nExemplo: /desativar 5", nil
	}

	produto, err := s.store.DeactivateProduct(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Sprintf("❌ Produto ID %d não encontrado.", id), nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ Produto *%s* desativado.", produto.Nome), nil
}

// editarProduto handles single-shot edits: /editar [ID] [CAMPO] [VALOR]
func (s *AdminCommandService) editarProduto(texto string) (string, error) {
	const uso = "❌ Formato correto: /editar [ID] [CAMPO] [VALOR]\n\nCampos: nome, categoria, preco, descricao\nExemplo: /editar 5 preco 19.90"

	partes := strings.Fields(texto)
	if len(partes) < 4 {
		return uso, nil
	}

	id, errID := strconv.ParseUint(partes[1], 10, 32)
	if errID != nil {
		return uso, nil
	}

	campo := strings.ToLower(partes[2])
	valor := strings.Join(partes[3:], " ")

	produto, err := s.store.GetProduct(uint(id))
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Sprintf("❌ Produto ID %d não encontrado.", id), nil
	}
	if err != nil {
		return "", err
	}

	switch campo {
	case "nome":
		produto.Nome = valor
	case "categoria":
		produto.Categoria = valor
	case "descricao":
		produto.Descricao = valor
	case "preco":
		preco, errPreco := parsePreco(valor)
		if errPreco != nil {
			return "❌ Preço inválido. Exemplo: /editar 5 preco 19.90", nil
		}
		produto.Preco = preco
	default:
		return uso, nil
	}

	if err := s.store.UpdateProduct(produto); err != nil {
		return "", err
	}

	return fmt.Sprintf("✅ *Produto atualizado!*\n\n📦 %s\n💰 R$ %.2f\n📊 Estoque: %d un", produto.Nome, produto.Preco, produto.Estoque), nil
}

func (s *AdminCommandService) ajuda() string {
	return "🤖 *COMANDOS ADMINISTRATIVOS*\n\n" +
		"📋 /produtos - Lista todos produtos\n" +
		"➕ /adicionar - Cadastrar produto\n" +
		"✏️ /editar [ID] [CAMPO] [VALOR] - Editar produto\n" +
		"📊 /estoque [ID] [QTD] - Atualizar estoque\n" +
		"❌ /desativar [ID] - Desativar produto\n" +
		"🛒 /pedidos - Pedidos de hoje\n" +
		"📈 /relatorio - Relatório de vendas\n" +
		"🚫 /cancelar - Cancelar operação em andamento\n" +
		"❓ /ajuda - Ver comandos"
}

// AdvanceWizard consumes one plain-text message from an admin with a live
// pending operation and moves the product-creation wizard forward.
// Steps: nome → categoria → preço → estoque → descrição → confirmação.
func (s *AdminCommandService) AdvanceWizard(phone, text string, op *PendingOp) (string, error) {
	if op.Tipo != PendingOpAdicionarProduto {
		s.memory.ClearPending(phone)
		return MsgComandoNaoReconhecido, nil
	}

	resposta := strings.TrimSpace(text)

	switch op.Etapa {
	case 1:
		op.Draft.Nome = resposta
		op.Etapa = 2
		s.memory.SetPending(phone, op)
		return fmt.Sprintf("📦 Nome: *%s*\n\nAgora envie a *categoria* do produto:", op.Draft.Nome), nil

	case 2:
		op.Draft.Categoria = resposta
		op.Etapa = 3
		s.memory.SetPending(phone, op)
		return "💰 Agora envie o *preço* do produto:\n\nExemplo: 19.90", nil

	case 3:
		preco, err := parsePreco(resposta)
		if err != nil {
			return "❌ Preço inválido. Envie apenas números:\n\nExemplo: 19.90", nil
		}
		op.Draft.Preco = preco
		op.Etapa = 4
		s.memory.SetPending(phone, op)
		return "📊 Agora envie a quantidade em *estoque*:\n\nExemplo: 50", nil

	case 4:
		estoque, err := strconv.Atoi(resposta)
		if err != nil || estoque < 0 {
			return "❌ Quantidade inválida. Envie apenas números inteiros:\n\nExemplo: 50", nil
		}
		op.Draft.Estoque = estoque
		op.Etapa = 5
		s.memory.SetPending(phone, op)
		return "📝 Agora envie a *descrição* do produto, ou envie *pular*:", nil

	case 5:
		if !strings.EqualFold(resposta, "pular") {
			op.Draft.Descricao = resposta
		}
		op.Etapa = 6
		s.memory.SetPending(phone, op)
		return fmt.Sprintf("🔎 *CONFIRMAR CADASTRO*\n\n"+
			"📦 %s\n🏷️ %s\n💰 R$ %.2f\n📊 Estoque: %d un\n📝 %s\n\n"+
			"Envie *sim* para confirmar ou *nao* para cancelar.",
			op.Draft.Nome, op.Draft.Categoria, op.Draft.Preco, op.Draft.Estoque, op.Draft.Descricao), nil

	case 6:
		s.memory.ClearPending(phone)
		if !strings.EqualFold(resposta, "sim") {
			return "🚫 Cadastro cancelado.", nil
		}

		produto := op.Draft
		produto.Ativo = true
		if err := s.store.CreateProduct(&produto); err != nil {
			return "", err
		}
		return fmt.Sprintf("✅ *Produto cadastrado!*\n\n🆔 ID: %d\n📦 %s\n💰 R$ %.2f\n📊 Estoque: %d un",
			produto.ID, produto.Nome, produto.Preco, produto.Estoque), nil
	}

	s.memory.ClearPending(phone)
	return MsgComandoNaoReconhecido, nil
}

// parsePreco accepts both "19.90" and the Brazilian "19,90"
func parsePreco(valor string) (float64, error) {
	normalizado := strings.ReplaceAll(strings.TrimSpace(valor), ",", ".")
	normalizado = strings.TrimPrefix(normalizado, "r$")
	normalizado = strings.TrimPrefix(normalizado, "R$")
	preco, err := strconv.ParseFloat(strings.TrimSpace(normalizado), 64)
	if err != nil || preco < 0 {
		return 0, fmt.Errorf("preço inválido: %q", valor)
	}
	return preco, nil
}

// inicioDoDia returns server-local midnight of today
func inicioDoDia() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
