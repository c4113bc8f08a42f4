package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionMemory_HistoryCappedAtTwenty(t *testing.T) {
	sm := NewSessionMemory()
	phone := "5511999998888@s.whatsapp.net"

	for i := 0; i < 35; i++ {
		sm.AppendTurn(phone, RoleUser, fmt.Sprintf("mensagem %d", i))
	}

	history := sm.History(phone)
	require.Len(t, history, 20)
	// Oldest entries were trimmed, most recent kept
	require.Equal(t, "mensagem 34", history[len(history)-1].Content)
	require.Equal(t, "mensagem 15", history[0].Content)
}

func TestSessionMemory_WindowCappedAtTwelve(t *testing.T) {
	sm := NewSessionMemory()
	phone := "5511999998888@s.whatsapp.net"

	for i := 0; i < 18; i++ {
		sm.AppendTurn(phone, RoleUser, fmt.Sprintf("mensagem %d", i))
	}

	window := sm.Window(phone)
	require.Len(t, window, 12)
	require.Equal(t, "mensagem 6", window[0].Content)
	require.Equal(t, "mensagem 17", window[len(window)-1].Content)
}

func TestSessionMemory_WindowSmallerHistories(t *testing.T) {
	sm := NewSessionMemory()
	phone := "5511999998888@s.whatsapp.net"

	sm.AppendTurn(phone, RoleUser, "oi")
	sm.AppendTurn(phone, RoleAssistant, "olá!")

	window := sm.Window(phone)
	require.Len(t, window, 2)
	require.Equal(t, RoleUser, window[0].Role)
	require.Equal(t, RoleAssistant, window[1].Role)
}

func TestSessionMemory_PendingExpiresAfterTTL(t *testing.T) {
	sm := NewSessionMemory()
	phone := "5511999998888@s.whatsapp.net"

	sm.SetPending(phone, &PendingOp{
		Tipo:     PendingOpAdicionarProduto,
		Etapa:    1,
		CriadoEm: time.Now().Add(-16 * time.Minute),
	})

	_, ok := sm.Pending(phone)
	require.False(t, ok)
}

func TestSessionMemory_PendingSetAndClear(t *testing.T) {
	sm := NewSessionMemory()
	phone := "5511999998888@s.whatsapp.net"

	sm.SetPending(phone, &PendingOp{Tipo: PendingOpAdicionarProduto, Etapa: 1})

	op, ok := sm.Pending(phone)
	require.True(t, ok)
	require.Equal(t, 1, op.Etapa)

	sm.ClearPending(phone)
	_, ok = sm.Pending(phone)
	require.False(t, ok)
}
