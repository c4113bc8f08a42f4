package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizePhone_AddsCountryCodeAndDomain(t *testing.T) {
	got := NormalizePhone("11999998888")
	require.Equal(t, "5511999998888@s.whatsapp.net", got)
}

func TestNormalizePhone_StripsSeparators(t *testing.T) {
	got := NormalizePhone("+55 (11) 99999-8888")
	require.Equal(t, "5511999998888@s.whatsapp.net", got)
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	canonical := NormalizePhone("5511999998888")
	require.Equal(t, canonical, NormalizePhone(canonical))
}

func TestNormalizePhone_ExactlyOnePrefixAndSuffix(t *testing.T) {
	inputs := []string{
		"11999998888",
		"5511999998888",
		"+55 11 99999 8888",
		"5511999998888@s.whatsapp.net",
	}

	for _, in := range inputs {
		got := NormalizePhone(in)
		require.True(t, strings.HasPrefix(got, "55"), "input %q", in)
		require.Equal(t, 1, strings.Count(got, "@s.whatsapp.net"), "input %q", in)
		require.True(t, strings.HasSuffix(got, "@s.whatsapp.net"), "input %q", in)
	}
}
