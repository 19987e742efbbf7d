package payment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/shopbot/internal/service/payment"
)

func TestLinks(t *testing.T) {
	p := payment.NewLinkProvider("https://shop.example.com", "TWallet123")

	require.Equal(t,
		"https://shop.example.com/fake_payme_pay?order=7&amount=150000",
		p.PaymeLink(7, 150000))
	require.Equal(t,
		"https://shop.example.com/fake_click_pay?order=7&amount=150000",
		p.ClickLink(7, 150000))
}

func TestUSDTDetailsRounding(t *testing.T) {
	p := payment.NewLinkProvider("https://shop.example.com", "TWallet123")

	wallet, usdt := p.USDTDetails(240000)
	require.Equal(t, "TWallet123", wallet)
	require.Equal(t, int64(2), usdt)

	// 179 999 so'm -> 1.49... USDT, округляем к ближайшему: 1.
	_, usdt = p.USDTDetails(179999)
	require.Equal(t, int64(1), usdt)

	// 180 000 so'm -> ровно 1.5 USDT, округляем вверх: 2.
	_, usdt = p.USDTDetails(180000)
	require.Equal(t, int64(2), usdt)
}
