package payment

import "fmt"

// defaultUSDTRateMinor — курс пересчёта сум -> USDT по умолчанию
// (120 000 so'm за 1 USDT).
const defaultUSDTRateMinor int64 = 120000

// LinkProvider строит платёжные ссылки-заглушки. Реальные вызовы API
// провайдеров (Payme/Click) — обязанность слоя-коллаборатора; ядро лишь
// формирует адреса и реквизиты для сообщений покупателю.
type LinkProvider struct {
	webhookHost   string
	usdtWallet    string
	usdtRateMinor int64
}

// NewLinkProvider конструирует провайдер ссылок.
func NewLinkProvider(webhookHost, usdtWallet string) *LinkProvider {
	return &LinkProvider{
		webhookHost:   webhookHost,
		usdtWallet:    usdtWallet,
		usdtRateMinor: defaultUSDTRateMinor,
	}
}

// PaymeLink возвращает ссылку на оплату заказа через Payme.
func (p *LinkProvider) PaymeLink(orderID, amountMinor int64) string {
	return fmt.Sprintf("%s/fake_payme_pay?order=%d&amount=%d", p.webhookHost, orderID, amountMinor)
}

// ClickLink возвращает ссылку на оплату заказа через Click.
func (p *LinkProvider) ClickLink(orderID, amountMinor int64) string {
	return fmt.Sprintf("%s/fake_click_pay?order=%d&amount=%d", p.webhookHost, orderID, amountMinor)
}

// USDTDetails возвращает кошелёк TRC20 и округлённую сумму в USDT.
func (p *LinkProvider) USDTDetails(amountMinor int64) (wallet string, usdtAmount int64) {
	rate := p.usdtRateMinor
	if rate <= 0 {
		rate = defaultUSDTRateMinor
	}
	// Округление к ближайшему целому USDT.
	usdtAmount = (amountMinor + rate/2) / rate
	return p.usdtWallet, usdtAmount
}
