package gateway

import (
	"fmt"
	"strings"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/service/cart"
	"github.com/vladislavdragonenkov/shopbot/internal/service/wizard"
)

// ProductCard — готовая карточка товара для отправки транспортом:
// подпись плюс непрозрачная ссылка на изображение (может быть пустой).
type ProductCard struct {
	PhotoRef string
	Caption  string
}

// AdminMenuLayout — фиксированная раскладка админского меню.
var AdminMenuLayout = [][]string{
	{"📋 Oxirgi buyurtmalar", "🔍 Buyurtmani ko‘rish"},
	{"⚙️ Statusni o‘zgartirish", "🚪 Admin chiqish"},
	{"🗂 Mahsulotlar", "➕ Mahsulot qo‘shish"},
	{"✏️ Mahsulotni tahrirlash", "➖ Mahsulotni o‘chirish"},
	{"🧾 Menyuni sozlash"},
}

// stepFieldLabels — человекочитаемые названия полей мастера для сообщений
// о недостающих данных.
var stepFieldLabels = map[wizard.Step]string{
	wizard.StepName:        "nom",
	wizard.StepCategory:    "kategoriya",
	wizard.StepPrice:       "narx",
	wizard.StepDescription: "tavsif",
	wizard.StepPhoto:       "rasm",
}

func renderProductCard(p domain.Product) ProductCard {
	caption := fmt.Sprintf(
		"🛒 %s\n💵 Narx: %d so'm\n%s\n\n/t%d — Savatchaga qo'shish",
		p.Name, p.PriceMinor, p.Description, p.ID,
	)
	return ProductCard{PhotoRef: p.PhotoRef, Caption: caption}
}

func renderProductDetail(p domain.Product) ProductCard {
	desc := p.Description
	if desc == "" {
		desc = "-"
	}
	caption := fmt.Sprintf(
		"#%d — %s\nKategoriya: %s\nNarx: %d so'm\nTavsif: %s",
		p.ID, p.Name, p.Category, p.PriceMinor, desc,
	)
	return ProductCard{PhotoRef: p.PhotoRef, Caption: caption}
}

func renderProductSummary(p domain.Product) string {
	return fmt.Sprintf("#%d | %s | %s | %d so'm", p.ID, p.Name, p.Category, p.PriceMinor)
}

func renderOrderSummary(o domain.Order) string {
	return fmt.Sprintf(
		"#%d | %s | %s | %d so'm | %s | %s",
		o.ID, o.FullName, o.Phone, o.TotalMinor, o.Status, o.CreatedAt.Format("2006-01-02"),
	)
}

func renderCartView(view cart.View) string {
	var b strings.Builder
	for _, line := range view.Lines {
		fmt.Fprintf(&b, "%s x%d — %d so'm (/remove_%d o'chirish)\n",
			line.Product.Name, line.Qty, line.LineTotal, line.Product.ID)
	}
	fmt.Fprintf(&b, "\nJami: %d so'm\n/checkout — To‘lovga o‘tish", view.TotalMinor)
	return b.String()
}

func renderCheckoutPrompt(totalMinor int64) string {
	return fmt.Sprintf(
		"Buyurtma jami: %d so'm\nIsm, manzil va telefoningizni quyidagi formatda yuboring:\nMasalan:\nAli — Toshkent, Shayxontohur — +998901234567",
		totalMinor,
	)
}

func renderOrderConfirmation(orderID, totalMinor int64) string {
	return fmt.Sprintf(
		"Buyurtma qabul qilindi — #%d\nJami: %d so'm\n"+
			"To‘lovni tanlang:\n1) Payme/Click onlayn (bank kartasi)\n2) USDT (TRC20)\n\n"+
			"/pay_payme_%d  — Payme\n/pay_click_%d — Click\n/pay_usdt_%d — USDT (TRC20)",
		orderID, totalMinor, orderID, orderID, orderID,
	)
}

// renderStepPrompt строит подсказку текущего шага мастера: текст шага,
// список категорий, текущее значение при правке и стандартные строки про
// /skip и /cancel.
func renderStepPrompt(action wizard.Action, step wizard.Step, categories []string, currentValue string, hasCurrent bool) string {
	var text string
	switch step {
	case wizard.StepName:
		text = "Mahsulot nomini kiriting."
	case wizard.StepCategory:
		if len(categories) > 0 {
			text = "Kategoriya nomini kiriting yoki quyidagi tugmalardan tanlang."
			text += "\nMavjudlari: " + strings.Join(categories, ", ")
		} else {
			text = "Kategoriya nomini kiriting."
		}
	case wizard.StepPrice:
		text = "Mahsulot narxini so'mda kiriting (masalan, 150000)."
	case wizard.StepDescription:
		text = "Mahsulot tavsifini kiriting."
	case wizard.StepPhoto:
		text = "Mahsulot rasmini yuboring (Telegram photo) yoki file_id/URL kiriting."
	default:
		text = "Ma'lumotni kiriting."
	}
	if action == wizard.ActionEdit {
		if hasCurrent && currentValue != "" {
			display := currentValue
			if step == wizard.StepPhoto {
				display = "rasm saqlangan"
			} else if step == wizard.StepPrice {
				display = currentValue + " so'm"
			} else if step == wizard.StepDescription && len([]rune(display)) > 60 {
				display = string([]rune(display)[:57]) + "..."
			}
			text += "\nJoriy qiymat: " + display
		}
		text += "\nO‘zgartirmaslik uchun /skip yuboring."
	}
	text += "\nBekor qilish uchun /cancel yuboring."
	return text
}

func renderMissingFields(steps []wizard.Step) string {
	labels := make([]string, 0, len(steps))
	for _, s := range steps {
		if label, ok := stepFieldLabels[s]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, s.String())
		}
	}
	return "Quyidagi maydonlarni to‘ldiring: " + strings.Join(labels, ", ") + "."
}

func renderOrderDetail(o domain.Order, lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buyurtma #%d (%s)\n", o.ID, o.Status)
	fmt.Fprintf(&b, "Foydalanuvchi: %d\n", o.ActorID)
	fmt.Fprintf(&b, "FIO: %s\n", o.FullName)
	fmt.Fprintf(&b, "Manzil: %s\n", o.Address)
	fmt.Fprintf(&b, "Telefon: %s\n", o.Phone)
	fmt.Fprintf(&b, "Jami: %d so'm\n", o.TotalMinor)
	fmt.Fprintf(&b, "Sana: %s\n", o.CreatedAt.Format("2006-01-02T15:04:05"))
	b.WriteString("Mahsulotlar:")
	if len(lines) == 0 {
		b.WriteString("\n- Mahsulotlar topilmadi.")
	} else {
		for _, line := range lines {
			b.WriteString("\n" + line)
		}
	}
	return b.String()
}
