package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopbot/internal/domain"
	"github.com/vladislavdragonenkov/shopbot/internal/metrics"
)

// Action — вид мастера: создание нового товара или правка существующего.
type Action string

const (
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
)

// Step — явный типизированный шаг мастера. Шаги проходятся строго в
// фиксированном порядке; пропуск возможен только директивой «оставить
// текущее значение» в режиме правки.
type Step int

const (
	StepName Step = iota
	StepCategory
	StepPrice
	StepDescription
	StepPhoto
	// StepDone — терминальный шаг: все поля собраны, можно финализировать.
	StepDone
)

// Steps перечисляет пять шагов ввода в фиксированном порядке.
var Steps = [...]Step{StepName, StepCategory, StepPrice, StepDescription, StepPhoto}

// String возвращает человекочитаемое имя шага (для ошибок и подсказок).
func (s Step) String() string {
	switch s {
	case StepName:
		return "name"
	case StepCategory:
		return "category"
	case StepPrice:
		return "price"
	case StepDescription:
		return "description"
	case StepPhoto:
		return "photo"
	case StepDone:
		return "done"
	default:
		return fmt.Sprintf("step(%d)", int(s))
	}
}

// IsSkipToken распознаёт директиву «оставить текущее значение».
func IsSkipToken(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "skip", "/skip":
		return true
	}
	return false
}

// Catalog — зависимость мастера от сервиса каталога.
type Catalog interface {
	Get(id int64) (domain.Product, error)
	Create(name, category string, priceMinor int64, description, photoRef string) (int64, error)
	Update(id int64, upd domain.ProductUpdate) error
}

// state — накопленное состояние мастера одного администратора.
// Указатели отличают «поле ещё не вводилось» от пустого значения.
type state struct {
	action    Action
	step      Step
	productID int64 // цель правки; 0 при создании

	name        *string
	category    *string
	priceMinor  *int64
	description *string
	photoRef    *string
}

// Result описывает исход успешного перехода Advance.
type Result struct {
	// NextStep — шаг, которого мастер ожидает теперь.
	NextStep Step
	// Done сигнализирует, что все шаги пройдены и пора финализировать.
	Done bool
}

// Outcome описывает результат финализации.
type Outcome struct {
	Action    Action
	ProductID int64
	// Created — true, если создан новый товар (а не обновлён существующий).
	Created bool
}

// MissingFieldsError возвращается Finalize, когда в режиме создания
// заполнены не все поля. Мастер при этом не сбрасывается, а возвращается
// к первому недостающему шагу.
type MissingFieldsError struct {
	Steps []Step
}

func (e *MissingFieldsError) Error() string {
	names := make([]string, 0, len(e.Steps))
	for _, s := range e.Steps {
		names = append(names, s.String())
	}
	return "missing fields: " + strings.Join(names, ", ")
}

// Wizard ведёт пошаговые мастера создания/правки товара для администраторов.
// На одного администратора — не более одного мастера; повторный Start
// заменяет предыдущее состояние.
type Wizard struct {
	mu     sync.Mutex
	states map[int64]*state

	catalog Catalog
	logger  *log.Entry
	metrics *metrics.ShopMetrics
}

// New конструирует мастер товаров.
func New(catalog Catalog, logger *log.Entry) *Wizard {
	if logger == nil {
		logger = log.New().WithField("component", "wizard")
	}
	return &Wizard{
		states:  make(map[int64]*state),
		catalog: catalog,
		logger:  logger,
	}
}

// WithMetrics подключает метрики магазина.
func (w *Wizard) WithMetrics(m *metrics.ShopMetrics) *Wizard {
	w.metrics = m
	return w
}

// Start запускает мастер с первого шага. Для правки все пять полей
// заполняются текущими значениями товара, чтобы директива «оставить»
// дальше просто пропускала шаг.
func (w *Wizard) Start(actorID int64, action Action, productID int64) error {
	st := &state{action: action, step: StepName, productID: productID}

	if action == ActionEdit {
		product, err := w.catalog.Get(productID)
		if err != nil {
			return err
		}
		st.name = &product.Name
		st.category = &product.Category
		st.priceMinor = &product.PriceMinor
		st.description = &product.Description
		st.photoRef = &product.PhotoRef
	}

	w.mu.Lock()
	_, existed := w.states[actorID]
	w.states[actorID] = st
	w.mu.Unlock()

	if !existed && w.metrics != nil {
		w.metrics.RecordWizardStarted()
	}
	w.logger.WithFields(log.Fields{
		"actor_id":   actorID,
		"action":     action,
		"product_id": productID,
	}).Info("мастер товара запущен")
	return nil
}

// Active сообщает, запущен ли мастер, и на каком он шаге.
func (w *Wizard) Active(actorID int64) (Action, Step, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.states[actorID]
	if !ok {
		return "", 0, false
	}
	return st.action, st.step, true
}

// CurrentValue возвращает накопленное значение поля шага (для подсказки
// «Joriy qiymat» в режиме правки). Второй результат — есть ли значение.
func (w *Wizard) CurrentValue(actorID int64, step Step) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	st, ok := w.states[actorID]
	if !ok {
		return "", false
	}
	switch step {
	case StepName:
		if st.name != nil {
			return *st.name, true
		}
	case StepCategory:
		if st.category != nil {
			return *st.category, true
		}
	case StepPrice:
		if st.priceMinor != nil {
			return strconv.FormatInt(*st.priceMinor, 10), true
		}
	case StepDescription:
		if st.description != nil {
			return *st.description, true
		}
	case StepPhoto:
		if st.photoRef != nil {
			return *st.photoRef, true
		}
	case StepDone:
	}
	return "", false
}

// Advance принимает ввод текущего шага и переводит мастер на следующий.
// Ошибка валидации оставляет мастер на том же шаге для повторного ввода.
func (w *Wizard) Advance(actorID int64, input string) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	st, ok := w.states[actorID]
	if !ok {
		return Result{}, domain.ErrNoActiveWizard
	}

	text := strings.TrimSpace(input)
	// Директива «оставить текущее значение» действует только при правке.
	skip := st.action == ActionEdit && IsSkipToken(text)

	switch st.step {
	case StepName:
		if !skip {
			if text == "" {
				return Result{}, domain.ErrFieldRequired
			}
			st.name = &text
		}
		st.step = StepCategory

	case StepCategory:
		if !skip {
			if text == "" {
				return Result{}, domain.ErrFieldRequired
			}
			st.category = &text
		}
		st.step = StepPrice

	case StepPrice:
		if !skip {
			price, err := strconv.ParseInt(text, 10, 64)
			if err != nil || price <= 0 {
				return Result{}, domain.ErrPriceInvalid
			}
			st.priceMinor = &price
		}
		st.step = StepDescription

	case StepDescription:
		if !skip {
			if text == "" {
				return Result{}, domain.ErrFieldRequired
			}
			st.description = &text
		}
		st.step = StepPhoto

	case StepPhoto:
		if !skip {
			// Значение непрозрачно: file_id транспорта или URL.
			if text == "" {
				return Result{}, domain.ErrFieldRequired
			}
			st.photoRef = &text
		}
		st.step = StepDone

	case StepDone:
		// Все шаги уже пройдены; ждём финализации.
		return Result{NextStep: StepDone, Done: true}, nil
	}

	return Result{NextStep: st.step, Done: st.step == StepDone}, nil
}

// Cancel безусловно сбрасывает мастер. Возвращает false, если его не было.
func (w *Wizard) Cancel(actorID int64) bool {
	w.mu.Lock()
	st, ok := w.states[actorID]
	delete(w.states, actorID)
	w.mu.Unlock()

	if ok {
		if w.metrics != nil {
			w.metrics.RecordWizardFinished()
		}
		w.logger.WithFields(log.Fields{
			"actor_id": actorID,
			"action":   st.action,
		}).Info("мастер товара отменён")
	}
	return ok
}

// Finalize применяет собранные поля. Для создания все пять полей
// обязательны: при недостаче мастер возвращается к первому недостающему
// шагу и сообщает список (путь восстановления, а не жёсткий сбой).
// Для правки отсутствующее поле означает «без изменений».
func (w *Wizard) Finalize(actorID int64) (Outcome, error) {
	w.mu.Lock()
	st, ok := w.states[actorID]
	w.mu.Unlock()
	if !ok {
		return Outcome{}, domain.ErrNoActiveWizard
	}

	if st.action == ActionCreate {
		if missing := st.missingSteps(); len(missing) > 0 {
			w.mu.Lock()
			st.step = missing[0]
			w.mu.Unlock()
			return Outcome{}, &MissingFieldsError{Steps: missing}
		}

		pid, err := w.catalog.Create(*st.name, *st.category, *st.priceMinor, *st.description, *st.photoRef)
		if err != nil {
			// Состояние мастера не трогаем: администратор может повторить.
			return Outcome{}, err
		}
		w.discard(actorID)
		return Outcome{Action: ActionCreate, ProductID: pid, Created: true}, nil
	}

	upd := domain.ProductUpdate{
		Name:        st.name,
		Category:    st.category,
		PriceMinor:  st.priceMinor,
		Description: st.description,
		PhotoRef:    st.photoRef,
	}
	if err := w.catalog.Update(st.productID, upd); err != nil {
		return Outcome{}, err
	}
	w.discard(actorID)
	return Outcome{Action: ActionEdit, ProductID: st.productID}, nil
}

func (w *Wizard) discard(actorID int64) {
	w.mu.Lock()
	delete(w.states, actorID)
	w.mu.Unlock()
	if w.metrics != nil {
		w.metrics.RecordWizardFinished()
	}
}

// missingSteps возвращает шаги, чьи поля ещё не заполнены, в порядке обхода.
func (st *state) missingSteps() []Step {
	var missing []Step
	if st.name == nil || *st.name == "" {
		missing = append(missing, StepName)
	}
	if st.category == nil || *st.category == "" {
		missing = append(missing, StepCategory)
	}
	if st.priceMinor == nil || *st.priceMinor <= 0 {
		missing = append(missing, StepPrice)
	}
	if st.description == nil || *st.description == "" {
		missing = append(missing, StepDescription)
	}
	if st.photoRef == nil || *st.photoRef == "" {
		missing = append(missing, StepPhoto)
	}
	return missing
}
