package intake

import (
	"strconv"
	"strings"
	"time"

	"alumni-check/internal/claim"
)

// CancelCommand aborts the flow at any step.
const CancelCommand = "/cancel"

type ResultKind int

const (
	// ResultNoSession: the user has no active session; the message
	// belongs to the stateless flow.
	ResultNoSession ResultKind = iota
	// ResultPrompt: send Prompt and wait for the next message. The
	// step may or may not have advanced.
	ResultPrompt
	// ResultCancelled: session destroyed on user request.
	ResultCancelled
	// ResultCompleted: all fields collected, session destroyed. The
	// caller runs the roster check on Claim.
	ResultCompleted
)

// Result is what a single intake turn produced.
type Result struct {
	Kind    ResultKind
	Prompt  string
	Claim   claim.Claim
	Teacher string
}

// Prompts, in the order the steps ask them.
const (
	promptGreeting = "👋 Привет! Спасибо за заявку в чат выпускников 30ки.\n\n" +
		"Для доступа в чат необходимо подтвердить, что ты выпускник 30ки.\n\n" +
		"Отправь мне твою фамилию и имя:"
	promptName      = "Пожалуйста, введи имя и фамилию (например: Иван Петров):"
	promptYear      = "Отлично! Теперь введи год окончания школы (например: 2015):"
	promptYearRetry = "Пожалуйста, введи корректный год (например: 2015):"
	promptClass     = "Хорошо! Теперь введи номер класса (1-11):"
	promptClassRetry = "Пожалуйста, введи корректный номер класса (1-11):"
	promptTeacher   = "Напиши Фамилию и/или Имя Отчество классного руководителя:"
	promptCancelled = "Ввод данных отменен. Отправьте /start чтобы начать заново."
)

// Manager drives the step-by-step collection of a claim.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Store returns the underlying session store.
func (m *Manager) Store() Store { return m.store }

// Start opens a fresh session for the user, unconditionally replacing any
// existing one, and returns the greeting prompt.
func (m *Manager) Start(userID int64) string {
	m.store.Set(Session{UserID: userID, Step: StepName, StartedAt: time.Now().UTC()})
	return promptGreeting
}

// Active reports whether the user is mid-flow.
func (m *Manager) Active(userID int64) bool {
	_, ok := m.store.Get(userID)
	return ok
}

// Cancel destroys the user's session if present. Used to fail closed when
// a handler hits an internal error mid-flow.
func (m *Manager) Cancel(userID int64) {
	m.store.Delete(userID)
}

// Handle consumes one message from a user in the flow. Invalid input
// re-prompts the same step; /cancel aborts at any step; the teacher step
// accepts anything and completes the session.
func (m *Manager) Handle(userID int64, text string) Result {
	s, ok := m.store.Get(userID)
	if !ok {
		return Result{Kind: ResultNoSession}
	}
	text = strings.TrimSpace(text)

	if strings.EqualFold(text, CancelCommand) {
		m.store.Delete(userID)
		return Result{Kind: ResultCancelled, Prompt: promptCancelled}
	}

	switch s.Step {
	case StepName:
		if len(strings.Fields(text)) < 2 {
			return Result{Kind: ResultPrompt, Prompt: promptName}
		}
		s.FullName = text
		s.Step = StepYear
		m.store.Set(s)
		return Result{Kind: ResultPrompt, Prompt: promptYear}

	case StepYear:
		y, err := atoiDigits(text)
		if err != nil || !claim.YearInRange(y) {
			return Result{Kind: ResultPrompt, Prompt: promptYearRetry}
		}
		s.Year = y
		s.Step = StepClass
		m.store.Set(s)
		return Result{Kind: ResultPrompt, Prompt: promptClass}

	case StepClass:
		k, err := atoiDigits(text)
		if err != nil || !claim.KlassInRange(k) {
			return Result{Kind: ResultPrompt, Prompt: promptClassRetry}
		}
		s.Klass = k
		s.Step = StepTeacher
		m.store.Set(s)
		return Result{Kind: ResultPrompt, Prompt: promptTeacher}

	case StepTeacher:
		// Terminal step: any input completes, session is destroyed
		// regardless of the roster outcome downstream.
		m.store.Delete(userID)
		return Result{
			Kind:    ResultCompleted,
			Claim:   claim.Claim{FullName: s.FullName, Year: s.Year, Klass: s.Klass},
			Teacher: text,
		}

	default:
		// Unknown step means corrupted state: destroy it rather than
		// leaving the user stuck.
		m.store.Delete(userID)
		return Result{Kind: ResultNoSession}
	}
}

// atoiDigits parses all-digit input only; signs and spaces are rejected
// so "+7" does not pass as a class number.
func atoiDigits(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.Atoi(s)
}
