package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession() *Session {
	s := &Session{}
	resetSession(s)
	return s
}

func TestClientFlow(t *testing.T) {
	d := NewDialog()
	s := newSession()

	r := d.StartClient(s)
	assert.Contains(t, r.Text, "Как вас зовут")
	assert.Equal(t, StateClientName, s.State)

	answers := []string{"Иван", "+7 900 000-00-00", "Казань", "плитка", "100к", "Санузел под ключ"}
	for _, a := range answers {
		r = d.Handle(s, Event{Text: a, FromID: 42, FromUsername: "ivan"})
		assert.False(t, r.Done)
	}
	assert.Equal(t, State(StateClientPhotos), s.State)

	r = d.Handle(s, Event{PhotoFileID: "ph1", FromID: 42, FromUsername: "ivan"})
	assert.False(t, r.Done)
	r = d.Handle(s, Event{PhotoFileID: "ph2", FromID: 42, FromUsername: "ivan"})
	assert.False(t, r.Done)

	r = d.Handle(s, Event{Text: "ГОТОВО", FromID: 42, FromUsername: "ivan"})
	require.True(t, r.Done)
	require.NotNil(t, r.Lead)

	lead := r.Lead
	assert.Equal(t, LeadTypeClient, lead.LeadType)
	assert.Equal(t, "Иван", *lead.Name)
	assert.Equal(t, "+7 900 000-00-00", *lead.Phone)
	assert.Equal(t, "Казань", *lead.City)
	assert.Equal(t, "плитка", *lead.WorkType)
	assert.Equal(t, "100к", *lead.Budget)
	assert.Equal(t, []string{"ph1", "ph2"}, lead.Attachments)

	require.NotNil(t, lead.Description)
	assert.Contains(t, *lead.Description, "Санузел под ключ")
	assert.Contains(t, *lead.Description, "[Telegram user: @ivan | id=42]")

	// очистка сессии — забота вызывающего, диалог черновик не трогает
	assert.Equal(t, State(StateClientPhotos), s.State)
}

func TestContractorFlow(t *testing.T) {
	d := NewDialog()
	s := newSession()

	r := d.StartContractor(s)
	assert.Contains(t, r.Text, "бригада")

	for _, a := range []string{"Бригада №1", "+7 911 111-11-11", "СПб", "электрика", "10 лет"} {
		r = d.Handle(s, Event{Text: a})
		assert.False(t, r.Done)
	}

	r = d.Handle(s, Event{Text: "Работаем по договору", FromID: 7})
	require.True(t, r.Done)
	require.NotNil(t, r.Lead)

	lead := r.Lead
	assert.Equal(t, LeadTypeContractor, lead.LeadType)
	assert.Equal(t, "электрика", *lead.WorkType, "специализация едет в work_type")
	assert.Equal(t, "10 лет", *lead.Budget, "опыт едет в budget")
	assert.Empty(t, lead.Attachments)
	assert.Contains(t, *lead.Description, "Работаем по договору")
	assert.Contains(t, *lead.Description, "@no_username")
}

func TestPhotosStepRepeatsPrompt(t *testing.T) {
	d := NewDialog()
	s := newSession()
	s.State = StateClientPhotos

	r := d.Handle(s, Event{Text: "вот ещё текст"})
	assert.False(t, r.Done)
	assert.Contains(t, r.Text, "ГОТОВО")
	assert.Equal(t, State(StateClientPhotos), s.State)
}

func TestDoneKeyword(t *testing.T) {
	for _, text := range []string{"готово", "ГОТОВО", "  Готово  ", "done", "DONE"} {
		assert.True(t, isDoneKeyword(text), text)
	}
	for _, text := range []string{"", "готово!", "всё"} {
		assert.False(t, isDoneKeyword(text), text)
	}
}

func TestAnswersAreTrimmed(t *testing.T) {
	d := NewDialog()
	s := newSession()
	d.StartClient(s)

	d.Handle(s, Event{Text: "  Пётр  "})
	assert.Equal(t, "Пётр", s.Data["name"])
}

func TestEmptyAnswersBecomeNil(t *testing.T) {
	d := NewDialog()
	s := newSession()
	d.StartClient(s)

	for i := 0; i < 6; i++ {
		d.Handle(s, Event{Text: "   "})
	}
	r := d.Handle(s, Event{Text: "готово", FromID: 1})
	require.True(t, r.Done)
	assert.Nil(t, r.Lead.Name)
	assert.Nil(t, r.Lead.Phone)
	assert.Nil(t, r.Lead.Budget)
	assert.NotNil(t, r.Lead.Description, "подпись отправителя есть всегда")
}

func TestStartDropsPreviousDraft(t *testing.T) {
	d := NewDialog()
	s := newSession()
	d.StartClient(s)
	d.Handle(s, Event{Text: "Иван"})
	s.Attachments = []string{"ph1"}

	d.StartContractor(s)
	assert.Equal(t, State(StateContractorName), s.State)
	assert.Empty(t, s.Data)
	assert.Empty(t, s.Attachments)
}

func TestHandleUnknownState(t *testing.T) {
	d := NewDialog()
	s := newSession()

	r := d.Handle(s, Event{Text: "привет"})
	assert.False(t, r.Done)
	assert.Contains(t, r.Text, "/start")
}
