package survey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BatmanBruc/feedback-bot/internal/i18n"
	"github.com/BatmanBruc/feedback-bot/types"
)

func newTestMachine(t *testing.T, variant string) *Machine {
	t.Helper()
	v, err := VariantByName(variant)
	require.NoError(t, err)
	c, err := i18n.NewCatalog(i18n.BrandStandard)
	require.NoError(t, err)
	m, err := NewMachine(v, c)
	require.NoError(t, err)
	return m
}

var answersByField = map[types.Field]string{
	types.FieldName:       "Aigerim",
	types.FieldPhone:      "+77010000000",
	types.FieldBirthday:   "01.02.1990",
	types.FieldConsultant: "Bekzat",
	types.FieldRating:     "10",
	types.FieldCity:       "Almaty",
	types.FieldComment:    "Всё отлично",
}

func runInterview(t *testing.T, m *Machine, s *types.Session) Outcome {
	t.Helper()
	now := time.Now()
	out := m.Transition(s, "🇷🇺 Русский", now)
	require.Equal(t, types.StepAwaitingName, out.Session.Step)
	for _, f := range m.Variant().Fields() {
		out = m.Transition(out.Session, answersByField[f], now)
	}
	return out
}

func TestTransitionFullInterviewCollectsExactlyTraversedFields(t *testing.T) {
	for _, name := range []string{VariantFull, VariantShort} {
		t.Run(name, func(t *testing.T) {
			m := newTestMachine(t, name)

			out := runInterview(t, m, types.NewSession(42))

			require.True(t, out.Finished())
			got := out.Record.Answers()
			want := map[types.Field]string{}
			for _, f := range m.Variant().Fields() {
				want[f] = answersByField[f]
			}
			assert.Equal(t, want, got)
			assert.Equal(t, i18n.RU, out.Record.Language())
			assert.Equal(t, int64(42), out.Record.ChatID())

			assert.Equal(t, types.StepAwaitingLanguage, out.Session.Step)
			assert.Empty(t, out.Session.Answers)
			assert.Equal(t, "Спасибо, Aigerim! Отзыв сохранен. Консультант Bekzat получит уведомление.", out.Reply.Text)
		})
	}
}

func TestTransitionStepOrder(t *testing.T) {
	m := newTestMachine(t, VariantFull)
	now := time.Now()

	out := m.Transition(types.NewSession(1), "🇰🇿 Қазақша", now)
	steps := []types.Step{out.Session.Step}
	for out.Session.Step != types.StepAwaitingLanguage {
		out = m.Transition(out.Session, "x", now)
		steps = append(steps, out.Session.Step)
	}

	assert.Equal(t, []types.Step{
		types.StepAwaitingName,
		types.StepAwaitingPhone,
		types.StepAwaitingBirthday,
		types.StepAwaitingConsultant,
		types.StepAwaitingRating,
		types.StepAwaitingCity,
		types.StepAwaitingComment,
		types.StepAwaitingLanguage,
	}, steps)
}

func TestTransitionShortVariantSkipsPhoneAndBirthday(t *testing.T) {
	m := newTestMachine(t, VariantShort)
	now := time.Now()

	out := m.Transition(types.NewSession(1), "🇺🇿 O‘zbekcha", now)
	out = m.Transition(out.Session, "Aigerim", now)

	assert.Equal(t, types.StepAwaitingConsultant, out.Session.Step)
	assert.Equal(t, "👤 Aigerim, kim sizga yordam berdi?", out.Reply.Text)
}

func TestTransitionRestartFromAnyStep(t *testing.T) {
	m := newTestMachine(t, VariantFull)
	now := time.Now()

	s := m.Transition(types.NewSession(5), "ru", now).Session
	for s.Step != types.StepAwaitingLanguage {
		for _, cmd := range []string{"/start", "/restart", "/start@feedback_bot"} {
			out := m.Transition(s, cmd, now)
			assert.Equal(t, types.StepAwaitingLanguage, out.Session.Step, "from %s", s.Step)
			assert.Empty(t, out.Session.Answers)
			assert.Equal(t, int64(5), out.Session.ChatID)
			assert.False(t, out.Finished())
			assert.Equal(t, [][]string{i18n.Labels()}, out.Reply.Choices)

			again := m.Transition(out.Session, cmd, now)
			assert.Equal(t, out.Session.Step, again.Session.Step)
			assert.Equal(t, out.Reply, again.Reply)
		}
		s = m.Transition(s, "answer", now).Session
	}
}

func TestTransitionInvalidLanguageStaysAndRepeatsPrompt(t *testing.T) {
	m := newTestMachine(t, VariantFull)
	now := time.Now()
	s := types.NewSession(1)

	first := m.Transition(s, "hello", now)
	second := m.Transition(first.Session, "hello", now)

	assert.Equal(t, types.StepAwaitingLanguage, first.Session.Step)
	assert.Equal(t, types.StepAwaitingLanguage, second.Session.Step)
	assert.Empty(t, first.Session.Language)
	assert.Equal(t, "Выберите язык из клавиатуры", first.Reply.Text)
	assert.Equal(t, first.Reply, second.Reply)
	assert.Equal(t, [][]string{i18n.Labels()}, first.Reply.Choices)
}

func TestTransitionEmptyInputRepeatsCurrentPrompt(t *testing.T) {
	m := newTestMachine(t, VariantFull)
	now := time.Now()

	out := m.Transition(types.NewSession(1), "ru", now)
	again := m.Transition(out.Session, "   ", now)

	assert.Equal(t, types.StepAwaitingName, again.Session.Step)
	assert.Empty(t, again.Session.Answers)
	assert.Equal(t, out.Reply.Text, again.Reply.Text)
}

func TestTransitionDoesNotValidateFreeText(t *testing.T) {
	m := newTestMachine(t, VariantFull)
	now := time.Now()

	s := m.Transition(types.NewSession(1), "ru", now).Session
	for s.Step != types.StepAwaitingRating {
		s = m.Transition(s, "x", now).Session
	}
	out := m.Transition(s, "eleven out of ten", now)

	assert.Equal(t, types.StepAwaitingCity, out.Session.Step)
	assert.Equal(t, "eleven out of ten", out.Session.Answers[types.FieldRating])
	assert.True(t, out.Reply.RemoveKeyboard)
}

func TestTransitionKeyboards(t *testing.T) {
	m := newTestMachine(t, VariantFull)
	now := time.Now()

	out := m.Transition(types.NewSession(1), "ru", now)
	assert.True(t, out.Reply.RemoveKeyboard)

	for out.Session.Step != types.StepAwaitingRating {
		out = m.Transition(out.Session, "Bekzat", now)
	}
	assert.Equal(t, [][]string{{"1", "2", "3", "4", "5"}, {"6", "7", "8", "9", "10"}}, out.Reply.Choices)
	assert.Equal(t, "⭐ Оцените работу Bekzat от 1 до 10:", out.Reply.Text)
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	m := newTestMachine(t, VariantFull)
	s := types.NewSession(1)
	s.Step = types.StepAwaitingName
	s.Language = i18n.RU

	_ = m.Transition(s, "Aigerim", time.Now())

	assert.Equal(t, types.StepAwaitingName, s.Step)
	assert.Empty(t, s.Answers)
}

func TestTransitionRecoversFromStepOutsideVariant(t *testing.T) {
	m := newTestMachine(t, VariantShort)
	s := types.NewSession(1)
	s.Step = types.StepAwaitingPhone
	s.Language = i18n.RU
	s.Answers[types.FieldName] = "A"

	out := m.Transition(s, "+7701", time.Now())

	assert.Equal(t, types.StepAwaitingLanguage, out.Session.Step)
	assert.Empty(t, out.Session.Answers)
	assert.False(t, out.Finished())
}

func TestRenderRatingPrompt(t *testing.T) {
	m := newTestMachine(t, VariantFull)

	out := m.Render(i18n.RU, types.StepAwaitingRating, map[types.Field]string{
		types.FieldName:       "Aigerim",
		types.FieldConsultant: "Bekzat",
	})

	assert.Contains(t, out, "Bekzat")
	assert.NotContains(t, out, "{name}")
	assert.NotContains(t, out, "{consultant}")
}

func TestNewMachineRejectsIncompleteCatalog(t *testing.T) {
	v, err := VariantByName(VariantFull)
	require.NoError(t, err)
	c, err := i18n.NewCatalog(i18n.BrandStandard)
	require.NoError(t, err)
	c.Override(i18n.UZ, i18n.KeyAskBirthday, "")

	_, err = NewMachine(v, c)
	assert.ErrorIs(t, err, i18n.ErrMissingTemplate)

	short, err := VariantByName(VariantShort)
	require.NoError(t, err)
	_, err = NewMachine(short, c)
	assert.NoError(t, err, "short variant never asks for the birthday")
}

func TestVariantByName(t *testing.T) {
	v, err := VariantByName("")
	require.NoError(t, err)
	assert.Equal(t, VariantFull, v.Name)

	_, err = VariantByName("long")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}
