package survey

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/looplab/fsm"

	"github.com/BatmanBruc/feedback-bot/internal/i18n"
	"github.com/BatmanBruc/feedback-bot/types"
)

const eventAnswer = "answer"

// Reply is what the user gets back for one message. Choices are reply
// keyboard rows; RemoveKeyboard hides a previously shown keyboard.
type Reply struct {
	Text           string
	Choices        [][]string
	RemoveKeyboard bool
}

type Outcome struct {
	Session *types.Session
	Reply   Reply
	// Record is set only when the message completed the interview.
	Record *types.Record
}

func (o Outcome) Finished() bool {
	return o.Record != nil
}

type Machine struct {
	variant Variant
	catalog *i18n.Catalog
	events  fsm.Events
}

func NewMachine(variant Variant, catalog *i18n.Catalog) (*Machine, error) {
	if err := catalog.Validate(i18n.Languages, variant.Keys()); err != nil {
		return nil, fmt.Errorf("survey.NewMachine: variant %s: %w", variant.Name, err)
	}
	return &Machine{
		variant: variant,
		catalog: catalog,
		events:  buildEvents(variant),
	}, nil
}

func buildEvents(v Variant) fsm.Events {
	order := v.Order()
	events := make(fsm.Events, 0, len(order))
	for i := 0; i < len(order)-1; i++ {
		events = append(events, fsm.EventDesc{
			Name: eventAnswer,
			Src:  []string{string(order[i])},
			Dst:  string(order[i+1]),
		})
	}
	return events
}

func (m *Machine) Variant() Variant {
	return m.variant
}

// Transition applies one inbound message to a copy of the session.
func (m *Machine) Transition(cur *types.Session, text string, now time.Time) Outcome {
	s := cur.Clone()
	if s == nil {
		s = types.NewSession(0)
	}
	s.UpdatedAt = now

	if m.variant.IsRestart(text) {
		return m.restart(s)
	}

	if s.Step == types.StepAwaitingLanguage {
		lang, ok := i18n.ResolveLanguage(text)
		if !ok {
			return Outcome{Session: s, Reply: m.languageReply(m.catalog.RetryLanguage)}
		}
		next, err := m.advance(s.Step, eventAnswer)
		if err != nil {
			return m.restart(s)
		}
		s.Language = lang
		s.Step = next
		return Outcome{Session: s, Reply: m.prompt(s)}
	}

	field, ok := FieldFor(s.Step)
	if !ok || s.Language == "" {
		return m.restart(s)
	}
	if strings.TrimSpace(text) == "" {
		return Outcome{Session: s, Reply: m.prompt(s)}
	}

	next, err := m.advance(s.Step, eventAnswer)
	if err != nil {
		// the step is not part of this variant, e.g. after a variant switch
		return m.restart(s)
	}
	if s.Answers == nil {
		s.Answers = map[types.Field]string{}
	}
	s.Answers[field] = text
	s.Step = next

	if next != types.StepComplete {
		return Outcome{Session: s, Reply: m.prompt(s)}
	}

	rec := types.NewRecord(s.ChatID, s.Language, s.Answers, now)
	return Outcome{
		Session: types.NewSession(s.ChatID),
		Reply:   Reply{Text: m.Render(s.Language, types.StepComplete, s.Answers)},
		Record:  &rec,
	}
}

// restart drops everything collected so far, whatever the current step.
func (m *Machine) restart(s *types.Session) Outcome {
	return Outcome{
		Session: types.NewSession(s.ChatID),
		Reply:   m.languageReply(m.catalog.Welcome),
	}
}

func (m *Machine) advance(step types.Step, event string) (types.Step, error) {
	f := fsm.NewFSM(string(step), m.events, fsm.Callbacks{})
	if err := f.Event(context.Background(), event); err != nil {
		return step, err
	}
	return types.Step(f.Current()), nil
}

// Render returns the prompt for a step with placeholders filled from answers.
func (m *Machine) Render(lang i18n.Lang, step types.Step, answers map[types.Field]string) string {
	values := make(map[string]string, len(answers))
	for k, v := range answers {
		values[string(k)] = v
	}
	return m.catalog.Render(lang, stepKeys[step], values)
}

func (m *Machine) prompt(s *types.Session) Reply {
	r := Reply{Text: m.Render(s.Language, s.Step, s.Answers)}
	switch s.Step {
	case types.StepAwaitingRating:
		r.Choices = ratingChoices()
	case types.StepAwaitingName, types.StepAwaitingCity:
		r.RemoveKeyboard = true
	}
	return r
}

func (m *Machine) languageReply(text string) Reply {
	return Reply{Text: text, Choices: [][]string{i18n.Labels()}}
}

func ratingChoices() [][]string {
	rows := make([][]string, 2)
	for i := 1; i <= 10; i++ {
		row := (i - 1) / 5
		rows[row] = append(rows[row], strconv.Itoa(i))
	}
	return rows
}
