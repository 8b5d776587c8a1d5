package survey

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BatmanBruc/feedback-bot/internal/i18n"
	"github.com/BatmanBruc/feedback-bot/types"
)

const (
	VariantFull  = "full"
	VariantShort = "short"
)

var ErrUnknownVariant = errors.New("unknown variant")

// Variant describes one deployed interview: which data steps are asked, in
// which order, and how a finished record is laid out as a row.
type Variant struct {
	Name     string
	Steps    []types.Step
	Columns  []types.Column
	Restarts []string
}

var defaultRestarts = []string{"/start", "/restart"}

var variants = map[string]Variant{
	VariantFull: {
		Name: VariantFull,
		Steps: []types.Step{
			types.StepAwaitingName,
			types.StepAwaitingPhone,
			types.StepAwaitingBirthday,
			types.StepAwaitingConsultant,
			types.StepAwaitingRating,
			types.StepAwaitingCity,
			types.StepAwaitingComment,
		},
		Columns: []types.Column{
			types.FieldColumn(types.FieldName),
			types.FieldColumn(types.FieldPhone),
			types.FieldColumn(types.FieldBirthday),
			types.FieldColumn(types.FieldConsultant),
			types.FieldColumn(types.FieldRating),
			types.FieldColumn(types.FieldCity),
			types.FieldColumn(types.FieldComment),
			types.ColumnTimestamp,
		},
		Restarts: defaultRestarts,
	},
	VariantShort: {
		Name: VariantShort,
		Steps: []types.Step{
			types.StepAwaitingName,
			types.StepAwaitingConsultant,
			types.StepAwaitingRating,
			types.StepAwaitingCity,
			types.StepAwaitingComment,
		},
		Columns: []types.Column{
			types.FieldColumn(types.FieldName),
			types.FieldColumn(types.FieldConsultant),
			types.FieldColumn(types.FieldRating),
			types.FieldColumn(types.FieldCity),
			types.FieldColumn(types.FieldComment),
			types.ColumnTimestamp,
			types.ColumnLanguage,
		},
		Restarts: defaultRestarts,
	},
}

var stepFields = map[types.Step]types.Field{
	types.StepAwaitingName:       types.FieldName,
	types.StepAwaitingPhone:      types.FieldPhone,
	types.StepAwaitingBirthday:   types.FieldBirthday,
	types.StepAwaitingConsultant: types.FieldConsultant,
	types.StepAwaitingRating:     types.FieldRating,
	types.StepAwaitingCity:       types.FieldCity,
	types.StepAwaitingComment:    types.FieldComment,
}

var stepKeys = map[types.Step]i18n.Key{
	types.StepAwaitingName:       i18n.KeyAskName,
	types.StepAwaitingPhone:      i18n.KeyAskPhone,
	types.StepAwaitingBirthday:   i18n.KeyAskBirthday,
	types.StepAwaitingConsultant: i18n.KeyConsultant,
	types.StepAwaitingRating:     i18n.KeyRate,
	types.StepAwaitingCity:       i18n.KeyCity,
	types.StepAwaitingComment:    i18n.KeyComment,
	types.StepComplete:           i18n.KeyThankYou,
}

func VariantByName(name string) (Variant, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = VariantFull
	}
	v, ok := variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("survey.VariantByName: %w: %q", ErrUnknownVariant, name)
	}
	return v, nil
}

// FieldFor returns the answer field captured at a data step.
func FieldFor(step types.Step) (types.Field, bool) {
	f, ok := stepFields[step]
	return f, ok
}

// Order is the full step sequence including the language and complete steps.
func (v Variant) Order() []types.Step {
	out := make([]types.Step, 0, len(v.Steps)+2)
	out = append(out, types.StepAwaitingLanguage)
	out = append(out, v.Steps...)
	return append(out, types.StepComplete)
}

func (v Variant) Fields() []types.Field {
	out := make([]types.Field, 0, len(v.Steps))
	for _, s := range v.Steps {
		out = append(out, stepFields[s])
	}
	return out
}

// Keys lists the catalog keys reachable in this variant.
func (v Variant) Keys() []i18n.Key {
	out := make([]i18n.Key, 0, len(v.Steps)+1)
	for _, s := range v.Steps {
		out = append(out, stepKeys[s])
	}
	return append(out, i18n.KeyThankYou)
}

// IsRestart reports whether text is a restart command, "/start@my_bot" included.
func (v Variant) IsRestart(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	cmd := fields[0]
	if strings.Contains(cmd, "@") {
		cmd = strings.SplitN(cmd, "@", 2)[0]
	}
	for _, r := range v.Restarts {
		if strings.EqualFold(cmd, r) {
			return true
		}
	}
	return false
}
