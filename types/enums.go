package types

type Step string

const (
	StepAwaitingLanguage   Step = "awaiting_language"
	StepAwaitingName       Step = "awaiting_name"
	StepAwaitingPhone      Step = "awaiting_phone"
	StepAwaitingBirthday   Step = "awaiting_birthday"
	StepAwaitingConsultant Step = "awaiting_consultant"
	StepAwaitingRating     Step = "awaiting_rating"
	StepAwaitingCity       Step = "awaiting_city"
	StepAwaitingComment    Step = "awaiting_comment"
	StepComplete           Step = "complete"
)

type Field string

const (
	FieldName       Field = "name"
	FieldPhone      Field = "phone"
	FieldBirthday   Field = "birthday"
	FieldConsultant Field = "consultant"
	FieldRating     Field = "rating"
	FieldCity       Field = "city"
	FieldComment    Field = "comment"
)

// Column is one cell of a persisted row: an answer field or one of the
// record-level columns below.
type Column string

const (
	ColumnTimestamp Column = "timestamp"
	ColumnLanguage  Column = "language"
)

func FieldColumn(f Field) Column {
	return Column(f)
}

const TimestampLayout = "2006-01-02 15:04:05"
