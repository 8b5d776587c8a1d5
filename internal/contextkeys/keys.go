package contextkeys

import "context"

type messageTypeKey struct{}
type chatIDKey struct{}
type textKey struct{}

type MessageType string

const (
	MessageTypeText    MessageType = "text"
	MessageTypeCommand MessageType = "command"
	// MessageTypeOther covers stickers, photos, contacts and anything else
	// without text. It is answered like an empty answer.
	MessageTypeOther   MessageType = "other"
	MessageTypeUnknown MessageType = "unknown"
)

func WithMessageType(ctx context.Context, msgType MessageType) context.Context {
	return context.WithValue(ctx, messageTypeKey{}, msgType)
}

func GetMessageType(ctx context.Context) (MessageType, bool) {
	v := ctx.Value(messageTypeKey{})
	if v == nil {
		return MessageTypeUnknown, false
	}
	return v.(MessageType), true
}

func WithChatID(ctx context.Context, chatID int64) context.Context {
	return context.WithValue(ctx, chatIDKey{}, chatID)
}

func GetChatID(ctx context.Context) (int64, bool) {
	v := ctx.Value(chatIDKey{})
	if v == nil {
		return 0, false
	}
	return v.(int64), true
}

func WithText(ctx context.Context, text string) context.Context {
	return context.WithValue(ctx, textKey{}, text)
}

func GetText(ctx context.Context) string {
	v, _ := ctx.Value(textKey{}).(string)
	return v
}
