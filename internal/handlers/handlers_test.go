package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/BatmanBruc/feedback-bot/internal/contextkeys"
	"github.com/BatmanBruc/feedback-bot/internal/survey"
)

type mockConversation struct {
	mock.Mock
}

func (m *mockConversation) Handle(ctx context.Context, chatID int64, text string) (survey.Reply, error) {
	args := m.Called(ctx, chatID, text)
	return args.Get(0).(survey.Reply), args.Error(1)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, chatID int64, reply survey.Reply) error {
	return m.Called(ctx, chatID, reply).Error(0)
}

func annotated(chatID int64, typ contextkeys.MessageType, text string) context.Context {
	ctx := contextkeys.WithChatID(context.Background(), chatID)
	ctx = contextkeys.WithMessageType(ctx, typ)
	return contextkeys.WithText(ctx, text)
}

func TestMainHandlerForwardsReply(t *testing.T) {
	reply := survey.Reply{Text: "👋 Как вас зовут?", RemoveKeyboard: true}
	conv := &mockConversation{}
	conv.On("Handle", mock.Anything, int64(9), "ru").Return(reply, nil).Once()
	send := &mockSender{}
	send.On("Send", mock.Anything, int64(9), reply).Return(nil).Once()

	h := NewHandlers(conv, send, zerolog.Nop())
	h.MainHandler(annotated(9, contextkeys.MessageTypeText, "ru"), nil, &models.Update{})

	conv.AssertExpectations(t)
	send.AssertExpectations(t)
}

func TestMainHandlerNonTextRepeatsQuestion(t *testing.T) {
	conv := &mockConversation{}
	conv.On("Handle", mock.Anything, int64(9), "").Return(survey.Reply{Text: "q"}, nil).Once()
	send := &mockSender{}
	send.On("Send", mock.Anything, int64(9), survey.Reply{Text: "q"}).Return(nil).Once()

	h := NewHandlers(conv, send, zerolog.Nop())
	h.MainHandler(annotated(9, contextkeys.MessageTypeOther, ""), nil, &models.Update{})

	conv.AssertExpectations(t)
}

func TestMainHandlerCommandGoesThroughConversation(t *testing.T) {
	conv := &mockConversation{}
	conv.On("Handle", mock.Anything, int64(9), "/start").Return(survey.Reply{Text: "w"}, nil).Once()
	send := &mockSender{}
	send.On("Send", mock.Anything, int64(9), mock.Anything).Return(nil).Once()

	h := NewHandlers(conv, send, zerolog.Nop())
	h.MainHandler(annotated(9, contextkeys.MessageTypeCommand, "/start"), nil, &models.Update{})

	conv.AssertExpectations(t)
}

func TestMainHandlerEngineErrorSendsNothing(t *testing.T) {
	conv := &mockConversation{}
	conv.On("Handle", mock.Anything, int64(9), "x").Return(survey.Reply{}, errors.New("redis down")).Once()
	send := &mockSender{}

	h := NewHandlers(conv, send, zerolog.Nop())
	h.MainHandler(annotated(9, contextkeys.MessageTypeText, "x"), nil, &models.Update{})

	send.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestMainHandlerWithoutChatID(t *testing.T) {
	conv := &mockConversation{}
	h := NewHandlers(conv, &mockSender{}, zerolog.Nop())

	h.MainHandler(context.Background(), nil, &models.Update{ID: 3})

	conv.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything, mock.Anything)
}

func TestMainHandlerTransportErrorIsIgnored(t *testing.T) {
	conv := &mockConversation{}
	conv.On("Handle", mock.Anything, int64(9), "x").Return(survey.Reply{Text: "q"}, nil).Once()
	send := &mockSender{}
	send.On("Send", mock.Anything, int64(9), mock.Anything).Return(errors.New("timeout")).Once()

	h := NewHandlers(conv, send, zerolog.Nop())

	assert.NotPanics(t, func() {
		h.MainHandler(annotated(9, contextkeys.MessageTypeText, "x"), nil, &models.Update{})
	})
	send.AssertExpectations(t)
}
