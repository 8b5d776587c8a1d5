package utils

import "github.com/go-telegram/bot/models"

func BuildReplyKeyboard(choices [][]string) *models.ReplyKeyboardMarkup {
	rows := make([][]models.KeyboardButton, 0, len(choices))
	for _, choice := range choices {
		row := make([]models.KeyboardButton, 0, len(choice))
		for _, text := range choice {
			row = append(row, models.KeyboardButton{Text: text})
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return &models.ReplyKeyboardMarkup{
		Keyboard:       rows,
		ResizeKeyboard: true,
	}
}

func RemoveKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
}
