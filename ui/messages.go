package ui

import (
	"webassist/model"
)

type Message = model.Message

type turnCompleteMsg = model.TurnCompleteMsg
type turnFailedMsg = model.TurnFailedMsg
type markdownRenderedMsg = model.MarkdownRenderedMsg
type clockTickMsg = model.ClockTickMsg
type copiedMsg = model.CopiedMsg
type exportedMsg = model.ExportedMsg
