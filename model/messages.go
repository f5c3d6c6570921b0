package model

import "time"

// Messages delivered to the terminal UI by background commands.

type TurnCompleteMsg struct {
	Message Message
}

type TurnFailedMsg struct {
	Err error
}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}

type ClockTickMsg time.Time

type CopiedMsg struct {
	Err error
}

type ExportedMsg struct {
	Path string
	Err  error
}
