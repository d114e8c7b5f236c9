package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/session"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgAuthDone MsgKind = iota
	MsgUploadDone
)

type authDone struct {
	view   ViewState
	result *session.LoginResult
	err    error
}

type uploadDone struct {
	summary *models.UploadSummary
	err     error
}

// authDoneMsg is the constructor for [MsgAuthDone]
func authDoneMsg(view ViewState, result *session.LoginResult, err error) Msg {
	return Msg{kind: MsgAuthDone, data: authDone{view, result, err}}
}

// uploadDoneMsg is the constructor for [MsgUploadDone]
func uploadDoneMsg(summary *models.UploadSummary, err error) Msg {
	return Msg{kind: MsgUploadDone, data: uploadDone{summary, err}}
}
