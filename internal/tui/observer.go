// Author: Kaviru Hapuarachchi
// GitHub: https://github.com/kavirubc
// Created: 2026-10-18
// Last Modified: 2026-10-18

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/similigh/mirror-bot/internal/core/pipeline"
	"github.com/similigh/mirror-bot/internal/mirror"
)

// Observer forwards cycle progress to the model's status channel.
type Observer struct {
	ch chan<- tea.Msg
}

// NewObserver creates an Observer writing to ch.
func NewObserver(ch chan<- tea.Msg) *Observer {
	return &Observer{ch: ch}
}

// CycleStarted sends the discovered commits.
func (o *Observer) CycleStarted(id, checkpoint string, commits []mirror.Commit) {
	rows := make([]CommitRow, 0, len(commits))
	for _, c := range commits {
		rows = append(rows, CommitRow{SHA: c.SHA, Title: firstLine(c.Message)})
	}
	o.ch <- CycleStartedMsg{ID: id, Checkpoint: checkpoint, Commits: rows}
}

// CommitFinished sends the status of one commit.
func (o *Observer) CommitFinished(commit mirror.Commit, result *pipeline.Result, err error) {
	o.ch <- StatusFor(commit.SHA, result, err)
}

// StatusFor classifies a pipeline result for display.
func StatusFor(sha string, result *pipeline.Result, err error) CommitStatusMsg {
	switch {
	case err != nil:
		return CommitStatusMsg{SHA: sha, Status: StatusError, Message: err.Error()}
	case result == nil || result.Skipped:
		return CommitStatusMsg{SHA: sha, Status: StatusSkipped}
	case result.Conflicted():
		return CommitStatusMsg{SHA: sha, Status: StatusConflicted, Message: publishedMessage(result) + " (conflict)"}
	default:
		return CommitStatusMsg{SHA: sha, Status: StatusMirrored, Message: publishedMessage(result)}
	}
}

func publishedMessage(result *pipeline.Result) string {
	if result.Published == nil {
		return "replayed"
	}
	return result.Published.URL
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
