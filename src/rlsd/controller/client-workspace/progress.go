package clientworkspace

import (
	"fmt"
	"math"
	"strings"

	"github.com/uber/rust-lsp/src/rlsd/entity"
)

type progressEntry struct {
	title      string
	message    string
	percentage *float64
}

// progressTracker keeps the progress tokens the language server reported as outstanding.
// The most recently updated token describes the session state.
type progressTracker struct {
	tokens map[string]*progressEntry
	order  []string
}

func newProgressTracker() *progressTracker {
	return &progressTracker{tokens: make(map[string]*progressEntry)}
}

func (t *progressTracker) begin(id string, title string) {
	t.touch(id).title = title
}

// report updates the message and percentage of id, starting it when unknown.
// A zero message keeps the previous one.
func (t *progressTracker) report(id string, message string, percentage *float64) {
	e := t.touch(id)
	if message != "" {
		e.message = message
	}
	e.percentage = percentage
}

func (t *progressTracker) end(id string) {
	if _, ok := t.tokens[id]; !ok {
		return
	}
	delete(t.tokens, id)
	t.order = remove(t.order, id)
}

func (t *progressTracker) outstanding() int {
	return len(t.tokens)
}

// state is ready without outstanding work, otherwise the progress of the latest token.
func (t *progressTracker) state() entity.SessionState {
	if len(t.order) == 0 {
		return entity.ReadyState()
	}
	return entity.ProgressState(t.tokens[t.order[len(t.order)-1]].describe())
}

func (t *progressTracker) touch(id string) *progressEntry {
	e, ok := t.tokens[id]
	if !ok {
		e = &progressEntry{}
		t.tokens[id] = e
	}
	t.order = append(remove(t.order, id), id)
	return e
}

// describe prefers the percentage, then the message, then the bracketed title.
func (e *progressEntry) describe() string {
	switch {
	case e.percentage != nil:
		return fmt.Sprintf("%d%%", int(math.Round(*e.percentage*100)))
	case e.message != "":
		return e.message
	case e.title != "":
		return "[" + strings.ToLower(e.title) + "]"
	default:
		return ""
	}
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
