package ui

import "github.com/DaanHessen/tensioncurve/internal/engine"

// adviceMsg carries rendered advice for generation id.
type adviceMsg struct {
	id       int
	rendered string
}

type savedMsg struct {
	key string
}

type loadedMsg struct {
	campaign *engine.Campaign
}

type exportedMsg struct {
	path string
}

type copiedMsg struct {
	what string
}

// fileChangedMsg is sent by the watcher when the campaign file changed
// outside this process.
type fileChangedMsg struct {
	path string
}

type statusClearMsg struct {
	id int
}

type errMsg struct {
	err error
}

// watchErrMsg reports a watcher failure; watching continues.
type watchErrMsg struct {
	err error
}
