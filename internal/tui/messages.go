package tui

import (
	"github.com/matheuskafuri/folio/internal/resolve"
)

// resultMsg carries a published result of one domain session. gen ties it
// to the session that produced it so results of replaced sessions are
// dropped.
type resultMsg struct {
	domain int
	gen    int
	result resolve.Result
}

type openErrMsg struct {
	err error
}
