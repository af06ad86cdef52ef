package bootstrap

import (
	"github.com/dalemusser/fhurl/i18n"
	"github.com/dalemusser/fhurl/internal/accounts"
	"github.com/dalemusser/fhurl/session"
)

// Backends are opened once at startup and shared by every request.
type Backends struct {
	Sessions *session.Manager
	Accounts *accounts.Store
	Bundle   *i18n.Bundle
}
