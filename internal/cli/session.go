package cli

import (
	"strings"

	"quire/internal/seed"
	"quire/internal/session"
	"quire/internal/store"
)

// loadSession seeds a session from --doc, or from the welcome document when no fixture is
// given. The fixture's active node starts selected.
func loadSession(app *App) (*session.Session, error) {
	doc := seed.WelcomeDocument()
	if p := strings.TrimSpace(app.Doc); p != "" {
		d, err := seed.Load(p)
		if err != nil {
			return nil, err
		}
		doc = d
	}
	db, err := seed.Open(doc, store.WithLogger(app.log.Logger))
	if err != nil {
		return nil, err
	}
	sess := session.New(db, session.WithLogger(app.log.Logger))
	if doc.Active != "" {
		if err := sess.Select(doc.Active); err != nil {
			return nil, err
		}
	}
	app.log.Debug().Str("doc", app.Doc).Int("nodes", len(doc.Nodes)).Msg("session loaded")
	return sess, nil
}
