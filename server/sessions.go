package server

import (
	"context"
	"net/http"
	"time"

	"github.com/kdwils/eth-faucet-web/form"
	"github.com/kdwils/eth-faucet-web/pkg/cache"
	"github.com/kdwils/eth-faucet-web/pkg/session"
)

const sessionSweepInterval = 5 * time.Minute

// Sessions maps session cookies to the form each browser owns.
type Sessions struct {
	issuer  session.Issuer
	forms   *cache.Cache[string, *form.Form]
	newForm func() *form.Form
}

func NewSessions(issuer session.Issuer, newForm func() *form.Form) *Sessions {
	forms := cache.New[string, *form.Form](
		cache.WithCleanup[string, *form.Form](sessionSweepInterval, func(_ string, f *form.Form) bool {
			return f.IdleSince(time.Now().Add(-issuer.TTL()))
		}),
	)
	return &Sessions{
		issuer:  issuer,
		forms:   forms,
		newForm: newForm,
	}
}

// Start evicts idle forms until ctx is done.
func (s *Sessions) Start(ctx context.Context) {
	s.forms.StartCleanup(ctx)
}

func (s *Sessions) Len() int {
	return s.forms.Size()
}

// Form returns the form of the browser behind r, starting a session and
// setting its cookie when the request carries no valid one.
func (s *Sessions) Form(w http.ResponseWriter, r *http.Request) (*form.Form, error) {
	if sess, err := s.issuer.FromRequest(r); err == nil {
		return s.forms.GetOrSet(sess.ID, s.newForm), nil
	}

	sess, token, err := s.issuer.New()
	if err != nil {
		return nil, err
	}
	s.issuer.WriteCookie(w, sess, token)
	return s.forms.GetOrSet(sess.ID, s.newForm), nil
}
