// Package local adapts the auth service to the provider contract for
// in-process clients: same binary, no transport.
package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/coursedesk/coursedesk-server/internal/logger"
	"github.com/coursedesk/coursedesk-server/internal/model"
	"github.com/coursedesk/coursedesk-server/internal/service"
)

// Provider implements model.AuthProvider on top of the auth service.
//
// Every state change is stamped with the next value of a monotonic sequence
// before it is published, so consumers can merge the racing CurrentSession
// and change-notification paths without ambiguity. Handlers are invoked in
// publication order.
type Provider struct {
	auth    *service.Auth
	manager model.TokenManager
	logger  *logger.Logger

	mu            sync.Mutex
	notifyMu      sync.Mutex
	seq           uint64
	current       model.Session
	refreshToken  string
	recoveryToken string
	handlers      map[uint64]func(model.Session)
	nextID        uint64
}

var _ model.AuthProvider = (*Provider)(nil)

func New(auth *service.Auth, manager model.TokenManager, logger *logger.Logger) *Provider {
	return &Provider{
		auth:     auth,
		manager:  manager,
		logger:   logger,
		current:  model.Session{State: model.SessionUnauthenticated},
		handlers: make(map[uint64]func(model.Session)),
	}
}

func (p *Provider) CurrentSession(_ context.Context) (model.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current, nil
}

func (p *Provider) OnSessionChange(handler func(model.Session)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.handlers[id] = handler
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

// SignUp registers a new account and establishes a full session.
func (p *Provider) SignUp(ctx context.Context, email, name, password string) (model.Session, error) {
	user, tokens, err := p.auth.SignUp(ctx, email, name, password)
	if err != nil {
		return model.Session{}, err
	}
	return p.establish(user, tokens, false, ""), nil
}

// SignIn authenticates credentials and establishes a full session.
func (p *Provider) SignIn(ctx context.Context, email, password string) (model.Session, error) {
	user, tokens, err := p.auth.SignIn(ctx, email, password)
	if err != nil {
		return model.Session{}, err
	}
	return p.establish(user, tokens, false, ""), nil
}

// ConsumeRecoveryLink validates a recovery token and establishes a
// restricted session. The error from an invalid token is returned verbatim
// so the caller can mark the link failed.
func (p *Provider) ConsumeRecoveryLink(_ context.Context, recoveryToken string) (model.Session, error) {
	userID, err := p.manager.ParseRecoveryToken(recoveryToken)
	if err != nil {
		p.logger.Info("local provider: rejected recovery link", "error", err.Error())
		return model.Session{}, fmt.Errorf("invalid recovery link: %w", err)
	}

	session := p.establish(
		model.User{ID: userID},
		service.SessionTokens{AccessToken: recoveryToken},
		true,
		recoveryToken,
	)
	return session, nil
}

// SignOut revokes the refresh token and clears the session. On revocation
// failure the session is left in place and the error is surfaced.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	refresh := p.refreshToken
	p.mu.Unlock()

	if refresh != "" {
		if err := p.auth.SignOut(ctx, refresh); err != nil {
			return err
		}
	}

	p.clear()
	return nil
}

// UpdatePassword is valid only within a recovery-restricted session. On
// success every session for the user is revoked server-side, so the local
// session is cleared as well.
func (p *Provider) UpdatePassword(ctx context.Context, newPassword string) error {
	p.mu.Lock()
	recovery := p.recoveryToken
	restricted := p.current.Restricted && p.current.State == model.SessionAuthenticated
	p.mu.Unlock()

	if !restricted || recovery == "" {
		return model.ErrRecoveryNotAuthorized
	}

	if err := p.auth.UpdatePassword(ctx, recovery, newPassword); err != nil {
		return err
	}

	p.clear()
	return nil
}

func (p *Provider) establish(user model.User, tokens service.SessionTokens, restricted bool, recoveryToken string) model.Session {
	p.mu.Lock()
	p.seq++
	session := model.Session{
		State:      model.SessionAuthenticated,
		Identity:   &model.Identity{UserID: user.ID, Label: user.DisplayLabel()},
		Token:      tokens.AccessToken,
		Restricted: restricted,
		Seq:        p.seq,
	}
	p.current = session
	p.refreshToken = tokens.RefreshToken
	p.recoveryToken = recoveryToken
	p.publishLocked(session)
	return session
}

func (p *Provider) clear() {
	p.mu.Lock()
	p.seq++
	session := model.Session{State: model.SessionUnauthenticated, Seq: p.seq}
	p.current = session
	p.refreshToken = ""
	p.recoveryToken = ""
	p.publishLocked(session)
}

// publishLocked must be called with mu held; it releases mu. notifyMu is
// taken first so handlers observe sessions in seq order.
func (p *Provider) publishLocked(session model.Session) {
	handlers := make([]func(model.Session), 0, len(p.handlers))
	for _, h := range p.handlers {
		handlers = append(handlers, h)
	}
	p.notifyMu.Lock()
	p.mu.Unlock()

	for _, h := range handlers {
		h(session)
	}
	p.notifyMu.Unlock()
}
