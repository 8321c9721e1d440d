package authz

import "context"

// State is the position of a request in the admission pipeline.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateRoleChecked
	StateScopeChecked
	StateAdmitted
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateRoleChecked:
		return "role_checked"
	case StateScopeChecked:
		return "scope_checked"
	case StateAdmitted:
		return "admitted"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Request is one admission attempt. Locate, when set, replaces Entity and is
// only called once the credential and the role have passed, so it may do
// work such as reading the request body.
type Request struct {
	Token   string
	Allowed RoleSet
	Entity  EntityRef
	Locate  func() EntityRef
}

// Decision is the outcome of Admit. Account is populated once the request
// got past authentication, even if a later stage rejected it. Reason is zero
// unless State is StateRejected.
type Decision struct {
	State   State
	Reason  Kind
	Account Account
}

func (d Decision) Admitted() bool { return d.State == StateAdmitted }

// Observer is notified of every stage transition. stage is the state the
// request was in when the stage ran; err is nil when it passed.
type Observer func(stage State, err error)

type Pipeline struct {
	verifier *Verifier
	scopes   *ScopeResolver
	observe  Observer
}

type PipelineOption func(*Pipeline)

func WithObserver(o Observer) PipelineOption {
	return func(p *Pipeline) {
		if o != nil {
			p.observe = o
		}
	}
}

func NewPipeline(verifier *Verifier, scopes *ScopeResolver, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		verifier: verifier,
		scopes:   scopes,
		observe:  func(State, error) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Verifier() *Verifier { return p.verifier }

func (p *Pipeline) Scopes() *ScopeResolver { return p.scopes }

// Admit runs credential verification, the role check and the scope check in
// that order. The first failure rejects the request and skips the remaining
// stages; the returned error is the failing stage's *Error.
func (p *Pipeline) Admit(ctx context.Context, req Request) (Decision, error) {
	d := Decision{State: StateUnauthenticated}

	account, err := p.verifier.Verify(ctx, req.Token)
	p.observe(StateUnauthenticated, err)
	if err != nil {
		return d.reject(err)
	}
	d.Account = account
	d.State = StateAuthenticated

	err = Authorize(account, req.Allowed)
	p.observe(StateAuthenticated, err)
	if err != nil {
		return d.reject(err)
	}
	d.State = StateRoleChecked

	entity := req.Entity
	if req.Locate != nil {
		entity = req.Locate()
	}
	err = p.scopes.Resolve(ctx, account, entity)
	p.observe(StateRoleChecked, err)
	if err != nil {
		return d.reject(err)
	}
	d.State = StateScopeChecked

	p.observe(StateScopeChecked, nil)
	d.State = StateAdmitted
	return d, nil
}

func (d Decision) reject(err error) (Decision, error) {
	d.State = StateRejected
	d.Reason = KindOf(err)
	return d, err
}
