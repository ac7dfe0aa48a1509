package reply

import (
	"context"
	"time"

	"modcmd/pkg/platform"
)

// manager is the Transport-backed Manager implementation. Long-term managers
// share the chain state with the manager they were derived from.
type manager struct {
	transport Transport
	state     *chainState
}

type chainState struct {
	replies     []*sentReply
	replied     bool
	private     bool
	ephemeral   EphemeralType
	deleteDelay time.Duration
}

type sentReply struct {
	id      platform.ID
	deleted bool
}

// NewManager creates a Manager over the given transport. The private,
// ephemeral and delay arguments are the command's default reply settings.
func NewManager(t Transport, private bool, ephemeral EphemeralType, deleteDelay time.Duration) Manager {
	return &manager{
		transport: t,
		state: &chainState{
			private:     private,
			ephemeral:   ephemeral,
			deleteDelay: deleteDelay,
		},
	}
}

func (m *manager) Defer(ctx context.Context) error {
	return m.transport.Defer(ctx)
}

func (m *manager) Reply(ctx context.Context, spec Spec) (Reply, error) {
	if m.state.replied {
		return Reply{}, ErrAlreadyReplied
	}
	return m.Add(ctx, spec)
}

func (m *manager) Add(ctx context.Context, spec Spec) (Reply, error) {
	spec = m.withDefaults(spec)
	initial := !m.state.replied
	id, err := m.transport.Send(ctx, spec, initial)
	if err != nil {
		return Reply{}, err
	}
	m.state.replied = true
	m.state.replies = append(m.state.replies, &sentReply{id: id})
	return Reply{Index: len(m.state.replies) - 1, ID: id}, nil
}

func (m *manager) Get(index int) (Reply, error) {
	s, err := m.sent(index)
	if err != nil {
		return Reply{}, err
	}
	return Reply{Index: index, ID: s.id}, nil
}

func (m *manager) Edit(ctx context.Context, index int, spec Spec) error {
	s, err := m.sent(index)
	if err != nil {
		return err
	}
	return m.transport.Edit(ctx, s.id, m.withDefaults(spec))
}

func (m *manager) Delete(ctx context.Context, index int) error {
	s, err := m.sent(index)
	if err != nil {
		return err
	}
	if err := m.transport.Delete(ctx, s.id); err != nil {
		return err
	}
	s.deleted = true
	return nil
}

func (m *manager) SetPrivate(private bool) {
	m.state.private = private
}

func (m *manager) SetEphemeral(e EphemeralType) {
	m.state.ephemeral = e
}

func (m *manager) SetDeleteDelay(d time.Duration) {
	m.state.deleteDelay = d
}

func (m *manager) LongTerm() Manager {
	lt := m.transport.LongTerm()
	if lt == m.transport {
		return m
	}
	return &manager{transport: lt, state: m.state}
}

// sent resolves an index to a live reply. Deleted replies keep their slots so
// later indices never shift.
func (m *manager) sent(index int) (*sentReply, error) {
	if index < 0 || index >= len(m.state.replies) {
		return nil, ErrNotFound
	}
	s := m.state.replies[index]
	if s.deleted {
		return nil, ErrNotFound
	}
	return s, nil
}

// withDefaults resolves zero-valued spec fields from the manager's current
// settings and normalizes explicit "off" values. The transport only ever sees
// resolved specs. Settings changes only affect replies sent afterwards.
func (m *manager) withDefaults(spec Spec) Spec {
	if spec.Privacy == PrivacyDefault {
		if m.state.private {
			spec.Privacy = PrivacyPrivate
		} else {
			spec.Privacy = PrivacyPublic
		}
	}
	switch spec.Ephemeral {
	case EphemeralNone:
		spec.Ephemeral = m.state.ephemeral
	case EphemeralOff:
		spec.Ephemeral = EphemeralNone
	}
	switch {
	case spec.DeleteDelay < 0:
		spec.DeleteDelay = 0
	case spec.DeleteDelay == 0:
		spec.DeleteDelay = m.state.deleteDelay
	}
	return spec
}
