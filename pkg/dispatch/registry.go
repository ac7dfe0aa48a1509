// Package dispatch implements the execution engine: the command registry and
// the dispatcher that takes a raw invocation through resolution,
// authorization, argument parsing, handler invocation and result handling.
package dispatch

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"modcmd/pkg/command"
)

// Registry indexes commands by invocation path and alias, validates their
// placement in the command tree at registration time, and holds the global
// result handlers. Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*command.Command
	aliases  map[string]*command.Command
	handlers []command.ResultHandler
	log      *zap.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		commands: make(map[string]*command.Command),
		aliases:  make(map[string]*command.Command),
		log:      log,
	}
}

// Register inserts a command into the tree. The command's parent chain must
// already be registered; conflicts and incompatible chain settings fail here,
// never at execution time.
func (r *Registry) Register(cmd *command.Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	inv := cmd.Invocation()
	key := inv.String()
	if existing, taken := r.commands[key]; taken {
		return fmt.Errorf("invocation %q already registered to %q", inv, existing.Name())
	}
	for _, alias := range cmd.AliasInvocations() {
		// An alias may shadow a canonical invocation (the canonical one wins
		// on resolution), but two aliases cannot collide.
		if existing, taken := r.aliases[alias.String()]; taken {
			return fmt.Errorf("alias %q already registered to %q", alias, existing.Name())
		}
	}

	ancestors, err := r.ancestors(cmd)
	if err != nil {
		return err
	}
	if err := validateChain(ancestors, cmd); err != nil {
		return err
	}

	r.commands[key] = cmd
	for _, alias := range cmd.AliasInvocations() {
		r.aliases[alias.String()] = cmd
	}
	r.log.Debug("command registered",
		zap.String("invocation", key),
		zap.Strings("aliases", cmd.Aliases()))
	return nil
}

// ancestors returns the registered parent chain of cmd, root first. Fails if
// any link is missing.
func (r *Registry) ancestors(cmd *command.Command) ([]*command.Command, error) {
	parent := cmd.Parent()
	chain := make([]*command.Command, parent.Len())
	inv := parent
	for i := parent.Len() - 1; i >= 0; i-- {
		c, ok := r.commands[inv.String()]
		if !ok {
			return nil, &command.InvalidChainError{
				Invocation: cmd.Invocation(),
				Reason:     fmt.Sprintf("parent %q is not registered", inv),
			}
		}
		chain[i] = c
		inv = inv.Parent()
	}
	return chain, nil
}

// validateChain checks that cmd is compatible with its registered ancestors.
func validateChain(ancestors []*command.Command, cmd *command.Command) error {
	invalid := func(format string, args ...any) error {
		return &command.InvalidChainError{
			Invocation: cmd.Invocation(),
			Reason:     fmt.Sprintf(format, args...),
		}
	}

	if cmd.RequireParentGroups() && len(ancestors) > 0 {
		// A child that binds itself to its parents' restrictions cannot
		// relax the ones they hardened.
		parent := ancestors[len(ancestors)-1]
		if parent.NSFW() && !cmd.NSFW() {
			return invalid("relaxes the NSFW restriction of parent %q", parent.Name())
		}
		if parent.ServerOwnerOnly() && !cmd.ServerOwnerOnly() {
			return invalid("relaxes the server-owner restriction of parent %q", parent.Name())
		}
		if parent.BotOwnerOnly() && !cmd.BotOwnerOnly() {
			return invalid("relaxes the bot-owner restriction of parent %q", parent.Name())
		}
	}

	if !cmd.InvokeParent() {
		return nil
	}
	// Ancestor handlers run against the leaf's argument map, so each invoked
	// ancestor's parameters must be a compatible prefix of the leaf's.
	params := cmd.Parameters()
	for i := len(ancestors) - 1; i >= 0; i-- {
		anc := ancestors[i]
		ancParams := anc.Parameters()
		if len(ancParams) > len(params) {
			return invalid("parent %q declares more parameters than the invoked command", anc.Name())
		}
		for j, p := range ancParams {
			if p.Name() != params[j].Name() {
				return invalid("parameter %d of parent %q is %q, the invoked command has %q",
					j, anc.Name(), p.Name(), params[j].Name())
			}
			if p.Required() && !params[j].Required() {
				return invalid("parameter %q of parent %q is required but optional on the invoked command",
					p.Name(), anc.Name())
			}
		}
		if !anc.InvokeParent() {
			break
		}
	}
	return nil
}

// Resolve matches leading tokens against the command tree and returns the
// chain from root to leaf, the invocation as typed, and the number of tokens
// consumed. Aliases are followed at the leaf position only. A nil chain means
// no command matched.
func (r *Registry) Resolve(tokens []string) (chain []*command.Command, typed command.Invocation, consumed int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inv := command.Invocation{}
	for _, token := range tokens {
		next := inv.Child(token)
		if c, ok := r.commands[next.String()]; ok {
			chain = append(chain, c)
			inv = next
			consumed++
			continue
		}
		if c, ok := r.aliases[next.String()]; ok {
			// The alias names a leaf; the chain continues under the
			// command's canonical invocation.
			chain = append(chain, c)
			inv = next
			consumed++
		}
		break
	}
	return chain, inv, consumed
}

// Lookup returns the command registered under the exact canonical invocation.
func (r *Registry) Lookup(inv command.Invocation) (*command.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.commands[inv.String()]
	return c, ok
}

// Chain returns the root-to-leaf command chain for an exact canonical
// invocation, as supplied by structured interaction payloads.
func (r *Registry) Chain(inv command.Invocation) ([]*command.Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := inv.Names()
	chain := make([]*command.Command, 0, len(names))
	walk := command.Invocation{}
	for _, name := range names {
		walk = walk.Child(name)
		c, ok := r.commands[walk.String()]
		if !ok {
			return nil, false
		}
		chain = append(chain, c)
	}
	if len(chain) == 0 {
		return nil, false
	}
	return chain, true
}

// Commands returns every registered command, sorted by canonical invocation
// so parents come before their children.
func (r *Registry) Commands() []*command.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.commands))
	for k := range r.commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*command.Command, len(keys))
	for i, k := range keys {
		out[i] = r.commands[k]
	}
	return out
}

// AddResultHandler appends a global result handler, run after the command's
// own result handlers for every invocation.
func (r *Registry) AddResultHandler(h command.ResultHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = append(r.handlers, h)
}

// ResultHandlers returns the global result handlers in registration order.
func (r *Registry) ResultHandlers() []command.ResultHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]command.ResultHandler(nil), r.handlers...)
}
