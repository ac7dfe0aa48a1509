package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"modcmd/pkg/access"
	"modcmd/pkg/command"
	"modcmd/pkg/parse"
	"modcmd/pkg/platform"
	"modcmd/pkg/reply"
)

// Request is a raw invocation handed to the dispatcher by a platform
// adapter: either a text command line or a structured interaction payload.
type Request struct {
	// Caller is the user that triggered the invocation.
	Caller platform.User
	// GuildID is the guild the invocation happened in; empty for a private
	// channel.
	GuildID platform.ID
	// ChannelID is the channel the invocation happened in.
	ChannelID platform.ID
	// Transport sends the invocation's replies.
	Transport reply.Transport

	// Line is the command line with the prefix stripped. Text invocations
	// only.
	Line string
	// Message is the message that carried the line. Text invocations only.
	Message platform.Message

	// Interaction marks a structured interaction payload.
	Interaction bool
	// Path is the invoked command path. Interactions only.
	Path []string
	// Args holds the named argument values the platform already separated.
	// Interactions only.
	Args map[string]parse.Value
}

// Dispatcher runs invocations through the fixed pipeline: resolve the command
// chain, authorize, parse arguments, invoke the handler chain, handle the
// result. Distinct invocations are independent; a Dispatcher is safe for
// concurrent use.
type Dispatcher struct {
	registry *Registry
	client   platform.Client
	splitter parse.Splitter
	log      *zap.Logger
}

// NewDispatcher creates a dispatcher over the given registry and platform
// client.
func NewDispatcher(registry *Registry, client platform.Client, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		client:   client,
		splitter: parse.ShellSplitter{},
		log:      log,
	}
}

// Dispatch processes one invocation to completion. The returned result is the
// terminal outcome after result handling, or nil when the input did not
// resolve to a command; an unknown command is not an error, most messages are
// not commands.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (command.Result, error) {
	if req.Transport == nil {
		return nil, errors.New("dispatch: request has no reply transport")
	}
	if req.Caller == nil {
		return nil, errors.New("dispatch: request has no caller")
	}

	chain, typed, argText, ok := d.resolve(req)
	if !ok {
		return nil, nil
	}
	leaf := chain[len(chain)-1]
	if !leaf.Callable() {
		// Grouping nodes cannot be invoked; the line is not a command.
		return nil, nil
	}

	log := d.log.With(
		zap.String("invocation", leaf.Invocation().String()),
		zap.String("caller", string(req.Caller.ID())),
		zap.String("dispatch_id", uuid.NewString()),
	)
	log.Debug("dispatching invocation",
		zap.String("typed", typed.String()),
		zap.Bool("interaction", req.Interaction))

	src := settingsSource(chain)
	cc := newInvocationContext(
		access.New(d.client, req.Caller, req.GuildID, req.ChannelID),
		typed,
		leaf.Invocation(),
		req.Interaction,
		req.Message,
		reply.NewManager(req.Transport, src.PrivateReply(), src.Ephemeral(), 0),
	)

	result := d.run(ctx, cc, chain, src, req, argText)
	d.handleResult(ctx, cc, chain, result, log)
	return result, nil
}

// run executes the authorize, parse and invoke stages and returns the
// terminal result.
func (d *Dispatcher) run(ctx context.Context, cc *invocationContext, chain []*command.Command, src *command.Command, req Request, argText string) command.Result {
	if res := d.authorize(ctx, cc, chain, src, req); res != nil {
		return res
	}
	if res := d.parseArgs(ctx, cc, chain[len(chain)-1], req, argText); res != nil {
		return res
	}
	return d.invoke(ctx, cc, chain)
}

// resolve matches the request against the registry and returns the command
// chain, the invocation as typed, and the unconsumed argument text.
func (d *Dispatcher) resolve(req Request) (chain []*command.Command, typed command.Invocation, argText string, ok bool) {
	if req.Interaction {
		inv := command.NewInvocation(req.Path...)
		chain, found := d.registry.Chain(inv)
		if !found {
			return nil, command.Invocation{}, "", false
		}
		return chain, inv, "", true
	}

	var tokens []string
	var rests []string
	rest := req.Line
	for {
		token, rem := d.splitter.Next(rest)
		if token == "" && rem == "" {
			break
		}
		tokens = append(tokens, token)
		rests = append(rests, rem)
		rest = rem
	}

	chain, typed, consumed := d.registry.Resolve(tokens)
	if len(chain) == 0 {
		return nil, command.Invocation{}, "", false
	}
	return chain, typed, rests[consumed-1], true
}

// settingsSource returns the command that supplies reply and restriction
// settings: the closest command from the leaf upward that does not inherit
// them, falling back to the chain root.
func settingsSource(chain []*command.Command) *command.Command {
	for i := len(chain) - 1; i > 0; i-- {
		if !chain[i].InheritSettings() {
			return chain[i]
		}
	}
	return chain[0]
}

// authorize runs the scope, restriction and group gates. A nil result means
// the caller may proceed.
func (d *Dispatcher) authorize(ctx context.Context, cc *invocationContext, chain []*command.Command, src *command.Command, req Request) command.Result {
	leaf := chain[len(chain)-1]

	if leaf.Scope() == command.ScopeGuild && req.GuildID == "" {
		return command.Failf("this command can only be used in a server")
	}
	if src.NSFW() {
		ch, err := cc.Channel(ctx)
		if err != nil {
			return command.Fault(err)
		}
		// Private channels have no audience to protect.
		if !ch.NSFW() && !ch.Private() {
			return command.Failf("this command can only be used in age-restricted channels")
		}
	}
	if src.ServerOwnerOnly() {
		if res := d.checkGroup(ctx, cc, access.ServerOwner); res != nil {
			return res
		}
	}
	if src.BotOwnerOnly() {
		if res := d.checkGroup(ctx, cc, access.BotOwner); res != nil {
			return res
		}
	}

	if req.Interaction && leaf.SkipGroupCheckOnInteraction() {
		return nil
	}
	// Collect the commands whose groups apply: from the leaf upward while
	// requireParentGroups holds, plus one more. Evaluation is root to leaf so
	// the broadest gate denies first.
	start := len(chain) - 1
	for start > 0 && chain[start].RequireParentGroups() {
		start--
	}
	for _, c := range chain[start:] {
		if res := d.checkGroup(ctx, cc, c.Group()); res != nil {
			return res
		}
	}
	return nil
}

func (d *Dispatcher) checkGroup(ctx context.Context, cc *invocationContext, g access.Group) command.Result {
	ok, err := g.Belongs(ctx, cc)
	if err != nil {
		return command.Fault(fmt.Errorf("evaluating group %q: %w", access.NameOf(g, "unnamed"), err))
	}
	if !ok {
		return command.NotAllowed(g)
	}
	return nil
}

// parseArgs populates the context's argument map from the request. A nil
// result means every parameter parsed.
func (d *Dispatcher) parseArgs(ctx context.Context, cc *invocationContext, leaf *command.Command, req Request, argText string) command.Result {
	params := leaf.Parameters()
	raws := make([]parse.Value, len(params))
	present := make([]bool, len(params))

	if req.Interaction {
		for i, p := range params {
			raws[i], present[i] = req.Args[p.Name()]
		}
	} else {
		rest := argText
		for i, p := range params {
			if rest == "" {
				break
			}
			if p.Greedy() {
				raws[i], present[i] = rest, true
				rest = ""
				break
			}
			var token string
			token, rest = d.splitter.Next(rest)
			raws[i], present[i] = token, true
		}
	}

	values := make([]any, len(params))
	parsed := make([]bool, len(params))
	for i, p := range params {
		if present[i] {
			continue
		}
		if p.Required() {
			return command.InvalidArg(p.Name(), "a value is required")
		}
		if p.HasDefault() {
			// Defaults stand in as-is, without running the parser.
			values[i], parsed[i] = p.DefaultValue(), true
		}
	}

	// Independent parameters parse concurrently; handlers must not rely on
	// the order of any side effects.
	g, gctx := errgroup.WithContext(ctx)
	errs := make([]error, len(params))
	for i, p := range params {
		if !present[i] {
			continue
		}
		i, p := i, p
		g.Go(func() error {
			v, err := p.Parse(gctx, cc, raws[i])
			if err != nil {
				errs[i] = err
				return err
			}
			values[i], parsed[i] = v, true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Report the first failure in declared parameter order, not in
		// completion order.
		for i, perr := range errs {
			if perr == nil {
				continue
			}
			if rejected(perr) {
				return command.InvalidArg(params[i].Name(), perr.Error())
			}
			return command.Fault(fmt.Errorf("parsing argument %q: %w", params[i].Name(), perr))
		}
		return command.Fault(err)
	}

	for i, p := range params {
		if parsed[i] {
			cc.setArgument(p.Name(), values[i])
		}
	}
	return nil
}

// rejected reports whether a parse error is a user rejection rather than an
// evaluation fault.
func rejected(err error) bool {
	var invalid *parse.InvalidArgumentError
	var list *parse.InvalidListError
	return errors.As(err, &invalid) || errors.As(err, &list)
}

// invoke runs the handler chain and returns the terminal result. The chain
// starts at the closest ancestor not reached through invokeParent and runs
// root first; Continue advances, anything else terminates.
func (d *Dispatcher) invoke(ctx context.Context, cc *invocationContext, chain []*command.Command) command.Result {
	start := len(chain) - 1
	for start > 0 && chain[start].InvokeParent() {
		start--
	}
	for _, c := range chain[start:] {
		result := d.callHandler(ctx, cc, c.Handler())
		if command.IsTerminal(result) {
			return result
		}
	}
	return command.Fault(&command.IncompleteHandlingError{
		Invocation: cc.CanonicalInvocation(),
	})
}

// callHandler runs one handler, mapping panics and plain errors to faults and
// unwrapping early-termination signals.
func (d *Dispatcher) callHandler(ctx context.Context, cc *invocationContext, h command.InvocationHandler) (result command.Result) {
	defer func() {
		if r := recover(); r != nil {
			result = command.Fault(fmt.Errorf("handler panic: %v", r))
		}
	}()
	result, err := h(ctx, cc)
	if err != nil {
		var signal *command.ResultSignal
		if errors.As(err, &signal) {
			return signal.Result
		}
		return command.Fault(err)
	}
	if result == nil {
		return command.Fault(errors.New("handler returned no result"))
	}
	return result
}

// handleResult passes the terminal result through the leaf command's result
// handlers, then the registry's global handlers, then the base logging
// handler. The first handler to report the result handled stops propagation.
func (d *Dispatcher) handleResult(ctx context.Context, cc *invocationContext, chain []*command.Command, result command.Result, log *zap.Logger) {
	leaf := chain[len(chain)-1]
	handlers := append(leaf.ResultHandlers(), d.registry.ResultHandlers()...)
	for _, h := range handlers {
		handled, err := h(ctx, cc, result)
		if err != nil {
			log.Error("result handler failed", zap.Error(err))
			continue
		}
		if handled {
			return
		}
	}
	d.logResult(result, log)
}

// logResult is the base result handler: error-class results surface loudly,
// everything else is diagnostic.
func (d *Dispatcher) logResult(result command.Result, log *zap.Logger) {
	switch r := result.(type) {
	case command.ResultContinue:
		log.Error("continue escaped the handler chain")
	case command.ResultSuccess:
		log.Debug("invocation succeeded")
	case command.ResultSuccessMessage:
		log.Debug("invocation succeeded", zap.String("message", r.Message))
	case command.ResultFailure:
		log.Debug("invocation failed")
	case command.ResultFailureMessage:
		log.Debug("invocation failed", zap.String("message", r.Message))
	case command.ResultInvalidArgument:
		log.Debug("invalid argument",
			zap.String("parameter", r.Parameter),
			zap.String("reason", r.Reason))
	case command.ResultNotAllowed:
		log.Debug("caller not allowed",
			zap.String("group", access.NameOf(r.Group, "unnamed")))
	case command.ResultError:
		log.Error("invocation error unhandled", zap.String("message", r.Message))
	case command.ResultFault:
		log.Error("invocation fault unhandled", zap.Error(r.Cause))
	default:
		log.Error("unknown result type", zap.String("type", fmt.Sprintf("%T", result)))
	}
}
