package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"modcmd/pkg/access"
	"modcmd/pkg/command"
	"modcmd/pkg/parse"
	"modcmd/pkg/platform"
	"modcmd/pkg/platform/platformtest"
	"modcmd/pkg/reply"
)

type recordTransport struct {
	sent []reply.Spec
	next int
}

func (t *recordTransport) Defer(ctx context.Context) error { return nil }

func (t *recordTransport) Send(ctx context.Context, spec reply.Spec, initial bool) (platform.ID, error) {
	t.sent = append(t.sent, spec)
	t.next++
	return platform.ID(fmt.Sprintf("%d", t.next)), nil
}

func (t *recordTransport) Edit(ctx context.Context, id platform.ID, spec reply.Spec) error {
	return nil
}

func (t *recordTransport) Delete(ctx context.Context, id platform.ID) error { return nil }

func (t *recordTransport) LongTerm() reply.Transport { return t }

type fixture struct {
	client    *platformtest.Client
	registry  *Registry
	d         *Dispatcher
	transport *recordTransport
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := platformtest.NewClient()
	client.Owner = "1"
	client.Users["100"] = &platformtest.User{UserID: "100", Name: "tester"}
	client.Guilds["300"] = &platformtest.Guild{GuildID: "300", GuildName: "testing", Owner: "50"}
	client.Channels["200"] = &platformtest.Channel{ChannelID: "200", ChannelName: "general"}
	client.AddMember(&platformtest.Member{
		User:  platformtest.User{UserID: "100", Name: "tester"},
		Guild: "300",
	})
	registry := NewRegistry(zap.NewNop())
	return &fixture{
		client:    client,
		registry:  registry,
		d:         NewDispatcher(registry, client, zap.NewNop()),
		transport: &recordTransport{},
	}
}

func (f *fixture) text(line string) Request {
	return Request{
		Caller:    f.client.Users["100"],
		GuildID:   "300",
		ChannelID: "200",
		Transport: f.transport,
		Line:      line,
	}
}

func (f *fixture) interaction(path []string, args map[string]parse.Value) Request {
	return Request{
		Caller:      f.client.Users["100"],
		GuildID:     "300",
		ChannelID:   "200",
		Transport:   f.transport,
		Interaction: true,
		Path:        path,
		Args:        args,
	}
}

func succeed(ctx context.Context, cc command.Context) (command.Result, error) {
	return command.Success(), nil
}

func TestDispatchUnknownCommandIgnored(t *testing.T) {
	f := newFixture(t)
	mustRegister(t, f.registry, command.New("ping", "Checks.", succeed).MustBuild())

	res, err := f.d.Dispatch(context.Background(), f.text("hello there"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if res != nil {
		t.Errorf("Expected silent miss, got %v", res)
	}
}

func TestDispatchTextWithArguments(t *testing.T) {
	f := newFixture(t)

	var gotKey string
	var gotCount int64
	handler := func(ctx context.Context, cc command.Context) (command.Result, error) {
		var err error
		if gotKey, err = command.Arg[string](cc, "key"); err != nil {
			return nil, err
		}
		if gotCount, err = command.Arg[int64](cc, "count"); err != nil {
			return nil, err
		}
		return command.Successf("stored %s", gotKey), nil
	}
	mustRegister(t, f.registry, command.New("store", "Stores a key.", handler).
		Parameters(
			parse.NewParam("key", "The key.", parse.String()),
			parse.NewDefaultParam("count", "How many.", int64(1), parse.Integer().AtLeast(1)),
		).
		MustBuild())

	res, err := f.d.Dispatch(context.Background(), f.text(`store "my key" 5`))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if _, isSuccess := res.(command.ResultSuccessMessage); !isSuccess {
		t.Fatalf("Expected success, got %#v", res)
	}
	if gotKey != "my key" || gotCount != 5 {
		t.Errorf("Expected parsed arguments, got %q and %d", gotKey, gotCount)
	}

	// Omitting the optional argument applies the default without parsing;
	// the default is below the parser's minimum and still passes through.
	mustRegister(t, f.registry, command.New("fetch", "Fetches.", func(ctx context.Context, cc command.Context) (command.Result, error) {
		n, err := command.Arg[int64](cc, "count")
		if err != nil {
			return nil, err
		}
		gotCount = n
		return command.Success(), nil
	}).Parameters(parse.NewDefaultParam("count", "How many.", int64(0), parse.Integer().AtLeast(1))).MustBuild())

	if _, err := f.d.Dispatch(context.Background(), f.text("fetch")); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if gotCount != 0 {
		t.Errorf("Expected default to stand in unparsed, got %d", gotCount)
	}
}

func TestDispatchMissingRequiredArgument(t *testing.T) {
	f := newFixture(t)
	mustRegister(t, f.registry, command.New("echo", "Echoes.", succeed).
		Parameters(parse.NewParam("text", "The text.", parse.String())).
		MustBuild())

	res, _ := f.d.Dispatch(context.Background(), f.text("echo"))
	invalid, isInvalid := res.(command.ResultInvalidArgument)
	if !isInvalid || invalid.Parameter != "text" {
		t.Fatalf("Expected invalid argument for %q, got %#v", "text", res)
	}
}

func TestDispatchInvalidArgumentNamesParameter(t *testing.T) {
	f := newFixture(t)
	mustRegister(t, f.registry, command.New("roll", "Rolls dice.", succeed).
		Parameters(parse.NewParam("sides", "Die sides.", parse.Integer().Between(2, 100))).
		MustBuild())

	res, _ := f.d.Dispatch(context.Background(), f.text("roll 1000"))
	invalid, isInvalid := res.(command.ResultInvalidArgument)
	if !isInvalid || invalid.Parameter != "sides" {
		t.Fatalf("Expected invalid argument for %q, got %#v", "sides", res)
	}
}

func TestDispatchGreedyParameter(t *testing.T) {
	f := newFixture(t)

	var got string
	handler := func(ctx context.Context, cc command.Context) (command.Result, error) {
		got, _ = command.Arg[string](cc, "text")
		return command.Success(), nil
	}
	mustRegister(t, f.registry, command.New("say", "Says.", handler).
		Parameters(parse.NewParam("text", "The text.", parse.Text())).
		MustBuild())

	if _, err := f.d.Dispatch(context.Background(), f.text(`say hello "quoted world"`)); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if got != `hello "quoted world"` {
		t.Errorf("Expected raw remaining text, got %q", got)
	}
}

func TestDispatchDeniedByGroup(t *testing.T) {
	f := newFixture(t)

	executed := false
	handler := func(ctx context.Context, cc command.Context) (command.Result, error) {
		executed = true
		return command.Success(), nil
	}
	mustRegister(t, f.registry,
		command.New("config", "Configures.", handler).Require(access.Admins).MustBuild(),
		command.New("set", "Sets.", handler).
			Parent(command.NewInvocation("config")).
			RequireParentGroups().
			Parameters(parse.NewParam("pair", "Key and value.", parse.String())).
			MustBuild(),
	)

	res, err := f.d.Dispatch(context.Background(), f.text("config set key=value"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	denied, isDenied := res.(command.ResultNotAllowed)
	if !isDenied {
		t.Fatalf("Expected denial, got %#v", res)
	}
	if access.NameOf(denied.Group, "") != "Administrators" {
		t.Errorf("Expected denial to name Administrators, got %q", access.NameOf(denied.Group, ""))
	}
	if executed {
		t.Error("Expected no handler to run after a denial")
	}
}

func TestDispatchParentGroupNotCheckedWithoutRequire(t *testing.T) {
	f := newFixture(t)

	mustRegister(t, f.registry,
		command.New("config", "Configures.", succeed).Require(access.Admins).MustBuild(),
		command.New("show", "Shows.", succeed).Parent(command.NewInvocation("config")).MustBuild(),
	)

	res, _ := f.d.Dispatch(context.Background(), f.text("config show"))
	if _, isSuccess := res.(command.ResultSuccess); !isSuccess {
		t.Fatalf("Expected child without requireParentGroups to pass, got %#v", res)
	}
}

func TestDispatchHandlerChain(t *testing.T) {
	f := newFixture(t)

	var order []string
	step := func(name string, result command.Result) command.InvocationHandler {
		return func(ctx context.Context, cc command.Context) (command.Result, error) {
			order = append(order, name)
			return result, nil
		}
	}
	mustRegister(t, f.registry,
		command.New("root", "Root.", step("root", command.Continue())).MustBuild(),
		command.New("mid", "Middle.", step("mid", command.Continue())).
			Parent(command.NewInvocation("root")).InvokeParent().MustBuild(),
		command.New("leaf", "Leaf.", step("leaf", command.Success())).
			Parent(command.NewInvocation("root", "mid")).InvokeParent().MustBuild(),
	)

	res, err := f.d.Dispatch(context.Background(), f.text("root mid leaf"))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if _, isSuccess := res.(command.ResultSuccess); !isSuccess {
		t.Fatalf("Expected success, got %#v", res)
	}
	if len(order) != 3 || order[0] != "root" || order[1] != "mid" || order[2] != "leaf" {
		t.Errorf("Expected root-first invocation, got %v", order)
	}

	// A terminal result from an ancestor stops the chain before the leaf.
	order = nil
	mustRegister(t, f.registry,
		command.New("halt", "Halts.", step("halt", command.Fail())).MustBuild(),
		command.New("after", "Never runs.", step("after", command.Success())).
			Parent(command.NewInvocation("halt")).InvokeParent().MustBuild(),
	)
	res, _ = f.d.Dispatch(context.Background(), f.text("halt after"))
	if _, isFailure := res.(command.ResultFailure); !isFailure {
		t.Fatalf("Expected failure, got %#v", res)
	}
	if len(order) != 1 || order[0] != "halt" {
		t.Errorf("Expected chain to stop at the ancestor, got %v", order)
	}
}

func TestDispatchIncompleteHandling(t *testing.T) {
	f := newFixture(t)

	keepGoing := func(ctx context.Context, cc command.Context) (command.Result, error) {
		return command.Continue(), nil
	}
	mustRegister(t, f.registry,
		command.New("root", "Root.", keepGoing).MustBuild(),
		command.New("drift", "Drifts.", keepGoing).
			Parent(command.NewInvocation("root")).InvokeParent().MustBuild(),
	)

	res, _ := f.d.Dispatch(context.Background(), f.text("root drift"))
	fault, isFault := res.(command.ResultFault)
	if !isFault {
		t.Fatalf("Expected fault, got %#v", res)
	}
	var incomplete *command.IncompleteHandlingError
	if !errors.As(fault.Cause, &incomplete) {
		t.Fatalf("Expected IncompleteHandlingError, got %v", fault.Cause)
	}
	if !incomplete.Invocation.Equal(command.NewInvocation("root", "drift")) {
		t.Errorf("Expected error to name the invocation, got %v", incomplete.Invocation)
	}
}

func TestDispatchHandlerPanicAndSignal(t *testing.T) {
	f := newFixture(t)

	mustRegister(t, f.registry,
		command.New("boom", "Panics.", func(ctx context.Context, cc command.Context) (command.Result, error) {
			panic("kaboom")
		}).MustBuild(),
		command.New("bail", "Terminates early.", func(ctx context.Context, cc command.Context) (command.Result, error) {
			return nil, command.Terminate(command.Failf("bailed"))
		}).MustBuild(),
		command.New("oops", "Errors.", func(ctx context.Context, cc command.Context) (command.Result, error) {
			return nil, errors.New("plain error")
		}).MustBuild(),
	)

	res, _ := f.d.Dispatch(context.Background(), f.text("boom"))
	if _, isFault := res.(command.ResultFault); !isFault {
		t.Errorf("Expected panic to become a fault, got %#v", res)
	}

	res, _ = f.d.Dispatch(context.Background(), f.text("bail"))
	msg, isFailure := res.(command.ResultFailureMessage)
	if !isFailure || msg.Message != "bailed" {
		t.Errorf("Expected signal result, got %#v", res)
	}

	res, _ = f.d.Dispatch(context.Background(), f.text("oops"))
	fault, isFault := res.(command.ResultFault)
	if !isFault || fault.Cause.Error() != "plain error" {
		t.Errorf("Expected plain error wrapped, got %#v", res)
	}
}

func TestDispatchResultHandlers(t *testing.T) {
	f := newFixture(t)

	var calls []string
	mustRegister(t, f.registry, command.New("ping", "Checks.", succeed).
		OnResult(func(ctx context.Context, cc command.Context, r command.Result) (bool, error) {
			calls = append(calls, "command")
			return true, nil
		}).
		MustBuild())
	f.registry.AddResultHandler(func(ctx context.Context, cc command.Context, r command.Result) (bool, error) {
		calls = append(calls, "global")
		return false, nil
	})

	f.d.Dispatch(context.Background(), f.text("ping"))
	if len(calls) != 1 || calls[0] != "command" {
		t.Errorf("Expected command handler to consume the result, got %v", calls)
	}

	// An unconsumed result reaches the global handlers.
	calls = nil
	mustRegister(t, f.registry, command.New("pong", "Checks.", succeed).MustBuild())
	f.d.Dispatch(context.Background(), f.text("pong"))
	if len(calls) != 1 || calls[0] != "global" {
		t.Errorf("Expected global handler to run, got %v", calls)
	}
}

func TestDispatchInteraction(t *testing.T) {
	f := newFixture(t)

	var got int64
	handler := func(ctx context.Context, cc command.Context) (command.Result, error) {
		if !cc.Interaction() {
			t.Error("Expected interaction context")
		}
		got, _ = command.Arg[int64](cc, "count")
		return command.Success(), nil
	}
	mustRegister(t, f.registry,
		command.New("config", "Configures.", succeed).MustBuild(),
		command.New("limit", "Limits.", handler).
			Parent(command.NewInvocation("config")).
			Parameters(parse.NewParam("count", "How many.", parse.Integer())).
			MustBuild(),
	)

	res, err := f.d.Dispatch(context.Background(), f.interaction(
		[]string{"config", "limit"},
		map[string]parse.Value{"count": int64(7)},
	))
	if err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if _, isSuccess := res.(command.ResultSuccess); !isSuccess {
		t.Fatalf("Expected success, got %#v", res)
	}
	if got != 7 {
		t.Errorf("Expected named argument, got %d", got)
	}
}

func TestDispatchSkipGroupCheckOnInteraction(t *testing.T) {
	f := newFixture(t)
	mustRegister(t, f.registry, command.New("purge", "Purges.", succeed).
		Require(access.Admins).
		SkipGroupCheckOnInteraction().
		MustBuild())

	// Denied as text.
	res, _ := f.d.Dispatch(context.Background(), f.text("purge"))
	if _, isDenied := res.(command.ResultNotAllowed); !isDenied {
		t.Fatalf("Expected text denial, got %#v", res)
	}

	// Allowed as interaction; the platform's own permission setup decides.
	res, _ = f.d.Dispatch(context.Background(), f.interaction([]string{"purge"}, nil))
	if _, isSuccess := res.(command.ResultSuccess); !isSuccess {
		t.Errorf("Expected interaction to skip the group check, got %#v", res)
	}
}

func TestDispatchGuildOnlyScope(t *testing.T) {
	f := newFixture(t)
	mustRegister(t, f.registry, command.New("kick", "Kicks.", succeed).
		Scope(command.ScopeGuild).
		MustBuild())

	req := f.text("kick")
	req.GuildID = ""
	res, _ := f.d.Dispatch(context.Background(), req)
	if _, isFailure := res.(command.ResultFailureMessage); !isFailure {
		t.Errorf("Expected guild-only failure in private channel, got %#v", res)
	}
}

func TestDispatchNotCallable(t *testing.T) {
	f := newFixture(t)
	mustRegister(t, f.registry, command.New("config", "Grouping only.", succeed).NotCallable().MustBuild())

	res, _ := f.d.Dispatch(context.Background(), f.text("config"))
	if res != nil {
		t.Errorf("Expected grouping node to be ignored, got %#v", res)
	}
}

func TestDispatchRepliesUseSettingsSource(t *testing.T) {
	f := newFixture(t)

	handler := func(ctx context.Context, cc command.Context) (command.Result, error) {
		if _, err := cc.Replies().Reply(ctx, reply.Spec{Content: "secret"}); err != nil {
			return nil, err
		}
		return command.Success(), nil
	}
	mustRegister(t, f.registry,
		command.New("admin", "Admin tools.", succeed).OwnSettings().PrivateReply().MustBuild(),
		command.New("token", "Shows a token.", handler).
			Parent(command.NewInvocation("admin")).
			MustBuild(),
	)

	if _, err := f.d.Dispatch(context.Background(), f.text("admin token")); err != nil {
		t.Fatalf("Dispatch failed: %v", err)
	}
	if len(f.transport.sent) != 1 || f.transport.sent[0].Privacy != reply.PrivacyPrivate {
		t.Errorf("Expected reply to inherit private setting, got %+v", f.transport.sent)
	}
}

func TestContextSideMap(t *testing.T) {
	f := newFixture(t)

	handler := func(ctx context.Context, cc command.Context) (command.Result, error) {
		if !cc.Set("mood", "calm", false) {
			return command.Errorf("first write refused"), nil
		}
		if cc.Set("mood", "angry", false) {
			return command.Errorf("second write without replace accepted"), nil
		}
		if v, _ := command.Value[string](cc, "mood"); v != "calm" {
			return command.Errorf("unexpected value %q", v), nil
		}
		if !cc.Set("mood", "angry", true) {
			return command.Errorf("replace refused"), nil
		}
		if v, _ := command.Value[string](cc, "mood"); v != "angry" {
			return command.Errorf("replace had no effect"), nil
		}
		if _, err := command.Value[int](cc, "mood"); err == nil {
			return command.Errorf("type mismatch accepted"), nil
		}
		if _, err := command.Value[string](cc, "absent"); err == nil {
			return command.Errorf("missing key accepted"), nil
		}
		return command.Success(), nil
	}
	mustRegister(t, f.registry, command.New("scratch", "Scratch space.", handler).MustBuild())

	res, _ := f.d.Dispatch(context.Background(), f.text("scratch"))
	if errRes, isErr := res.(command.ResultError); isErr {
		t.Fatal(errRes.Message)
	}
	if _, isSuccess := res.(command.ResultSuccess); !isSuccess {
		t.Fatalf("Expected success, got %#v", res)
	}
}
