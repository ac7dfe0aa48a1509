package parse

import (
	"context"
	"errors"
	"strings"
	"testing"

	"modcmd/pkg/access"
	"modcmd/pkg/platform/platformtest"
)

func testContext() access.Context {
	client := platformtest.NewClient()
	caller := &platformtest.User{UserID: "100", Name: "tester"}
	client.Users["100"] = caller
	client.Channels["200"] = &platformtest.Channel{ChannelID: "200", ChannelName: "general"}
	client.Guilds["300"] = &platformtest.Guild{GuildID: "300", GuildName: "testing", Owner: "100"}
	return access.New(client, caller, "300", "200")
}

func TestIntegerParserRange(t *testing.T) {
	cc := testContext()
	p := Integer().Between(1, 10)

	tests := []struct {
		name    string
		raw     Value
		want    int64
		invalid bool
	}{
		{"minimum edge", "1", 1, false},
		{"maximum edge", "10", 10, false},
		{"below minimum", "0", 0, true},
		{"above maximum", "11", 0, true},
		{"typed value", int64(5), 5, false},
		{"not a number", "five", 0, true},
		{"fractional", 2.5, 0, true},
		{"integral float", 3.0, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Parse(context.Background(), cc, tt.raw)
			if tt.invalid {
				var invalid *InvalidArgumentError
				if !errors.As(err, &invalid) {
					t.Fatalf("Expected invalid argument error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestIntegerParserChoices(t *testing.T) {
	cc := testContext()
	p := Integer().Choices(
		Choice[int64]{Name: "one", Value: 1},
		Choice[int64]{Name: "two", Value: 2},
	)

	if v, err := p.Parse(context.Background(), cc, "2"); err != nil || v != 2 {
		t.Errorf("Expected 2, got %d (err %v)", v, err)
	}
	if _, err := p.Parse(context.Background(), cc, "3"); err == nil {
		t.Error("Expected rejection for value outside choices")
	}
}

func TestChoicesValidation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for empty choice set")
		}
	}()
	Integer().Choices()
}

func TestFloatParserRange(t *testing.T) {
	cc := testContext()
	p := Float().AtLeast(0.5)

	if _, err := p.Parse(context.Background(), cc, "0.25"); err == nil {
		t.Error("Expected rejection below minimum")
	}
	if v, err := p.Parse(context.Background(), cc, "0.5"); err != nil || v != 0.5 {
		t.Errorf("Expected 0.5, got %v (err %v)", v, err)
	}
	if v, err := p.Parse(context.Background(), cc, int64(2)); err != nil || v != 2 {
		t.Errorf("Expected 2, got %v (err %v)", v, err)
	}
}

func TestStringParserLength(t *testing.T) {
	cc := testContext()
	p := String().MinLength(2).MaxLength(4)

	if _, err := p.Parse(context.Background(), cc, "a"); err == nil {
		t.Error("Expected rejection below minimum length")
	}
	if _, err := p.Parse(context.Background(), cc, "hello"); err == nil {
		t.Error("Expected rejection above maximum length")
	}
	if v, err := p.Parse(context.Background(), cc, "ok"); err != nil || v != "ok" {
		t.Errorf("Expected %q, got %q (err %v)", "ok", v, err)
	}
	// Length is in characters, not bytes.
	if _, err := p.Parse(context.Background(), cc, "héllo"); err == nil {
		t.Error("Expected rejection for five characters")
	}
	if v, err := p.Parse(context.Background(), cc, "héll"); err != nil || v != "héll" {
		t.Errorf("Expected %q, got %q (err %v)", "héll", v, err)
	}
}

func TestStringChoicesBeforeLength(t *testing.T) {
	cc := testContext()
	p := String().Choices(Choice[string]{Name: "long", Value: "toolongvalue"}).MaxLength(3)

	// Choice validation runs first, so a matching choice still fails the
	// later length check, while a non-choice fails on the choice check.
	_, err := p.Parse(context.Background(), cc, "nope")
	var invalid *InvalidArgumentError
	if !errors.As(err, &invalid) || !strings.Contains(invalid.Reason, "choices") {
		t.Errorf("Expected choice rejection, got %v", err)
	}
}

func TestBoolParser(t *testing.T) {
	cc := testContext()
	p := Bool()

	if v, err := p.Parse(context.Background(), cc, "true"); err != nil || !v {
		t.Errorf("Expected true, got %v (err %v)", v, err)
	}
	if v, err := p.Parse(context.Background(), cc, false); err != nil || v {
		t.Errorf("Expected false, got %v (err %v)", v, err)
	}
	if _, err := p.Parse(context.Background(), cc, "maybe"); err == nil {
		t.Error("Expected rejection for non-boolean")
	}
}

func TestThenChaining(t *testing.T) {
	cc := testContext()
	double := Then(Integer().AtLeast(0), func(ctx context.Context, cc access.Context, v int64) (int64, error) {
		return v * 2, nil
	})

	if v, err := double.Parse(context.Background(), cc, "21"); err != nil || v != 42 {
		t.Errorf("Expected 42, got %d (err %v)", v, err)
	}

	// A first-stage rejection short-circuits; the chained function never runs.
	called := false
	chained := Then(Integer().AtLeast(0), func(ctx context.Context, cc access.Context, v int64) (int64, error) {
		called = true
		return v, nil
	})
	if _, err := chained.Parse(context.Background(), cc, "-1"); err == nil {
		t.Error("Expected rejection to propagate")
	}
	if called {
		t.Error("Chained function ran after a rejection")
	}
}

func TestConversionFault(t *testing.T) {
	cc := testContext()
	boom := errors.New("lookup exploded")
	p := IntegerFunc(func(ctx context.Context, cc access.Context, v int64) (int64, error) {
		return 0, boom
	})

	_, err := p.Parse(context.Background(), cc, "1")
	if !errors.Is(err, boom) {
		t.Fatalf("Expected conversion error to propagate, got %v", err)
	}
	var invalid *InvalidArgumentError
	if errors.As(err, &invalid) {
		t.Error("A conversion fault must not look like a rejection")
	}
}

func TestListParser(t *testing.T) {
	cc := testContext()
	p := List[int64](Integer())

	v, err := p.Parse(context.Background(), cc, "1 2 3")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(v) != 3 || v[0] != 1 || v[2] != 3 {
		t.Errorf("Expected [1 2 3], got %v", v)
	}
}

func TestListParserAggregatesFailures(t *testing.T) {
	cc := testContext()
	p := List[int64](Integer())

	_, err := p.Parse(context.Background(), cc, "1 2 x 4 y")
	var list *InvalidListError
	if !errors.As(err, &list) {
		t.Fatalf("Expected list error, got %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("Expected 2 failed entries, got %d", len(list.Items))
	}
	if list.Items[0].Raw != "x" || list.Items[1].Raw != "y" {
		t.Errorf("Expected failures for x and y, got %v", list.Items)
	}
}

func TestListParserItemBounds(t *testing.T) {
	cc := testContext()
	p := List[int64](Integer()).MinItems(2).MaxItems(3)

	if _, err := p.Parse(context.Background(), cc, "1"); err == nil {
		t.Error("Expected rejection below minimum items")
	}
	if _, err := p.Parse(context.Background(), cc, "1 2 3 4"); err == nil {
		t.Error("Expected rejection above maximum items")
	}
	if !List[int64](Integer()).IsGreedy() {
		t.Error("Expected list parsers to be greedy")
	}
}

func TestTextParserGreedy(t *testing.T) {
	if !Text().IsGreedy() {
		t.Error("Expected Text to be greedy")
	}
	if String().IsGreedy() {
		t.Error("Expected String to consume a single token")
	}
}

func TestParamValidation(t *testing.T) {
	tests := []struct {
		name  string
		run   func()
		panic bool
	}{
		{"valid", func() { NewParam("target", "The target.", String()) }, false},
		{"uppercase name", func() { NewParam("Target", "The target.", String()) }, true},
		{"empty name", func() { NewParam("", "The target.", String()) }, true},
		{"long name", func() { NewParam(strings.Repeat("a", 33), "The target.", String()) }, true},
		{"empty description", func() { NewParam("target", "", String()) }, true},
		{"long description", func() { NewParam("target", strings.Repeat("d", 101), String()) }, true},
		{"nil parser", func() { NewParam[string]("target", "The target.", nil) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); (r != nil) != tt.panic {
					t.Errorf("panic = %v, want panic %v", r, tt.panic)
				}
			}()
			tt.run()
		})
	}
}

func TestParamDefault(t *testing.T) {
	p := NewDefaultParam("count", "How many.", int64(5), Integer())
	if p.Required() {
		t.Error("Defaulted parameter must be optional")
	}
	if !p.HasDefault() || p.DefaultValue() != int64(5) {
		t.Errorf("Expected default 5, got %v", p.DefaultValue())
	}

	opt := NewOptionalParam("count", "How many.", Integer())
	if opt.Required() || opt.HasDefault() || opt.DefaultValue() != nil {
		t.Error("Optional parameter without default must report none")
	}

	req := NewParam("count", "How many.", Integer())
	if !req.Required() {
		t.Error("Expected required parameter")
	}
}

func TestParamGreedy(t *testing.T) {
	if NewParam("q", "Query.", String()).Greedy() {
		t.Error("Single-token parameter must not be greedy")
	}
	if !NewParam("q", "Query.", Text()).Greedy() {
		t.Error("Free-text parameter must be greedy")
	}
}
