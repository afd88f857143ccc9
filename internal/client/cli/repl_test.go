package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubExec struct {
	loggedIn bool
	calls    []string
}

func (s *stubExec) isLoggedIn() bool { return s.loggedIn }

func (s *stubExec) record(name string) error {
	s.calls = append(s.calls, name)
	return nil
}

func (s *stubExec) Register(ctx context.Context) error { return s.record("register") }
func (s *stubExec) Login(ctx context.Context) error    { return s.record("login") }
func (s *stubExec) Logout(ctx context.Context) error   { return s.record("logout") }
func (s *stubExec) OpenFeed(ctx context.Context, user string) error {
	return s.record("feed:" + user)
}
func (s *stubExec) Older(ctx context.Context) error    { return s.record("older") }
func (s *stubExec) MergeNew(ctx context.Context) error { return s.record("new") }
func (s *stubExec) Post(ctx context.Context) error     { return s.record("post") }
func (s *stubExec) Delete(ctx context.Context, arg string) error {
	return s.record("delete:" + arg)
}
func (s *stubExec) Profile(ctx context.Context) error { return s.record("profile") }
func (s *stubExec) Show(ctx context.Context) error    { return s.record("show") }

func runScript(t *testing.T, script string) (*stubExec, []string) {
	t.Helper()

	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		for _, v := range a {
			if s, ok := v.(string); ok {
				lines = append(lines, s)
			}
		}
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })

	stub := &stubExec{}
	scanner := bufio.NewScanner(strings.NewReader(script))
	runREPL(context.Background(), stub, func() string { return "test" }, scanner)
	return stub, lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	stub, _ := runScript(t, "login\nfeed alice\nolder\nnew\ndelete 7\nlogout\nexit\n")

	assert.Equal(t,
		[]string{"login", "feed:alice", "older", "new", "delete:7", "logout"},
		stub.calls)
}

func TestRunREPL_UnknownCommand(t *testing.T) {
	_, lines := runScript(t, "frobnicate\nexit\n")

	found := false
	for _, l := range lines {
		if strings.Contains(l, "Unknown command") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRunREPL_EmptyLinesIgnored(t *testing.T) {
	stub, _ := runScript(t, "\n\n  \nfeed\nquit\n")
	assert.Equal(t, []string{"feed:"}, stub.calls)
}

func TestRunREPL_EOFExits(t *testing.T) {
	stub, _ := runScript(t, "older\n")
	assert.Equal(t, []string{"older"}, stub.calls)
}
