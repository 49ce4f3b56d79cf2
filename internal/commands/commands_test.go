package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"taskapp/internal/commands"
	"taskapp/internal/config"
	"taskapp/internal/exitcode"
	"taskapp/internal/service"
	"taskapp/internal/session"
	"taskapp/internal/testutil"
)

// newConfig returns a default config in a temp dir, signed in as id
// unless id is the zero Identity.
func newConfig(t *testing.T, id session.Identity, quiet bool) *config.Config {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	cfg.Quiet = quiet
	if id.Resolved() {
		if err := session.SaveFile(cfg.SessionPath(), id); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}
	}
	return cfg
}

var (
	user  = session.Identity{Role: session.RoleUser, UserID: 2, Email: "a@b.c"}
	admin = session.Identity{Role: session.RoleAdmin, Email: "admin@taskapp.com"}
)

// runCommand is a helper to run a command with FakeService.
func runCommand(t *testing.T, cmd commands.Command, svc *testutil.FakeService, cfg *config.Config, args []string) (stdout, stderr string, code int) {
	t.Helper()

	var outBuf, errBuf bytes.Buffer
	var backend service.Service
	if svc != nil {
		backend = svc
	}
	code = cmd.Run(context.Background(), cfg, backend, args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func seeded() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.AddTask(1, 2, "Buy milk", false)
	svc.AddTask(2, 2, "Walk dog", true)
	svc.AddTask(3, 5, "Other user's task", false)
	return svc
}

func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, newConfig(t, session.Identity{}, false), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "taskapp 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestHelpCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.HelpCmd{}, nil, newConfig(t, session.Identity{}, false), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	for _, cmd := range commands.DefaultRegistry.All() {
		if !strings.Contains(stdout, "taskapp "+cmd.Name()) {
			t.Errorf("help output should mention %q", cmd.Name())
		}
	}
}

func TestRegistry_Aliases(t *testing.T) {
	for alias, name := range map[string]string{"ls": "list", "create": "add", "complete": "done", "reopen": "undo", "delete": "rm"} {
		cmd, ok := commands.DefaultRegistry.Find(alias)
		if !ok || cmd.Name() != name {
			t.Errorf("expected alias %q to resolve to %q", alias, name)
		}
	}

	r := commands.NewRegistry()
	if err := r.Register(&commands.ListCmd{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Register(&commands.ListCmd{}); err == nil {
		t.Error("expected duplicate registration to fail")
	}
}

func TestListCommand_UserSeesOwnTasks(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetPage(1)
	stdout, stderr, code := runCommand(t, cmd, seeded(), newConfig(t, user, false), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "   1  [ ] Buy milk\n   2  [x] Walk dog\npage 1/1, 2 tasks\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_AdminSeesOwners(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetPage(1)
	cmd.SetSort("id", true)
	stdout, _, code := runCommand(t, cmd, seeded(), newConfig(t, admin, true), nil)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   3  [ ] Other user's task  (user 5)\n   2  [x] Walk dog  (user 2)\n   1  [ ] Buy milk  (user 2)\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Filter(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetPage(1)
	cmd.SetFilter("MILK")
	stdout, _, _ := runCommand(t, cmd, seeded(), newConfig(t, user, false), nil)

	expected := "   1  [ ] Buy milk\npage 1/1, 1 task\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}

	cmd.SetFilter("nothing")
	stdout, _, _ = runCommand(t, cmd, seeded(), newConfig(t, user, false), nil)
	if stdout != "no results\n" {
		t.Errorf("expected %q, got %q", "no results\n", stdout)
	}
}

func TestListCommand_Active(t *testing.T) {
	svc := seeded()
	svc.AddTask(4, 2, "Answer mail", false)

	cmd := &commands.ListCmd{}
	cmd.SetPage(1)
	cmd.SetActive(true)
	cmd.SetSort("title", false)
	stdout, _, _ := runCommand(t, cmd, svc, newConfig(t, user, false), nil)

	expected := "   4  [ ] Answer mail\n   1  [ ] Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestListCommand_Empty(t *testing.T) {
	cmd := &commands.ListCmd{}
	cmd.SetPage(1)

	stdout, _, code := runCommand(t, cmd, testutil.NewFakeService(), newConfig(t, user, false), nil)
	if code != exitcode.Success || stdout != "no tasks found\n" {
		t.Errorf("got %d %q", code, stdout)
	}

	// Quiet mode suppresses "no tasks found"
	stdout, _, _ = runCommand(t, cmd, testutil.NewFakeService(), newConfig(t, user, true), nil)
	if stdout != "" {
		t.Errorf("expected empty stdout in quiet mode, got %q", stdout)
	}
}

func TestListCommand_InvalidArgs(t *testing.T) {
	tests := []struct {
		name    string
		page    int
		sort    string
		args    []string
		wantErr string
	}{
		{"page zero", 0, "", nil, "error: invalid page number: 0\n"},
		{"bad sort", 1, "owner", nil, "error: unknown sort key: owner\n"},
		{"positional", 1, "", []string{"work"}, "error: unexpected argument: work\n"},
	}
	for _, tt := range tests {
		cmd := &commands.ListCmd{}
		cmd.SetPage(tt.page)
		cmd.SetSort(tt.sort, false)
		svc := seeded()
		_, stderr, code := runCommand(t, cmd, svc, newConfig(t, user, false), tt.args)

		if code != exitcode.UserError {
			t.Errorf("%s: expected exit code %d, got %d", tt.name, exitcode.UserError, code)
		}
		if stderr != tt.wantErr {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.wantErr, stderr)
		}
		if n := len(svc.Calls()); n != 0 {
			t.Errorf("%s: expected no backend calls, got %d", tt.name, n)
		}
	}
}

func TestListCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.ListErr = testutil.ErrNetwork

	cmd := &commands.ListCmd{}
	cmd.SetPage(1)
	_, stderr, code := runCommand(t, cmd, svc, newConfig(t, user, false), nil)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: backend error: failed to fetch tasks: network unreachable\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestAddCommand_Success(t *testing.T) {
	svc := seeded()
	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, newConfig(t, user, false), []string{"Buy", "bread"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != " 201  [ ] Buy bread\n" {
		t.Errorf("expected created task, got %q", stdout)
	}

	tasks := svc.Tasks()
	last := tasks[len(tasks)-1]
	if last != (service.Task{ID: 201, UserID: 2, Title: "Buy bread"}) {
		t.Errorf("unexpected remote task %+v", last)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.AddCmd{}, seeded(), newConfig(t, user, true), []string{"Buy bread"})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
}

func TestAddCommand_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		id      session.Identity
		args    []string
		wantErr string
	}{
		{"no title", user, nil, "error: title required\n"},
		{"blank title", user, []string{"  "}, "error: title required\n"},
		{"short title", user, []string{"ab"}, "error: Title must be at least 3 characters\n"},
		{"admin", admin, []string{"Buy bread"}, "error: admins cannot add tasks\n"},
	}
	for _, tt := range tests {
		svc := seeded()
		_, stderr, code := runCommand(t, &commands.AddCmd{}, svc, newConfig(t, tt.id, false), tt.args)

		if code != exitcode.UserError {
			t.Errorf("%s: expected exit code %d, got %d", tt.name, exitcode.UserError, code)
		}
		if stderr != tt.wantErr {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.wantErr, stderr)
		}
		if n := svc.CallCount(service.OpCreate); n != 0 {
			t.Errorf("%s: expected no create call, got %d", tt.name, n)
		}
	}
}

func TestDoneAndUndoCommands(t *testing.T) {
	svc := seeded()
	cfg := newConfig(t, user, false)

	stdout, _, code := runCommand(t, &commands.DoneCmd{}, svc, cfg, []string{"1"})
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("done: got %d %q", code, stdout)
	}
	stdout, _, code = runCommand(t, &commands.UndoCmd{}, svc, cfg, []string{"2"})
	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("undo: got %d %q", code, stdout)
	}

	tasks := svc.Tasks()
	if !tasks[0].Completed || tasks[1].Completed {
		t.Errorf("unexpected remote state %+v", tasks)
	}
}

func TestDoneCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"no id", nil, exitcode.UserError, "error: task id required\n"},
		{"not a number", []string{"a1"}, exitcode.UserError, "error: invalid task id: a1\n"},
		{"zero", []string{"0"}, exitcode.UserError, "error: invalid task id: 0\n"},
		{"extra arg", []string{"1", "2"}, exitcode.UserError, "error: unexpected argument: 2\n"},
		{"unknown id", []string{"99"}, exitcode.UserError, "error: task not found: 99\n"},
		{"other owner", []string{"3"}, exitcode.UserError, "error: task not found: 3\n"},
	}
	for _, tt := range tests {
		svc := seeded()
		_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, newConfig(t, user, false), tt.args)

		if code != tt.wantCode {
			t.Errorf("%s: expected exit code %d, got %d", tt.name, tt.wantCode, code)
		}
		if stderr != tt.wantErr {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.wantErr, stderr)
		}
		if n := svc.CallCount(service.OpUpdate); n != 0 {
			t.Errorf("%s: expected no update call, got %d", tt.name, n)
		}
	}
}

func TestDoneCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.UpdateErr = testutil.ErrNetwork

	_, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, newConfig(t, user, false), []string{"1"})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: backend error: failed to update task 1: network unreachable\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestRmCommand_Success(t *testing.T) {
	svc := seeded()
	stdout, _, code := runCommand(t, &commands.RmCmd{}, svc, newConfig(t, admin, false), []string{"3"})

	if code != exitcode.Success || stdout != "ok\n" {
		t.Errorf("got %d %q", code, stdout)
	}
	ids := svc.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("expected task 3 deleted, remote has %v", ids)
	}
}

func TestRmCommand_BackendError(t *testing.T) {
	svc := seeded()
	svc.DeleteErr = testutil.ErrNetwork

	_, stderr, code := runCommand(t, &commands.RmCmd{}, svc, newConfig(t, user, false), []string{"1"})

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	expected := "error: backend error: failed to delete task 1: network unreachable\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if len(svc.IDs()) != 3 {
		t.Error("expected remote collection unchanged")
	}
}

func TestWhoamiCommand(t *testing.T) {
	stdout, _, code := runCommand(t, &commands.WhoamiCmd{}, nil, newConfig(t, user, false), nil)
	if code != exitcode.Success || stdout != "a@b.c (user 2)\n" {
		t.Errorf("got %d %q", code, stdout)
	}

	_, stderr, code := runCommand(t, &commands.WhoamiCmd{}, nil, newConfig(t, session.Identity{}, false), nil)
	if code != exitcode.AuthError || stderr != "error: not logged in\n" {
		t.Errorf("got %d %q", code, stderr)
	}
}

func TestServeCommand_StopsWithContext(t *testing.T) {
	cmd := &commands.ServeCmd{}
	cfg := newConfig(t, session.Identity{}, false)
	cfg.ListenAddr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(ctx, cfg, testutil.NewFakeService(), nil, &outBuf, &errBuf)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errBuf.String())
	}
	if outBuf.String() != "serving on http://127.0.0.1:0\n" {
		t.Errorf("unexpected output %q", outBuf.String())
	}
}
