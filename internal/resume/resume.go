package resume

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/mzxrai/claude-sessions/internal/parse"
	"github.com/mzxrai/claude-sessions/internal/session"
)

// sourceCommands describes how to hand a session back to its CLI: the short
// alias to probe first, the real binary as fallback, the resume invocation
// (the id arrives via the cs_session_id shell variable, never interpolated),
// and the model flag.
type sourceCommands struct {
	alias      string
	fallback   string
	invocation string
	modelFlag  string
}

func commandsFor(src session.Source) sourceCommands {
	if src == session.SourceCodex {
		return sourceCommands{
			alias:      "c",
			fallback:   "codex",
			invocation: `resume "$cs_session_id"`,
			modelFlag:  "-m",
		}
	}
	return sourceCommands{
		alias:      "cc",
		fallback:   "claude",
		invocation: `--resume "$cs_session_id"`,
		modelFlag:  "--model",
	}
}

func shellQuote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `\"`) + `"`
}

// Script builds the zsh one-liner that resumes the session. Run as an
// interactive shell so user aliases resolve via whence.
func Script(sess session.Session) string {
	cmds := commandsFor(sess.Source)

	modelArg := ""
	if model := parse.ModelCandidate(sess.Model); model != "" {
		modelArg = fmt.Sprintf(" %s %s", cmds.modelFlag, shellQuote(model))
	}
	effortArg := ""
	if sess.Source == session.SourceCodex {
		if effort := parse.EffortCandidate(sess.ReasoningEffort); effort != "" {
			effortArg = fmt.Sprintf(" -c %s", shellQuote(fmt.Sprintf("model_reasoning_effort=%q", effort)))
		}
	}

	return fmt.Sprintf(
		"cs_session_id=%s; if whence -w %s >/dev/null 2>&1; then %s %s%s%s; elif whence -w %s >/dev/null 2>&1; then %s %s%s%s; fi",
		shellQuote(sess.ID),
		cmds.alias, cmds.alias, cmds.invocation, modelArg, effortArg,
		cmds.fallback, cmds.fallback, cmds.invocation, modelArg, effortArg,
	)
}

// OneLiner is the copy-pasteable resume command (for the clipboard action).
func OneLiner(sess session.Session) string {
	cmds := commandsFor(sess.Source)
	base := fmt.Sprintf("%s %s", cmds.fallback, strings.ReplaceAll(cmds.invocation, `"$cs_session_id"`, sess.ID))
	if sess.Project == "" {
		return base
	}
	return fmt.Sprintf("cd %s && %s", sess.Project, base)
}

// projectDir resolves the session's working directory, creating it when the
// original has been deleted so the CLI still has somewhere to start.
func projectDir(sess session.Session) (string, error) {
	if strings.TrimSpace(sess.Project) == "" {
		return "", fmt.Errorf("session project path is empty")
	}
	if err := os.MkdirAll(sess.Project, 0o755); err != nil {
		return "", fmt.Errorf("create project directory %s: %w", sess.Project, err)
	}
	return sess.Project, nil
}

// Run resumes the session in its project directory. Inside tmux with
// tmuxWindows enabled it opens a new window instead of taking over the
// current pane. The returned error carries the child's exit status.
func Run(sess session.Session, tmuxWindows bool) error {
	dir, err := projectDir(sess)
	if err != nil {
		return err
	}
	script := Script(sess)

	if tmuxWindows && os.Getenv("TMUX") != "" {
		if err := runInTmuxWindow(dir, script); err == nil {
			return nil
		}
		// fall through to the plain shell on any tmux failure
	}

	cmd := exec.Command("zsh", "-ic", script)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ExitCode unwraps the child's exit status from a Run error so callers can
// pass it through.
func ExitCode(err error) (int, bool) {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), true
	}
	return 0, false
}

func runInTmuxWindow(dir, script string) error {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return err
	}
	name := filepath.Base(dir)
	if name == "" || name == "." {
		name = "resume"
	}
	_, err = t.Command("new-window", "-n", name, "-c", dir, "zsh", "-ic", script)
	return err
}
