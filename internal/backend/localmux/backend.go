package localmux

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/thurbox/thurbox/internal/backend"
	"github.com/thurbox/thurbox/internal/thurerr"
)

const panePrefix = "tb"

// LocalMux drives tmux's control-mode protocol as the default
// SessionBackend implementation (§4.3).
type LocalMux struct {
	mu sync.Mutex
	cm *controlMode
}

func New() *LocalMux { return &LocalMux{} }

func (l *LocalMux) Name() string { return "tmux" }

// CheckAvailable parses `tmux -V` and rejects versions below 3.2.
func (l *LocalMux) CheckAvailable(ctx context.Context) error {
	out, err := exec.CommandContext(ctx, "tmux", "-V").Output()
	if err != nil {
		return thurerr.New(thurerr.BackendUnavailable, "tmux binary not found", err)
	}
	major, minor, ok := parseTmuxVersion(strings.TrimSpace(string(out)))
	if !ok {
		return thurerr.New(thurerr.BackendUnavailable, "could not parse tmux version", nil)
	}
	if major < minMajor || (major == minMajor && minor < minMinor) {
		return thurerr.New(thurerr.BackendUnavailable, fmt.Sprintf("tmux %d.%d found, need >= %d.%d", major, minor, minMajor, minMinor), nil)
	}
	return nil
}

// parseTmuxVersion extracts "3.2a"-style version strings from `tmux -V`
// output ("tmux 3.2a").
func parseTmuxVersion(out string) (major, minor int, ok bool) {
	fields := strings.Fields(out)
	if len(fields) < 2 {
		return 0, 0, false
	}
	v := fields[len(fields)-1]
	dot := strings.IndexByte(v, '.')
	if dot < 0 {
		return 0, 0, false
	}
	maj, err := strconv.Atoi(v[:dot])
	if err != nil {
		return 0, 0, false
	}
	rest := v[dot+1:]
	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, 0, false
	}
	min, err := strconv.Atoi(rest[:i])
	if err != nil {
		return 0, 0, false
	}
	return maj, min, true
}

// EnsureReady creates the namespaced session if missing and starts
// control mode, applying the server/session options from §4.3.
// Idempotent.
func (l *LocalMux) EnsureReady(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cm != nil {
		return nil
	}

	// Create the session detached if it doesn't already exist.
	check := exec.CommandContext(ctx, "tmux", "-L", socketName, "has-session", "-t", sessionName)
	if err := check.Run(); err != nil {
		create := exec.CommandContext(ctx, "tmux", "-L", socketName, "new-session", "-d", "-s", sessionName)
		if out, err := create.CombinedOutput(); err != nil {
			return thurerr.New(thurerr.BackendUnavailable, "creating tmux session: "+strings.TrimSpace(string(out)), err)
		}
	}

	cm, err := startControlMode(ctx)
	if err != nil {
		return err
	}
	l.cm = cm

	if err := l.applyConfig(); err != nil {
		return err
	}
	return nil
}

func (l *LocalMux) applyConfig() error {
	commands := []string{
		"set-option -g default-terminal xterm-256color",
		"set-option -g extended-keys on",
		"set-option -t " + sessionName + " remain-on-exit on",
		"set-option -t " + sessionName + " status off",
		"set-option -t " + sessionName + " history-limit 5000",
		"set-window-option -g window-size manual",
	}
	for _, c := range commands {
		if _, err := l.cm.send(c, commandTimeout); err != nil {
			return thurerr.New(thurerr.BackendProtocol, "applying config: "+c, err)
		}
	}
	return nil
}

// Spawn creates a new pane named "<prefix>-<name>" running argv.
func (l *LocalMux) Spawn(ctx context.Context, spec backend.SpawnSpec) (backend.SpawnedSession, error) {
	l.mu.Lock()
	cm := l.cm
	l.mu.Unlock()
	if cm == nil {
		return backend.SpawnedSession{}, thurerr.New(thurerr.BackendUnavailable, "backend not ready", nil)
	}

	name := panePrefix + "-" + spec.Name
	cmdline := shellJoin(spec.Argv)
	for k, v := range spec.Env {
		cmdline = shellEscape(k) + "=" + shellEscape(v) + " " + cmdline
	}

	tmuxCmd := fmt.Sprintf(
		"new-window -t %s -n %s -P -F '#{pane_id}' -c %s %s",
		sessionName, shellEscape(name), shellEscape(spec.Cwd), cmdline,
	)
	lines, err := cm.send(tmuxCmd, commandTimeout)
	if err != nil {
		return backend.SpawnedSession{}, thurerr.New(thurerr.SpawnFailed, "new-window", err)
	}
	if len(lines) == 0 {
		return backend.SpawnedSession{}, thurerr.New(thurerr.SpawnFailed, "new-window returned no pane id", nil)
	}
	id := backend.BackendId(strings.TrimSpace(lines[0]))

	if spec.Cols > 0 && spec.Rows > 0 {
		_ = l.Resize(ctx, id, spec.Cols, spec.Rows)
	}

	output, input, err := l.connectPane(id)
	if err != nil {
		return backend.SpawnedSession{}, err
	}
	return backend.SpawnedSession{BackendID: id, Output: output, Input: input}, nil
}

// Adopt reattaches to an existing pane, returning an initial
// color-aware capture and then forcing a resize so the child repaints
// through the normal output stream.
func (l *LocalMux) Adopt(ctx context.Context, id backend.BackendId) (backend.AdoptedSession, error) {
	l.mu.Lock()
	cm := l.cm
	l.mu.Unlock()
	if cm == nil {
		return backend.AdoptedSession{}, thurerr.New(thurerr.BackendUnavailable, "backend not ready", nil)
	}

	output, input, err := l.connectPane(id)
	if err != nil {
		return backend.AdoptedSession{}, err
	}

	capture := fmt.Sprintf("capture-pane -t %s -p -e -S -", string(id))
	lines, err := cm.send(capture, commandTimeout)
	if err != nil {
		return backend.AdoptedSession{}, thurerr.New(thurerr.BackendProtocol, "capture-pane", err)
	}
	initial := []byte(strings.Join(lines, "\n"))

	l.forceResize(id)

	return backend.AdoptedSession{Output: output, Input: input, InitialScreen: initial}, nil
}

// connectPane registers the pane for %output routing (waited "on"
// subscription, per the documented rule that this must not be
// fire-and-forget) and builds a writer that sends literal keys.
func (l *LocalMux) connectPane(id backend.BackendId) (io.Reader, io.WriteCloser, error) {
	l.mu.Lock()
	cm := l.cm
	l.mu.Unlock()

	sink := cm.registerPane(id)
	if _, err := cm.send(fmt.Sprintf("refresh-client -A '%s:on'", string(id)), commandTimeout); err != nil {
		cm.unregisterPane(id)
		return nil, nil, thurerr.New(thurerr.BackendProtocol, "subscribing to pane output", err)
	}

	return &paneReader{ch: sink}, &paneWriter{cm: cm, pane: id}, nil
}

// forceResize shrinks a pane by one row then resizes back, forcing a
// SIGWINCH-equivalent repaint so the child's TUI redraws through the
// normal escape-sequence stream (needed after Adopt, whose capture is
// a plain-text approximation).
func (l *LocalMux) forceResize(id backend.BackendId) {
	l.mu.Lock()
	cm := l.cm
	l.mu.Unlock()
	if cm == nil {
		return
	}
	lines, err := cm.send(fmt.Sprintf("display-message -p -t %s '#{pane_width}x#{pane_height}'", string(id)), commandTimeout)
	if err != nil || len(lines) == 0 {
		return
	}
	dims := strings.SplitN(strings.TrimSpace(lines[0]), "x", 2)
	if len(dims) != 2 {
		return
	}
	_, err1 := strconv.Atoi(dims[0])
	h, err2 := strconv.Atoi(dims[1])
	if err1 != nil || err2 != nil || h <= 1 {
		return
	}
	_, _ = cm.send(fmt.Sprintf("resize-window -t %s -y %d", string(id), h-1), commandTimeout)
	_, _ = cm.send(fmt.Sprintf("resize-window -t %s -y %d", string(id), h), commandTimeout)
}

// Discover enumerates panes in the "tb-" namespace.
func (l *LocalMux) Discover(ctx context.Context) ([]backend.Discovered, error) {
	l.mu.Lock()
	cm := l.cm
	l.mu.Unlock()
	if cm == nil {
		return nil, thurerr.New(thurerr.BackendUnavailable, "backend not ready", nil)
	}

	lines, err := cm.send("list-windows -t "+sessionName+" -F '#{pane_id} #{window_name} #{pane_dead}'", commandTimeout)
	if err != nil {
		return nil, thurerr.New(thurerr.BackendProtocol, "list-windows", err)
	}
	var out []backend.Discovered
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		if !strings.HasPrefix(fields[1], panePrefix+"-") {
			continue
		}
		out = append(out, backend.Discovered{
			BackendID: backend.BackendId(fields[0]),
			Name:      fields[1],
			IsAlive:   fields[2] != "1",
		})
	}
	return out, nil
}

func (l *LocalMux) Resize(ctx context.Context, id backend.BackendId, cols, rows int) error {
	l.mu.Lock()
	cm := l.cm
	l.mu.Unlock()
	if cm == nil {
		return thurerr.New(thurerr.BackendUnavailable, "backend not ready", nil)
	}
	if _, err := cm.send(fmt.Sprintf("resize-window -t %s -x %d -y %d", string(id), cols, rows), commandTimeout); err != nil {
		return thurerr.New(thurerr.BackendProtocol, "resize-window", err)
	}
	if _, err := cm.send(fmt.Sprintf("resize-pane -t %s -x %d -y %d", string(id), cols, rows), commandTimeout); err != nil {
		return thurerr.New(thurerr.BackendProtocol, "resize-pane", err)
	}
	return nil
}

func (l *LocalMux) IsDead(ctx context.Context, id backend.BackendId) (bool, error) {
	l.mu.Lock()
	cm := l.cm
	l.mu.Unlock()
	if cm == nil {
		return true, thurerr.New(thurerr.BackendUnavailable, "backend not ready", nil)
	}
	lines, err := cm.send(fmt.Sprintf("display-message -p -t %s '#{pane_dead}'", string(id)), commandTimeout)
	if err != nil {
		return true, thurerr.New(thurerr.BackendProtocol, "querying pane_dead", err)
	}
	return len(lines) > 0 && strings.TrimSpace(lines[0]) == "1", nil
}

// Detach stops streaming without killing, using the documented
// nowait exception (final detach).
func (l *LocalMux) Detach(ctx context.Context, id backend.BackendId) error {
	l.mu.Lock()
	cm := l.cm
	l.mu.Unlock()
	if cm == nil {
		return nil
	}
	cm.unregisterPane(id)
	return cm.sendNoWait(fmt.Sprintf("refresh-client -A '%s:off'", string(id)))
}

func (l *LocalMux) Kill(ctx context.Context, id backend.BackendId) error {
	l.mu.Lock()
	cm := l.cm
	l.mu.Unlock()
	if cm == nil {
		return thurerr.New(thurerr.BackendUnavailable, "backend not ready", nil)
	}
	cm.unregisterPane(id)
	if _, err := cm.send("kill-pane -t "+string(id), commandTimeout); err != nil {
		return thurerr.New(thurerr.BackendProtocol, "kill-pane", err)
	}
	return nil
}

// paneReader adapts the pane's broadcast channel to io.Reader.
type paneReader struct {
	ch  <-chan []byte
	buf bytes.Buffer
}

func (r *paneReader) Read(p []byte) (int, error) {
	for r.buf.Len() == 0 {
		chunk, ok := <-r.ch
		if !ok {
			return 0, io.EOF
		}
		r.buf.Write(chunk)
	}
	return r.buf.Read(p)
}

// paneWriter forwards bytes to the pane via a nowait "send-keys -l"
// command, matching control mode's only mechanism for pane input.
type paneWriter struct {
	cm   *controlMode
	pane backend.BackendId
}

func (w *paneWriter) Write(p []byte) (int, error) {
	cmd := fmt.Sprintf("send-keys -t %s -l -- %s", string(w.pane), shellEscape(string(p)))
	if err := w.cm.sendNoWait(cmd); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *paneWriter) Close() error { return nil }

func shellEscape(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func shellJoin(argv []string) string {
	parts := make([]string, len(argv))
	for i, a := range argv {
		parts[i] = shellEscape(a)
	}
	return strings.Join(parts, " ")
}
