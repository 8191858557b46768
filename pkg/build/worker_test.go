package build

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pyvers/pyvers/pkg/catalog"
	"github.com/pyvers/pyvers/pkg/presence"
)

// fakeRunner records every command and simulates the host: a successful
// altinstall makes the version-suffixed executable resolvable.
type fakeRunner struct {
	commands  [][]string
	failOn    string
	installed map[string]bool
	version   string
	pipOK     bool
}

func newFakeRunner(version string) *fakeRunner {
	return &fakeRunner{installed: map[string]bool{}, version: version}
}

func (f *fakeRunner) record(name string, args []string) []string {
	cmd := append([]string{name}, args...)
	f.commands = append(f.commands, cmd)
	return cmd
}

func (f *fakeRunner) exec(name string, args []string) error {
	cmd := f.record(name, args)
	joined := strings.Join(cmd, " ")
	if f.failOn != "" && strings.Contains(joined, f.failOn) {
		return errors.New("exit status 2")
	}
	if strings.Contains(joined, "altinstall") {
		for exe := range f.installed {
			f.installed[exe] = true
		}
	}
	return nil
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	return f.exec(name, args)
}

func (f *fakeRunner) RunIn(ctx context.Context, dir, name string, args ...string) error {
	return f.exec(name, args)
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	if len(args) > 0 && args[0] == "-m" {
		if f.pipOK {
			return "pip 23.3.2", nil
		}
		return "", errors.New("No module named pip")
	}
	return f.version, nil
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.installed[name] {
		return "/usr/local/bin/" + name, nil
	}
	return "", errors.New("executable not found")
}

// sourceArchive builds a minimal Python-<full>.tgz in memory.
func sourceArchive(t *testing.T, full string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	dir := "Python-" + full + "/"
	if err := tw.WriteHeader(&tar.Header{Name: dir, Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
		t.Fatalf("write dir header: %v", err)
	}
	content := []byte("#!/bin/sh\n")
	if err := tw.WriteHeader(&tar.Header{
		Name:     dir + "configure",
		Typeflag: tar.TypeReg,
		Mode:     0o755,
		Size:     int64(len(content)),
	}); err != nil {
		t.Fatalf("write file header: %v", err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	return buf.Bytes()
}

func testWorker(t *testing.T, runner *fakeRunner, archive []byte) (*Worker, string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if archive == nil {
			http.NotFound(w, r)
			return
		}
		w.Write(archive)
	}))
	t.Cleanup(server.Close)

	workRoot := t.TempDir()
	worker := NewWorker(
		runner,
		presence.NewChecker(runner),
		NewFetcher(WithBaseURL(server.URL)),
		WithWorkRoot(workRoot),
		WithJobs(2),
	)
	return worker, workRoot
}

func TestBuildAndInstallSuccess(t *testing.T) {
	entry := catalog.VersionEntry{Label: "3.12", Full: "3.12.1"}
	runner := newFakeRunner("Python 3.12.1")
	runner.installed[entry.Executable()] = false
	runner.pipOK = true

	worker, workRoot := testWorker(t, runner, sourceArchive(t, entry.Full))

	got, err := worker.BuildAndInstall(context.Background(), entry)
	if err != nil {
		t.Fatalf("BuildAndInstall returned error: %v", err)
	}
	if got != "3.12.1" {
		t.Errorf("expected installed version 3.12.1, got %q", got)
	}

	// Pipeline order: configure, make, altinstall, ldconfig.
	var joined []string
	for _, cmd := range runner.commands {
		joined = append(joined, strings.Join(cmd, " "))
	}
	all := strings.Join(joined, "\n")
	for _, want := range []string{"./configure --prefix=/usr/local", "make -j2", "sudo make altinstall", "sudo ldconfig"} {
		if !strings.Contains(all, want) {
			t.Errorf("expected command %q in:\n%s", want, all)
		}
	}
	if strings.Contains(all, "make install\n") {
		t.Error("plain make install must never run")
	}

	if _, err := os.Stat(filepath.Join(workRoot, "pyvers-build-"+entry.Full)); !os.IsNotExist(err) {
		t.Error("workspace was not removed after success")
	}
}

func TestBuildAndInstallConfigureFailure(t *testing.T) {
	entry := catalog.VersionEntry{Label: "3.11", Full: "3.11.7"}
	runner := newFakeRunner("Python 3.11.7")
	runner.installed[entry.Executable()] = false
	runner.failOn = "./configure"

	worker, workRoot := testWorker(t, runner, sourceArchive(t, entry.Full))

	_, err := worker.BuildAndInstall(context.Background(), entry)
	var buildErr *Error
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if buildErr.Stage != StageConfigure {
		t.Errorf("expected stage %s, got %s", StageConfigure, buildErr.Stage)
	}

	// Nothing after configure may run.
	for _, cmd := range runner.commands {
		joined := strings.Join(cmd, " ")
		if strings.HasPrefix(joined, "make") || strings.Contains(joined, "altinstall") {
			t.Errorf("command ran after configure failure: %s", joined)
		}
	}

	if _, err := os.Stat(filepath.Join(workRoot, "pyvers-build-"+entry.Full)); !os.IsNotExist(err) {
		t.Error("workspace was not removed after failure")
	}
}

func TestBuildAndInstallFetchFailure(t *testing.T) {
	entry := catalog.VersionEntry{Label: "3.10", Full: "3.10.13"}
	runner := newFakeRunner("")
	runner.installed[entry.Executable()] = false

	worker, _ := testWorker(t, runner, nil) // server answers 404

	_, err := worker.BuildAndInstall(context.Background(), entry)
	var buildErr *Error
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if buildErr.Stage != StageFetch {
		t.Errorf("expected stage %s, got %s", StageFetch, buildErr.Stage)
	}
	if len(runner.commands) != 0 {
		t.Errorf("no commands should run when the fetch fails, got %v", runner.commands)
	}
}

// An install that completes but leaves no resolvable executable is a
// verification failure, not a success.
func TestBuildAndInstallVerificationFailure(t *testing.T) {
	entry := catalog.VersionEntry{Label: "3.9", Full: "3.9.18"}
	runner := newFakeRunner("Python 3.9.18")
	// Executable never becomes resolvable: installed map stays empty.

	worker, _ := testWorker(t, runner, sourceArchive(t, entry.Full))

	_, err := worker.BuildAndInstall(context.Background(), entry)
	var buildErr *Error
	if !errors.As(err, &buildErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if buildErr.Stage != StageVerify {
		t.Errorf("expected stage %s, got %s", StageVerify, buildErr.Stage)
	}
}

// A failed pip bootstrap degrades the install but does not fail it.
func TestBuildAndInstallPipBootstrapFailureIsNonFatal(t *testing.T) {
	entry := catalog.VersionEntry{Label: "3.12", Full: "3.12.1"}
	runner := newFakeRunner("Python 3.12.1")
	runner.installed[entry.Executable()] = false
	runner.pipOK = false
	runner.failOn = "ensurepip"

	worker, _ := testWorker(t, runner, sourceArchive(t, entry.Full))

	got, err := worker.BuildAndInstall(context.Background(), entry)
	if err != nil {
		t.Fatalf("pip bootstrap failure must not fail the build: %v", err)
	}
	if got != "3.12.1" {
		t.Errorf("expected installed version 3.12.1, got %q", got)
	}
}
