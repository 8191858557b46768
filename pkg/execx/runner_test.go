package execx

import (
	"bytes"
	"context"
	"testing"
)

func TestSystemOutputTrimsStdout(t *testing.T) {
	runner := NewSystem()

	out, err := runner.Output(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("Output returned error: %v", err)
	}
	if out != "hello" {
		t.Errorf("expected %q, got %q", "hello", out)
	}
}

func TestSystemRunStreamsToWriters(t *testing.T) {
	var stdout bytes.Buffer
	runner := &System{Stdout: &stdout, Stderr: &stdout}

	if err := runner.Run(context.Background(), "echo", "streamed"); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := stdout.String(); got != "streamed\n" {
		t.Errorf("expected streamed output, got %q", got)
	}
}

func TestSystemRunReportsFailure(t *testing.T) {
	runner := &System{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}}

	if err := runner.Run(context.Background(), "false"); err == nil {
		t.Fatal("expected error from failing command")
	}
}

func TestLookPath(t *testing.T) {
	runner := NewSystem()

	if _, err := runner.LookPath("echo"); err != nil {
		t.Errorf("expected echo on the search path: %v", err)
	}
	if _, err := runner.LookPath("definitely-not-a-real-binary-xyz"); err == nil {
		t.Error("expected lookup failure for nonexistent binary")
	}
}
