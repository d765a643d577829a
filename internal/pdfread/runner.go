package pdfread

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// Runner lets us stub the external reader process in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// maxPayloadBytes caps what one reader invocation may emit on stdout. A COA
// dump is a few hundred kilobytes at most; anything near this limit is a
// runaway process, not a document.
const maxPayloadBytes = 32 << 20

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	// The reader contract is argv-only: file path in, JSON on stdout. No
	// stdin keeps a misbehaving reader from blocking on a read forever.
	cmd.Stdin = nil

	out := &cappedBuffer{limit: maxPayloadBytes}
	var errb bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = &errb

	err := cmd.Run()
	dur := time.Since(start)

	if err == nil && out.truncated {
		err = fmt.Errorf("reader output exceeded %d bytes", maxPayloadBytes)
	}
	if err != nil {
		r.logger.Error("pdfread.exec.failed",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"error", err,
			"stderr", truncate(errb.String(), 8<<10), // cap at 8KB
		)
	} else {
		r.logger.Debug("pdfread.exec.ok",
			"cmd", name,
			"args", strings.Join(args, " "),
			"duration_ms", dur.Milliseconds(),
			"stdout_bytes", out.buf.Len(),
			"stderr_bytes", errb.Len(),
		)
	}

	return out.buf.Bytes(), errb.Bytes(), err
}

// cappedBuffer stores up to limit bytes and flags overflow instead of
// erroring, so the child is never killed by a broken pipe mid-write.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if room := b.limit - b.buf.Len(); room < n {
		b.truncated = true
		if room < 0 {
			room = 0
		}
		p = p[:room]
	}
	b.buf.Write(p)
	return n, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
