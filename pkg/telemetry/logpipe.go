//go:build linux

package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// LogPipe redirects the process stdout and stderr through a named pipe
// whose contents are forwarded to both the original stdout and the log
// file. Child processes inherit the redirected descriptors, so package
// manager output lands in the log file without per-command plumbing.
type LogPipe struct {
	fifoPath string
	logFile  *os.File
	writeEnd *os.File

	// savedStdout and savedStderr are dups of the original
	// descriptors, restored on Close.
	savedStdout int
	savedStderr int

	done chan struct{}
}

// OpenLogPipe creates the FIFO, installs the redirection, and starts
// the forwarder goroutine.
func OpenLogPipe(logPath string) (*LogPipe, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	dir, err := os.MkdirTemp("", "saltboot-logpipe-")
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("failed to create pipe directory: %w", err)
	}
	fifoPath := filepath.Join(dir, "out")
	if err := unix.Mkfifo(fifoPath, 0o600); err != nil {
		logFile.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to create fifo: %w", err)
	}

	// Open the read end non-blocking first so opening the write end
	// does not deadlock against it.
	readFD, err := unix.Open(fifoPath, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		logFile.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to open fifo for reading: %w", err)
	}
	readEnd := os.NewFile(uintptr(readFD), fifoPath)

	writeEnd, err := os.OpenFile(fifoPath, os.O_WRONLY, 0)
	if err != nil {
		readEnd.Close()
		logFile.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to open fifo for writing: %w", err)
	}
	unix.SetNonblock(readFD, false)

	savedStdout, err := unix.Dup(int(os.Stdout.Fd()))
	if err != nil {
		writeEnd.Close()
		readEnd.Close()
		logFile.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to save stdout: %w", err)
	}
	savedStderr, err := unix.Dup(int(os.Stderr.Fd()))
	if err != nil {
		unix.Close(savedStdout)
		writeEnd.Close()
		readEnd.Close()
		logFile.Close()
		os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to save stderr: %w", err)
	}

	p := &LogPipe{
		fifoPath:    fifoPath,
		logFile:     logFile,
		writeEnd:    writeEnd,
		savedStdout: savedStdout,
		savedStderr: savedStderr,
		done:        make(chan struct{}),
	}

	original := os.NewFile(uintptr(savedStdout), "stdout")
	go func() {
		defer close(p.done)
		// The copy ends when the last write descriptor closes.
		io.Copy(io.MultiWriter(original, logFile), readEnd)
		readEnd.Close()
	}()

	if err := unix.Dup2(int(writeEnd.Fd()), int(os.Stdout.Fd())); err != nil {
		p.restore()
		return nil, fmt.Errorf("failed to redirect stdout: %w", err)
	}
	if err := unix.Dup2(int(writeEnd.Fd()), int(os.Stderr.Fd())); err != nil {
		p.restore()
		return nil, fmt.Errorf("failed to redirect stderr: %w", err)
	}

	return p, nil
}

// Close restores the original descriptors, drains the pipe, and removes
// the FIFO. Safe to call on a nil pipe. Errors are returned for logging
// only; callers must not let them change the process exit code.
func (p *LogPipe) Close() error {
	if p == nil {
		return nil
	}

	p.restore()

	// Closing the write end lets the forwarder hit EOF and drain.
	err := p.writeEnd.Close()
	<-p.done

	if cerr := p.logFile.Close(); err == nil {
		err = cerr
	}
	if rerr := os.RemoveAll(filepath.Dir(p.fifoPath)); err == nil {
		err = rerr
	}
	unix.Close(p.savedStdout)
	unix.Close(p.savedStderr)
	return err
}

func (p *LogPipe) restore() {
	unix.Dup2(p.savedStdout, int(os.Stdout.Fd()))
	unix.Dup2(p.savedStderr, int(os.Stderr.Fd()))
}
