package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"mindscribe/internal/api"
	"mindscribe/internal/config"
	"mindscribe/internal/preflight"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

var statusKinds = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

// renderStatusLine formats "  Label:   [KIND] message", coloured by kind.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style, ok := statusKinds[kind]
	if !ok {
		style = statusKinds[statusInfo]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s%-*s [%s]", statusIndent, statusLabelWidth, label+":", style.label)
	if message != "" {
		b.WriteByte(' ')
		b.WriteString(message)
	}
	if colorize {
		return style.color + b.String() + ansiReset
	}
	return b.String()
}

// checkKind maps a readiness result onto a status line kind. Failed optional
// checks are warnings because a local fallback covers them.
func checkKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusLines(status api.DaemonStatus, colorize bool) []string {
	lines := renderSectionHeader("MindScribe", colorize)

	if status.Running {
		msg := "Running"
		if status.PID > 0 {
			msg = fmt.Sprintf("Running (pid %d)", status.PID)
		}
		lines = append(lines, renderStatusLine("Server", statusOK, msg, colorize))
	} else {
		lines = append(lines, renderStatusLine("Server", statusInfo, "Not running", colorize))
	}

	lines = append(lines, renderStatusLine("Store", statusOK,
		fmt.Sprintf("%s (%d clients, %d sessions)", status.StoreBackend, status.Clients, status.Sessions), colorize))

	if status.TranscriptionOffline {
		lines = append(lines, renderStatusLine("Transcription", statusWarn, "Offline placeholder (ELEVENLABS_API_KEY not set)", colorize))
	} else {
		lines = append(lines, renderStatusLine("Transcription", statusOK, "ElevenLabs", colorize))
	}

	if status.LLMProvider == config.ProviderNone {
		lines = append(lines, renderStatusLine("Note generation", statusWarn, "Sample content only (no LLM configured)", colorize))
	} else {
		lines = append(lines, renderStatusLine("Note generation", statusOK, status.LLMProvider, colorize))
	}

	lines = append(lines, renderStatusLine("Server lock", statusInfo, status.LockFilePath, colorize))
	return lines
}

func checkLines(results []preflight.Result, colorize bool) []string {
	lines := renderSectionHeader("Readiness", colorize)
	for _, r := range results {
		lines = append(lines, renderStatusLine(r.Name, checkKind(r), r.Detail, colorize))
	}
	if failed := preflight.Failed(results); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, r := range failed {
			names = append(names, r.Name)
		}
		lines = append(lines, fmt.Sprintf("%sFailed checks: %s", statusIndent, strings.Join(names, ", ")))
	}
	return lines
}
