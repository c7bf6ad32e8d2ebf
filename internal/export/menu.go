package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/modslug/internal/capability"
	"github.com/xxxsen/modslug/internal/model"
)

// Action is a terminal export action.
type Action string

const (
	ActionCopy Action = "copy"
	ActionSave Action = "save"
	ActionNone Action = "none"
)

var errClipboardUnavailable = errors.New("clipboard is not available (install xclip, xsel or wl-clipboard)")

// ParseAction converts a flag value into an Action.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionCopy, ActionSave, ActionNone:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q, expected copy, save or none", s)
}

// Clipboard stores text on the system clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// SystemClipboard returns the OS clipboard, or nil when it is not available.
func SystemClipboard(caps capability.Set) Clipboard {
	if !caps.Clipboard {
		return nil
	}
	return systemClipboard{}
}

// Uploader copies a saved report somewhere else and returns its location.
type Uploader interface {
	Upload(ctx context.Context, filePath string) (string, error)
}

// Menu offers the export actions for a finished scan.
type Menu struct {
	summary   *model.Summary
	clipboard Clipboard
	uploader  Uploader
	dir       string
	file      string
	in        *bufio.Reader
	out       io.Writer
}

// NewMenu builds a menu. dir and file locate the saved report; clip may be
// nil when no clipboard exists.
func NewMenu(summary *model.Summary, clip Clipboard, dir, file string, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		summary:   summary,
		clipboard: clip,
		dir:       dir,
		file:      file,
		in:        bufio.NewReader(in),
		out:       out,
	}
}

// WithUploader makes every successful save also upload the report.
func (m *Menu) WithUploader(u Uploader) *Menu {
	m.uploader = u
	return m
}

// Do performs one action and reports the result on the menu output.
func (m *Menu) Do(ctx context.Context, action Action) error {
	logger := logutil.GetLogger(ctx)
	switch action {
	case ActionCopy:
		if m.clipboard == nil {
			return errClipboardUnavailable
		}
		if err := m.clipboard.WriteAll(SlugList(m.summary)); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		logger.Info("slug list copied to clipboard", zap.Int("slugs", len(m.summary.Slugs())))
		fmt.Fprintln(m.out, "\nSuccess: List copied to clipboard.")
	case ActionSave:
		path, err := SaveReport(m.dir, m.file, m.summary)
		if err != nil {
			return fmt.Errorf("save the file: %w", err)
		}
		logger.Info("slug list saved", zap.String("path", path))
		fmt.Fprintf(m.out, "\nSuccess: List saved to '%s'.\n", path)
		m.upload(ctx, path)
	case ActionNone:
		fmt.Fprintln(m.out, "\nContinuing without action.")
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}

// Run prompts until an action succeeds, the user picks no action or the
// input ends.
func (m *Menu) Run(ctx context.Context) error {
	if m.clipboard == nil {
		fmt.Fprintln(m.out, "\nNote: no clipboard utility found. Copy to clipboard is not available.")
	}
	for {
		fmt.Fprintln(m.out, "\nChoose an action:")
		fmt.Fprintln(m.out, "1: Copy list of Slugs/IDs to clipboard")
		fmt.Fprintf(m.out, "2: Save list of Slugs/IDs to '%s'\n", m.file)
		fmt.Fprintln(m.out, "3: Continue without action")
		fmt.Fprint(m.out, "Your choice (1/2/3): ")

		line, err := m.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read choice: %w", err)
		}
		if errors.Is(err, io.EOF) && line == "" {
			fmt.Fprintln(m.out, "\nNo input, continuing without action.")
			return nil
		}

		var action Action
		switch strings.TrimSpace(line) {
		case "1":
			action = ActionCopy
		case "2":
			action = ActionSave
		case "3":
			action = ActionNone
		default:
			fmt.Fprintln(m.out, "Invalid input. Please enter 1, 2, or 3.")
			continue
		}

		if err := m.Do(ctx, action); err != nil {
			logutil.GetLogger(ctx).Warn("export action failed", zap.String("action", string(action)), zap.Error(err))
			fmt.Fprintf(m.out, "\nError: %v\n", err)
			continue
		}
		return nil
	}
}

// upload failures leave the local file in place and are only reported.
func (m *Menu) upload(ctx context.Context, path string) {
	if m.uploader == nil {
		return
	}
	logger := logutil.GetLogger(ctx)
	location, err := m.uploader.Upload(ctx, path)
	if err != nil {
		logger.Warn("upload report failed", zap.String("path", path), zap.Error(err))
		fmt.Fprintf(m.out, "Warning: upload failed: %v\n", err)
		return
	}
	logger.Info("report uploaded", zap.String("location", location))
	fmt.Fprintf(m.out, "Success: List uploaded to '%s'.\n", location)
}
