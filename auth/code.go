package auth

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// CodeSource supplies the passcode the operator received by email. Code may
// block until the operator answers.
type CodeSource interface {
	Code(ctx context.Context) (string, error)
}

// CodeSourceFunc adapts a function to CodeSource.
type CodeSourceFunc func(ctx context.Context) (string, error)

func (f CodeSourceFunc) Code(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticCode is a code known before the run starts.
type StaticCode string

func (c StaticCode) Code(context.Context) (string, error) {
	return string(c), nil
}

// ChannelCode waits for a code on a channel. A closed channel is an error.
type ChannelCode <-chan string

func (c ChannelCode) Code(ctx context.Context) (string, error) {
	select {
	case code, ok := <-c:
		if !ok {
			return "", errors.New("code channel closed")
		}
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// PromptCode asks for the code on Out and reads one line from In. When In is
// a terminal the line is read through x/term so editing keys work. Notice, if
// set, is written on its own line before the prompt; nothing is written until
// Code is called.
type PromptCode struct {
	In     io.Reader
	Out    io.Writer
	Notice string
	Prompt string
}

func NewPromptCode() *PromptCode {
	return &PromptCode{In: os.Stdin, Out: os.Stderr, Prompt: "One-time password: "}
}

func (p *PromptCode) Code(context.Context) (string, error) {
	if p.Notice != "" {
		fmt.Fprintln(p.Out, p.Notice)
	}
	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return p.readTerminal(f)
	}

	fmt.Fprint(p.Out, p.Prompt)
	line, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return line, nil
}

func (p *PromptCode) readTerminal(f *os.File) (string, error) {
	state, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return "", err
	}
	defer term.Restore(int(f.Fd()), state)

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{f, p.Out}, p.Prompt)
	return t.ReadLine()
}

// readCode pulls a code from src and normalizes it.
func readCode(ctx context.Context, src CodeSource) (string, error) {
	code, err := src.Code(ctx)
	if err != nil {
		return "", NewError(ErrCodeEntry, nil, 0, "", "", err)
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return "", NewError(ErrCodeEntry, nil, 0, "", "empty code", nil)
	}
	return code, nil
}
