package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"legislation-chat-bot/internal/usecase/chat"
)

func newChatCmd(opts *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat about bills in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			render, err := newRenderer(plain)
			if err != nil {
				return err
			}

			session := a.chat.NewSession()
			out := cmd.OutOrStdout()
			scanner := bufio.NewScanner(cmd.InOrStdin())

			fmt.Fprintln(out, `Ask about Indiana bills (e.g. "What is HB 1221 about?"). Type "exit" to quit.`)
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				switch line {
				case "":
					continue
				case "exit", "quit":
					return nil
				}

				answer, err := a.chat.HandleMessage(cmd.Context(), session, line)
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
					continue
				}
				if err := printAnswer(out, render, answer); err != nil {
					return err
				}
			}
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown instead of rendering it")
	return cmd
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a single question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			render, err := newRenderer(plain)
			if err != nil {
				return err
			}

			answer, err := a.chat.HandleMessage(cmd.Context(), a.chat.NewSession(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printAnswer(cmd.OutOrStdout(), render, answer)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print raw markdown instead of rendering it")
	return cmd
}

type renderFunc func(markdown string) (string, error)

func newRenderer(plain bool) (renderFunc, error) {
	if plain {
		return func(md string) (string, error) { return md + "\n", nil }, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

func printAnswer(w io.Writer, render renderFunc, answer chat.Answer) error {
	out, err := render(answer.Markdown())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}
