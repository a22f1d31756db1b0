// Package agent implements the interactive assistant behind `rebal assist`:
// a Gemini chat session seeded with the rendered rebalancing plan, so a user
// can question a proposed set of trades before executing them.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// defaultModel is the Gemini model used for the advisor chat.
const defaultModel = "gemini-2.0-flash"

const systemPrompt = `You are a cautious portfolio rebalancing advisor.
You are given a proposed rebalancing plan: per-account trades toward a target
sleeve allocation, per-account cash balancing, and estimated realized gains.
Answer the user's questions about this plan only. Explain trades, tax impact
and residual cash in plain language. Never invent positions or prices that are
not in the plan, and never present yourself as giving binding financial advice.`

// Agent runs the interactive advisor session.
type Agent struct {
	w    io.Writer
	r    *bufio.Reader
	plan string
	chat *genai.Chat
}

// New creates an advisor for the given rendered plan. Output goes to w
// (typically os.Stdout) and user input is read from r (typically os.Stdin).
func New(w io.Writer, r io.Reader, planMarkdown string) *Agent {
	return &Agent{
		w:    w,
		r:    bufio.NewReader(r),
		plan: planMarkdown,
	}
}

// Start opens the chat session and seeds it with the plan.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		},
	}
	history := []*genai.Content{
		{Role: genai.RoleUser, Parts: []*genai.Part{{Text: "Here is the plan under review:\n\n" + a.plan}}},
		{Role: genai.RoleModel, Parts: []*genai.Part{{Text: "I have read the plan. What would you like to know?"}}},
	}
	chat, err := client.Chats.Create(ctx, defaultModel, config, history)
	if err != nil {
		return err
	}
	a.chat = chat
	return nil
}

// ask sends one question and extracts the first textual answer.
func (a *Agent) ask(ctx context.Context, question string) (string, error) {
	resp, err := a.chat.Send(ctx, &genai.Part{Text: question})
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from advisor")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

const prompt = "assist> "

// Run starts the REPL session. Initial prompts are consumed before reading
// from the user; "bye" or EOF ends the session cleanly.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to rebal assist. Type 'bye' to exit.")
	for {
		fmt.Fprint(a.w, prompt)

		var input string
		if len(prompts) > 0 {
			input, prompts = prompts[0], prompts[1:]
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			line, err := a.r.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					return nil // clean exit on Ctrl+D
				}
				return err
			}
			input = line
		}

		if strings.TrimSpace(input) == "bye" {
			return nil
		}

		answer, err := a.ask(ctx, input)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, answer)
	}
}
