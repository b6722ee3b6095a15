package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/huangsam/debtlens/internal/contract"
	"github.com/huangsam/debtlens/internal/opinion"
	"github.com/huangsam/debtlens/internal/outwriter"
	"github.com/spf13/cobra"
)

// opinionCmd asks the secondary model about one file.
var opinionCmd = &cobra.Command{
	Use:   "opinion <file>",
	Short: "Ask a language model whether a file looks AI generated.",
	Long: `Send one file to the secondary opinion model and print its structured verdict.

The content is truncated to --llm-char-budget characters. Use "-" to read the
file from stdin. Requires --llm-api-key or GEMINI_API_KEY.

Examples:
  # Review a local file
  debtlens opinion internal/server/server.go

  # Review piped content as JSON
  cat main.go | debtlens opinion - --output json`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		name, content, err := readOpinionInput(args[0])
		if err != nil {
			return err
		}
		client, err := opinion.New(rootCtx, cfg)
		if err != nil {
			return err
		}
		verdict, err := client.Opinion(rootCtx, name, content)
		if err != nil {
			return err
		}
		return outwriter.PrintOpinion(verdict, cfg)
	},
}

func readOpinionInput(arg string) (string, string, error) {
	if arg == "-" {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, cfg.MaxFileSize+1))
		if err != nil {
			return "", "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return "stdin", string(data), nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", contract.ErrInvalidInput, err)
	}
	return filepath.Base(arg), string(data), nil
}

// optionalOpinion returns a provider when a model API key is configured.
func optionalOpinion() contract.OpinionProvider {
	if cfg.LLMAPIKey == "" {
		return nil
	}
	client, err := opinion.New(rootCtx, cfg)
	if err != nil {
		contract.LogWarn("Secondary opinions disabled", err)
		return nil
	}
	return client
}
