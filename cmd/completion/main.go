package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ncecere/completions"
	"github.com/ncecere/completions/internal/config"
	"github.com/ncecere/completions/internal/logging"
	"github.com/ncecere/completions/middleware"
	"github.com/ncecere/completions/registry"
	"github.com/ncecere/completions/transport"
)

var (
	configFile string
	verbose    bool
	asJSON     bool
	render     bool
)

func main() {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "completion [prompt...]",
		Short: "Request a text completion",
		Long: `Send one request to an OpenAI-compatible completions endpoint and print
the result. The prompt is taken from the arguments, or from stdin when no
arguments are given. Defaults can be kept in a YAML, JSON or TOML file
passed with --config; flags override the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), v, args, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "configuration file with default parameters")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log transport calls to stderr")

	f := rootCmd.Flags()
	f.StringP(keyModel, "m", "default", "model id or alias")
	f.Int(keyMaxTokens, 0, "maximum number of tokens to generate")
	f.Float64(keyTemperature, 0, "sampling temperature in [0, 2]")
	f.Float64(keyTopP, 0, "nucleus sampling probability mass in [0, 1]")
	f.IntP(keyN, "n", 0, "number of completions to generate")
	f.StringSlice(keyStop, nil, "stop sequence (repeatable, at most 4)")
	f.String(keySuffix, "", "text that comes after the completion")
	f.Bool(keyEcho, false, "echo the prompt in the output")
	f.Int(keyLogProbs, 0, "return log probabilities of the top N tokens")
	f.Float64(keyPresencePenalty, 0, "presence penalty in [-2, 2]")
	f.Float64(keyFrequencyPenalty, 0, "frequency penalty in [-2, 2]")
	f.Int(keyBestOf, 0, "number of server-side candidates")
	f.String(keyUser, "", "end-user identifier")
	f.IntSlice(keyTokens, nil, "prompt given as token ids instead of text")
	f.BoolVar(&asJSON, "json", false, "print the raw JSON response")
	f.BoolVar(&render, "render", false, "render the completion as markdown")

	if err := v.BindPFlags(f); err != nil {
		fail(err)
	}
	cobra.OnInitialize(func() {
		if configFile == "" {
			return
		}
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			fail(fmt.Errorf("failed to read config file: %w", err))
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		fail(err)
	}
}

func run(ctx context.Context, v *viper.Viper, args []string, stdin io.Reader, out io.Writer) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	logger := logging.New(level)

	base, err := transport.NewHTTPTransport(cfg.ClientOptions())
	if err != nil {
		return err
	}
	client, err := completions.NewClient(middleware.Wrap(base,
		middleware.RequestID(),
		middleware.Logging(middleware.LoggingOptions{Logger: logger, LogRequest: verbose, LogResponse: verbose, LogErrors: true}),
	))
	if err != nil {
		return err
	}

	if promptMissing(v, args, isTerminal(stdin)) {
		return fmt.Errorf("no prompt given; pass it as arguments, with --tokens or on stdin")
	}
	req, err := buildRequest(v, registry.NewInMemoryRegistry(cfg.ModelAliases()), args, stdin)
	if err != nil {
		return err
	}

	res, err := client.CreateCompletion(ctx, req)
	if err != nil {
		return err
	}
	return printResponse(out, res)
}

func printResponse(out io.Writer, res *completions.CreateCompletionResponse) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	for i, choice := range res.Choices {
		if len(res.Choices) > 1 {
			fmt.Fprintf(out, "--- choice %d (%s)\n", i, choice.FinishReason)
		}
		text := choice.Text
		if render {
			rendered, err := glamour.Render(text, "dark")
			if err == nil {
				text = rendered
			}
		}
		fmt.Fprintln(out, text)
	}
	return nil
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

func fail(err error) {
	color.New(color.FgRed).Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
