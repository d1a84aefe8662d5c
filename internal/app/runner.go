package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ggonzalez94/sushi-wallet/internal/config"
	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
	"github.com/ggonzalez94/sushi-wallet/internal/id"
	"github.com/ggonzalez94/sushi-wallet/internal/ledger"
	"github.com/ggonzalez94/sushi-wallet/internal/model"
	"github.com/ggonzalez94/sushi-wallet/internal/out"
	"github.com/ggonzalez94/sushi-wallet/internal/policy"
	"github.com/ggonzalez94/sushi-wallet/internal/schema"
	"github.com/ggonzalez94/sushi-wallet/internal/version"
)

type Runner struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{
		stdout: stdout,
		stderr: stderr,
		now:    time.Now,
	}
}

type runtimeState struct {
	runner       *Runner
	flags        config.GlobalFlags
	settings     config.Settings
	logger       *zap.Logger
	root         *cobra.Command
	session      *session
	actionStore  *execution.Store
	lastCommand  string
	lastBlock    uint64
	lastWarnings []string
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{runner: r, logger: zap.NewNop()}
	root := state.newRootCommand()
	state.root = root
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	root.SilenceUsage = true
	root.SilenceErrors = true

	err := root.Execute()
	err = normalizeRunError(err)
	if err != nil {
		state.renderError("", err, state.lastWarnings)
	}
	state.close()
	if err != nil {
		return clierr.ExitCode(err)
	}
	return 0
}

func (s *runtimeState) close() {
	if s.session != nil {
		s.session.close()
		s.session = nil
	}
	if s.actionStore != nil {
		_ = s.actionStore.Close()
		s.actionStore = nil
	}
	_ = s.logger.Sync()
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   version.CLIName,
		Short: "Operate SushiWallet smart-contract wallets on a simulated mainnet fork",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			settings, err := config.Load(s.flags)
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "load configuration", err)
			}
			s.settings = settings
			s.logger = newLogger(s.runner.stderr, settings.LogLevel)

			path := trimRootPath(cmd.CommandPath())
			s.lastCommand = path
			return policy.CheckCommandAllowed(settings.EnableCommands, path)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.CodeUsage, "parse flags", err)
	})

	flags := cmd.PersistentFlags()
	flags.BoolVar(&s.flags.JSON, "json", false, "Output JSON (default)")
	flags.BoolVar(&s.flags.Plain, "plain", false, "Output plain text")
	flags.StringVar(&s.flags.Select, "select", "", "Select fields from data (comma-separated)")
	flags.BoolVar(&s.flags.ResultsOnly, "results-only", false, "Output only data payload")
	flags.StringVar(&s.flags.EnableCommands, "enable-commands", "", "Allowlist command paths (comma-separated)")
	flags.StringVar(&s.flags.Timeout, "timeout", "", "Command timeout, including the wait for the state lock")
	flags.StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")
	flags.StringVar(&s.flags.EnvFile, "env-file", "", "Path to a .env file with contract address overrides")
	flags.StringVar(&s.flags.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	flags.StringVar(&s.flags.StatePath, "state-path", "", "Path to the chain state database")
	flags.IntVar(&s.flags.DevAccount, "dev-account", config.DevAccountUnset, "Dev account index used by the dev key source")
	flags.StringVar(&s.flags.KeySource, "key-source", "", "Key source (dev|auto|env|file|keystore)")
	flags.BoolVar(&s.flags.NoSimulate, "no-simulate", false, "Skip preflight simulation before submitting transactions")

	cmd.AddCommand(newVersionCommand())
	cmd.AddCommand(s.newSchemaCommand())
	cmd.AddCommand(s.newNetworkCommand())
	cmd.AddCommand(s.newAccountsCommand())
	cmd.AddCommand(s.newChainCommand())
	cmd.AddCommand(s.newWalletCommand())
	cmd.AddCommand(s.newFarmCommand())
	cmd.AddCommand(s.newActionsCommand())
	return cmd
}

func newVersionCommand() *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			if long {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.Long())
				return
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.CLIVersion)
		},
	}
	cmd.Flags().BoolVar(&long, "long", false, "Print extended build metadata")
	return cmd
}

func (s *runtimeState) newSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [command path]",
		Short: "Print machine-readable command schema",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := schema.Build(s.root, strings.Join(args, " "))
			if err != nil {
				return clierr.Wrap(clierr.CodeUsage, "build schema", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), data, nil)
		},
	}
}

// mutating marks cmd as one that changes chain state.
func mutating(cmd *cobra.Command) *cobra.Command {
	if cmd.Annotations == nil {
		cmd.Annotations = map[string]string{}
	}
	cmd.Annotations[schema.MutatingAnnotation] = "true"
	return cmd
}

func isMutating(cmd *cobra.Command) bool {
	return cmd.Annotations[schema.MutatingAnnotation] == "true"
}

func newLogger(w io.Writer, level zapcore.Level) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), level)
	return zap.New(core).Named(version.CLIName)
}

func (s *runtimeState) chainID() int64 {
	if s.settings.Chain.ChainID == nil {
		return ledger.DefaultConfig().ChainID.Int64()
	}
	return s.settings.Chain.ChainID.Int64()
}

func (s *runtimeState) commandContext() (context.Context, context.CancelFunc) {
	timeout := s.settings.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

func (s *runtimeState) emitSuccess(commandPath string, data any, warnings []string) error {
	env := model.Envelope{
		Version:  model.EnvelopeVersion,
		Success:  true,
		Data:     data,
		Error:    nil,
		Warnings: warnings,
		Meta: model.EnvelopeMeta{
			RequestID:   id.NewRequestID(),
			Timestamp:   s.runner.now().UTC(),
			Command:     commandPath,
			BlockNumber: s.lastBlock,
			ChainID:     s.chainID(),
		},
	}
	return out.Render(s.runner.stdout, env, s.settings)
}

func (s *runtimeState) renderError(commandPath string, err error, warnings []string) {
	if strings.TrimSpace(commandPath) == "" {
		commandPath = s.lastCommand
		if commandPath == "" {
			commandPath = version.CLIName
		}
	}
	code := clierr.ExitCode(err)
	typ := "internal_error"
	message := err.Error()
	if cErr, ok := clierr.As(err); ok {
		message = cErr.Message
		if cErr.Cause != nil {
			message = fmt.Sprintf("%s: %v", cErr.Message, cErr.Cause)
		}
		typ = errorType(cErr.Code)
	}
	reason, _ := ledger.RevertReason(err)

	settings := s.settings
	if settings.OutputMode == "" {
		settings.OutputMode = "json"
	}
	settings.ResultsOnly = false
	settings.SelectFields = nil
	env := model.Envelope{
		Version: model.EnvelopeVersion,
		Success: false,
		Data:    []any{},
		Error: &model.ErrorBody{
			Code:    code,
			Type:    typ,
			Message: message,
			Reason:  reason,
		},
		Warnings: warnings,
		Meta: model.EnvelopeMeta{
			RequestID:   id.NewRequestID(),
			Timestamp:   s.runner.now().UTC(),
			Command:     commandPath,
			BlockNumber: s.lastBlock,
			ChainID:     s.chainID(),
		},
	}
	_ = out.Render(s.runner.stderr, env, settings)
}

func errorType(code clierr.Code) string {
	switch code {
	case clierr.CodeUsage:
		return "usage_error"
	case clierr.CodeUnauthorized:
		return "unauthorized"
	case clierr.CodeInsufficientFunds:
		return "insufficient_funds"
	case clierr.CodeReverted:
		return "reverted"
	case clierr.CodeNotFound:
		return "not_found"
	case clierr.CodeUnsupported:
		return "unsupported"
	case clierr.CodeStateLocked:
		return "state_locked"
	case clierr.CodeBlocked:
		return "command_blocked"
	case clierr.CodeSigner:
		return "signer_error"
	case clierr.CodeActionPlan:
		return "action_plan_error"
	case clierr.CodeActionSim:
		return "action_simulation_error"
	case clierr.CodeActionTimeout:
		return "action_timeout"
	default:
		return "internal_error"
	}
}

func trimRootPath(path string) string {
	parts := strings.Fields(path)
	if len(parts) <= 1 {
		return path
	}
	return strings.Join(parts[1:], " ")
}

func normalizeRunError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := clierr.As(err); ok {
		return err
	}
	if isLikelyUsageError(err) {
		return clierr.Wrap(clierr.CodeUsage, "invalid command input", err)
	}
	return clierr.Wrap(clierr.CodeInternal, "execute command", err)
}

func isLikelyUsageError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	patterns := []string{
		"unknown command",
		"unknown flag",
		"required flag(s)",
		"flag needs an argument",
		"requires at least",
		"requires exactly",
		"accepts ",
		"invalid argument",
		"invalid args",
	}
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
