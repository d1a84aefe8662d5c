package app

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	clierr "github.com/ggonzalez94/sushi-wallet/internal/errors"
	"github.com/ggonzalez94/sushi-wallet/internal/execution"
)

func (s *runtimeState) newActionsCommand() *cobra.Command {
	root := &cobra.Command{Use: "actions", Short: "Inspect persisted actions"}

	var status, intent, from string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List actions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := s.ensureActionStore(); err != nil {
				return err
			}
			items, err := s.actionStore.List(execution.ListFilter{
				Status:     strings.TrimSpace(status),
				IntentType: strings.TrimSpace(intent),
				From:       strings.TrimSpace(from),
				Limit:      limit,
			})
			if err != nil {
				return clierr.Wrap(clierr.CodeInternal, "list actions", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), items, nil)
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status (planned|running|completed|failed)")
	listCmd.Flags().StringVar(&intent, "intent", "", "Filter by intent, e.g. wallet_deposit or farm_enter")
	listCmd.Flags().StringVar(&from, "from", "", "Filter by sender address")
	listCmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of actions")

	var actionID string
	showCmd := &cobra.Command{
		Use:   "show [action-id]",
		Short: "Show one action with its steps",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				actionID = args[0]
			}
			actionID = strings.TrimSpace(actionID)
			if actionID == "" {
				return clierr.New(clierr.CodeUsage, "action id is required")
			}
			if err := s.ensureActionStore(); err != nil {
				return err
			}
			action, err := s.actionStore.Get(actionID)
			if err != nil {
				if errors.Is(err, execution.ErrActionNotFound) {
					return clierr.Wrap(clierr.CodeNotFound, "action "+actionID+" not found", err)
				}
				return clierr.Wrap(clierr.CodeInternal, "load action", err)
			}
			return s.emitSuccess(trimRootPath(cmd.CommandPath()), action, nil)
		},
	}
	showCmd.Flags().StringVar(&actionID, "action-id", "", "Action identifier")

	root.AddCommand(listCmd)
	root.AddCommand(showCmd)
	return root
}
