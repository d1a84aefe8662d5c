package schema

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestBuildSchema(t *testing.T) {
	root := &cobra.Command{Use: "sushiwallet"}
	child := &cobra.Command{Use: "wallet", Short: "wallet cmds"}
	leaf := &cobra.Command{
		Use:         "deposit",
		Short:       "deposit ETH",
		Annotations: map[string]string{MutatingAnnotation: "true"},
	}
	leaf.Flags().String("amount", "", "amount in wei")
	leaf.Flags().String("secret", "", "hidden flag")
	_ = leaf.Flags().MarkHidden("secret")
	info := &cobra.Command{Use: "info", Short: "show wallet"}
	child.AddCommand(leaf, info)
	root.AddCommand(child)

	s, err := Build(root, "wallet deposit")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Path != "sushiwallet wallet deposit" || !s.Mutating {
		t.Fatalf("unexpected schema: %+v", s)
	}
	if len(s.Flags) != 1 || s.Flags[0].Name != "amount" {
		t.Fatalf("unexpected flags: %+v", s.Flags)
	}

	group, err := Build(root, "wallet")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if group.Mutating || len(group.Subcommands) != 2 {
		t.Fatalf("unexpected group schema: %+v", group)
	}
	if _, err := Build(root, "wallet nope"); err == nil {
		t.Fatal("expected unknown command error")
	}
}
