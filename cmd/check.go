package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chimio/inxlocker/internal/hook"
	"github.com/chimio/inxlocker/internal/intent"
	"github.com/chimio/inxlocker/internal/prefs"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Classify an intent against the current settings without acting on it",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("action", "", "Intent action")
	checkCmd.Flags().String("data", "", "Intent data URI")
	checkCmd.Flags().String("type", "", "Intent MIME type")
	checkCmd.Flags().String("component", "", "Explicit component as package/class")
	checkCmd.Flags().String("package", "", "Package scope")
	checkCmd.Flags().String("flags", "0", "Launch flags, e.g. 0x10000000")
	rootCmd.AddCommand(checkCmd)
}

func intentFromFlags(cmd *cobra.Command) (*intent.Intent, error) {
	in := &intent.Intent{}
	in.Action, _ = cmd.Flags().GetString("action")
	in.Data, _ = cmd.Flags().GetString("data")
	in.Type, _ = cmd.Flags().GetString("type")
	in.Package, _ = cmd.Flags().GetString("package")

	if c, _ := cmd.Flags().GetString("component"); c != "" {
		cn, err := intent.ParseComponentName(c)
		if err != nil {
			return nil, fmt.Errorf("--component: %w", err)
		}
		in.Component = cn
	}

	flags, _ := cmd.Flags().GetString("flags")
	f, err := strconv.ParseUint(flags, 0, 32)
	if err != nil {
		return nil, fmt.Errorf("--flags: %w", err)
	}
	in.Flags = intent.Flags(f)
	return in, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	dir, err := settingsDir()
	if err != nil {
		return err
	}
	in, err := intentFromFlags(cmd)
	if err != nil {
		return err
	}

	ic := hook.New(prefs.NewStore(dir), nil, hook.DefaultOptions)
	res := ic.DryRun(in)

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("json.MarshalIndent: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
