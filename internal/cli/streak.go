package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cfdaily/cfdaily/internal/app/daykey"
	"github.com/cfdaily/cfdaily/internal/daemon"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(streakCmd)
}

var streakCmd = &cobra.Command{
	Use:   "streak",
	Short: "Show current and best streaks",
	RunE:  runStreak,
}

func runStreak(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	id := d.Identities.Current()
	state := d.Ledger.Refresh(id, daykey.Today())

	fmt.Printf("Streaks for %s\n\n", id)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tCURRENT\tBEST")
	fmt.Fprintf(w, "rating-matched\t%d\t%d\n", state.SkillMatchedStreak, state.MaxSkillMatchedStreak)
	fmt.Fprintf(w, "random\t%d\t%d\n", state.UniversalStreak, state.MaxUniversalStreak)
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\n%d days completed in total\n", len(state.CompletedDays))
	return nil
}
