package cli

import (
	"context"
	"fmt"

	"github.com/cfdaily/cfdaily/internal/app/daykey"
	"github.com/cfdaily/cfdaily/internal/daemon"
	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/spf13/cobra"
)

func init() {
	statusCmd.Flags().StringVar(&statusHandle, "handle", "", "Switch to this Codeforces handle first (empty string resets to guest)")
	rootCmd.AddCommand(statusCmd)
}

var statusHandle string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active identity and today's completion state",
	Long: `Show the active identity and today's completion state from the local
ledger, without contacting the judge. Use "cfdaily check" to refresh
from the judge first.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if cmd.Flags().Changed("handle") {
		id, err := d.Identities.SetCurrent(context.Background(), statusHandle)
		if err != nil {
			return fmt.Errorf("switch identity: %w", err)
		}
		fmt.Printf("Switched to %s\n\n", id)
	}

	id := d.Identities.Current()
	if id == domain.GuestIdentity {
		fmt.Println("Identity: guest")
	} else {
		profile := d.Identities.Profile(id)
		fmt.Printf("Identity: %s", id)
		if profile.Rating > 0 {
			fmt.Printf(" (%s, %d)", profile.Rank, profile.Rating)
		}
		fmt.Println()
	}

	today := daykey.Today()
	state := d.Ledger.Refresh(id, today)

	skillMark, universalMark := "[ ]", "[ ]"
	if rec, ok := state.CompletedDays[today]; ok {
		if rec.SkillMatchedSolved {
			skillMark = "[x]"
		}
		if rec.UniversalSolved {
			universalMark = "[x]"
		}
	}
	fmt.Printf("Today (%s): %s rating-matched  %s random\n", today, skillMark, universalMark)
	if state.LastRemoteCheck != "" {
		fmt.Printf("Last judge check: %s\n", state.LastRemoteCheck)
	}
	return nil
}
