package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/cfdaily/cfdaily/internal/app/cycle"
	"github.com/cfdaily/cfdaily/internal/daemon"
	"github.com/cfdaily/cfdaily/internal/domain"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Fetch today's problems and check your submissions now",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	vm := d.Orchestrator.RunCycle(context.Background(), cycle.TriggerManual)
	printViewModel(vm)
	return nil
}

// printViewModel renders a cycle result for the terminal.
func printViewModel(vm cycle.ViewModel) {
	fmt.Printf("Today: %s\n", vm.Day)
	if vm.Identity == domain.GuestIdentity {
		fmt.Println("Identity: guest (set a handle to get a rating-matched problem)")
	} else {
		fmt.Printf("Identity: %s", vm.Identity)
		if vm.Rank != "" {
			fmt.Printf(" (%s, %d)", vm.Rank, vm.Rating)
		}
		fmt.Println()
	}
	fmt.Println()

	if vm.Error != "" {
		fmt.Printf("  %s\n", vm.Error)
		return
	}

	printPick("Rating-matched", vm.Selection.SkillMatched, vm.SkillMatchedSolved)
	printPick("Random", vm.Selection.Universal, vm.UniversalSolved)
	fmt.Println()

	fmt.Printf("Streaks: rating %d (max %d), random %d (max %d)\n",
		vm.SkillMatchedStreak, vm.MaxSkillMatchedStreak,
		vm.UniversalStreak, vm.MaxUniversalStreak)

	if vm.RemoteDegraded {
		fmt.Println("Note: judge unreachable, solved state is last-known.")
	}
	fmt.Printf("Next problems in %s\n", (time.Duration(vm.CountdownSeconds) * time.Second).Round(time.Minute))
}

func printPick(label string, p *domain.ProblemRef, solved bool) {
	mark := "[ ]"
	if solved {
		mark = "[x]"
	}
	if p == nil {
		fmt.Printf("  %s %s: no suitable problem today\n", mark, label)
		return
	}
	fmt.Printf("  %s %s: %s (%d%s", mark, label, p.Name, p.ContestID, p.Index)
	if p.Rating > 0 {
		fmt.Printf(", rated %d", p.Rating)
	}
	fmt.Printf(")\n      %s\n", p.URL())
}
