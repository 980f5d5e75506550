package cli

import (
	"fmt"
	"strings"

	"github.com/cfdaily/cfdaily/internal/daemon"
	"github.com/spf13/cobra"
)

func init() {
	calendarCmd.Flags().StringVar(&calendarMonth, "month", "", "Month to show as YYYY-MM (default: current month)")
	rootCmd.AddCommand(calendarCmd)
}

var calendarMonth string

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show the monthly completion calendar",
	RunE:  runCalendar,
}

func runCalendar(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	cal := d.Ledger.Calendar(d.Identities.Current(), calendarMonth)

	fmt.Printf("%s\n\n", cal.Title)
	fmt.Println(" Su  Mo  Tu  We  Th  Fr  Sa")

	var row strings.Builder
	row.WriteString(strings.Repeat("    ", cal.LeadingEmpty))
	col := cal.LeadingEmpty
	for _, day := range cal.Days {
		row.WriteString(fmt.Sprintf("%3s ", cellFor(day.DayOfMonth, day.SkillMatchedSolved, day.UniversalSolved)))
		col++
		if col == 7 {
			fmt.Println(strings.TrimRight(row.String(), " "))
			row.Reset()
			col = 0
		}
	}
	if row.Len() > 0 {
		fmt.Println(strings.TrimRight(row.String(), " "))
	}

	fmt.Println("\n  *  both solved   +  one solved")
	return nil
}

// cellFor renders one day: the day number, decorated when solved.
func cellFor(dayOfMonth int, skill, universal bool) string {
	switch {
	case skill && universal:
		return fmt.Sprintf("%d*", dayOfMonth)
	case skill || universal:
		return fmt.Sprintf("%d+", dayOfMonth)
	default:
		return fmt.Sprintf("%d", dayOfMonth)
	}
}
