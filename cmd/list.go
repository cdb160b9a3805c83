package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pawcal/pawcal/internal/backend"
	"github.com/pawcal/pawcal/internal/calendar"
	"github.com/pawcal/pawcal/internal/parser"
	"github.com/pawcal/pawcal/internal/reminder"
)

var listCmd = &cobra.Command{
	Use:   "list [date]",
	Short: "List a day's reminders and exit",
	Long: `List the reminders for a day in a simple text format and exit.

The date defaults to today and accepts the same forms as the go-to prompt:
2025-12-24, 12/24, tomorrow, next friday, in 3 days.`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	closeLog, err := setupLogging(nil)
	if err != nil {
		return err
	}
	defer closeLog()

	day := time.Now()
	if len(args) > 0 {
		input := strings.Join(args, " ")
		parsed, ok := parser.New(time.Now).Date(input)
		if !ok {
			return fmt.Errorf("could not understand date: %s", input)
		}
		day = parsed
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout*2)
	defer cancel()

	b, _, cleanup, err := openBackend(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	list, err := b.ListReminders(ctx)
	if err != nil {
		return fmt.Errorf("error getting reminders: %s", backend.ErrorMessage(err))
	}

	pets, err := b.ListPets(ctx, "")
	if err != nil {
		log.Warn().Err(err).Msg("pet names unavailable")
	}

	printDay(os.Stdout, day, list, reminder.NewPetCatalog(pets))
	return nil
}

// printDay writes the reminders falling on day, in time order.
func printDay(w io.Writer, day time.Time, list []reminder.Reminder, catalog reminder.PetCatalog) {
	key := reminder.FormatDateKey(day)
	grid := calendar.Build(day, list, day)

	fmt.Fprintf(w, "Reminders for %s:\n", day.Format(cfg.DateFormat))

	d, ok := grid.Find(key)
	if !ok || len(d.Reminders) == 0 {
		fmt.Fprintln(w, "No reminders found.")
		return
	}

	for _, r := range d.Reminders {
		clock, ok := reminder.TimeLabel(r)
		if !ok {
			clock = "--:--"
		}

		fmt.Fprintf(w, "  %s - %s [%s]\n", clock, reminder.Title(r), r.Status.Label())
		if owner, ok := reminder.OwnerLabel(r); ok {
			fmt.Fprintf(w, "    Owner: %s\n", owner)
		}

		names := r.PetNames
		if len(names) == 0 && len(r.PetIDs) > 0 {
			names = reminder.PetNames(r, catalog)
		}
		if len(names) > 0 {
			fmt.Fprintf(w, "    Pets: %s\n", strings.Join(names, ", "))
		}
	}
}
