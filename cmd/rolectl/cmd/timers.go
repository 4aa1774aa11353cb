package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/veylabs/rolegate/mongodb"
)

var timersCmd = &cobra.Command{
	Use:   "timers",
	Short: "List all gift timers and their age",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo := mongodb.NewTimerRepository(db)
		timers, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIKTOK USERNAME\tLAST GIFT\tAGE")
		for _, timer := range timers {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				timer.TikTokUsername,
				timer.LastGiftAt.Format("2006-01-02 15:04:05"),
				now.Sub(timer.LastGiftAt).Round(time.Minute))
		}
		return w.Flush()
	},
}
