package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/veylabs/rolegate/mongodb"
)

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List all TikTok → Discord identity links",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := mongodb.NewLinkRepository(cmd.Context(), db)
		if err != nil {
			return err
		}
		links, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIKTOK USERNAME\tDISCORD ID\tLINKED AT")
		for _, link := range links {
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				link.TikTokUsername, link.DiscordID, link.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}
