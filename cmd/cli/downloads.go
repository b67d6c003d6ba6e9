package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yourusername/flix-offline-go/api/handlers"
	"github.com/yourusername/flix-offline-go/internal/domain"
)

var startCmd = &cobra.Command{
	Use:   "start [content-id]",
	Short: "Start a download for the active profile (or --account/--profile)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		req := handlers.StartDownloadRequest{}
		req.ContentID = args[0]
		req.Title, _ = cmd.Flags().GetString("title")
		req.ImageURL, _ = cmd.Flags().GetString("image")
		req.SizeLabel, _ = cmd.Flags().GetString("size")
		req.MediaType, _ = cmd.Flags().GetString("media-type")
		req.AccountID, _ = cmd.Flags().GetString("account")
		req.ProfileID, _ = cmd.Flags().GetString("profile")
		if season, _ := cmd.Flags().GetString("season"); season != "" {
			req.SeasonLabel = &season
		}

		var download domain.Download
		exitOnError(doJSON(http.MethodPost, "/api/v1/downloads", req, &download))

		fmt.Printf("Download started!\n")
		fmt.Printf("ID:    %s\n", download.ID)
		fmt.Printf("Title: %s\n", download.Title)
		fmt.Printf("Size:  %s\n", download.SizeLabel)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List downloads of the active profile (or --account/--profile)",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		var list handlers.DownloadListResponse
		exitOnError(doJSON(http.MethodGet, listPath(cmd), nil, &list))

		if list.Count == 0 {
			fmt.Printf("No downloads for %s\n", list.Owner)
			return
		}
		printDownloads(os.Stdout, list.Downloads)
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get download details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		var download domain.Download
		exitOnError(doJSON(http.MethodGet, "/api/v1/downloads/"+url.PathEscape(args[0]), nil, &download))

		fmt.Printf("Download Details:\n")
		fmt.Printf("  ID:       %s\n", download.ID)
		fmt.Printf("  Content:  %s (%s)\n", download.ContentID, download.Kind)
		fmt.Printf("  Title:    %s\n", displayTitle(download))
		fmt.Printf("  Owner:    %s\n", download.Owner)
		fmt.Printf("  State:    %s\n", download.State)
		fmt.Printf("  Progress: %d%%\n", download.ProgressPercent)
		fmt.Printf("  Left:     %s\n", remaining(download))
		fmt.Printf("  Size:     %s\n", download.SizeLabel)
		fmt.Printf("  Created:  %s\n", download.CreatedDateLabel)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle [id]",
	Short: "Pause a running download or resume a paused one",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		var result struct {
			ID    string               `json:"id"`
			State domain.DownloadState `json:"state"`
		}
		exitOnError(doJSON(http.MethodPost, "/api/v1/downloads/"+url.PathEscape(args[0])+"/toggle", nil, &result))
		fmt.Printf("Download %s is now %s\n", truncate(result.ID, 8), result.State)
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		var result struct {
			Removed bool `json:"removed"`
		}
		exitOnError(doJSON(http.MethodDelete, "/api/v1/downloads/"+url.PathEscape(args[0]), nil, &result))
		if result.Removed {
			fmt.Println("Download removed")
		} else {
			fmt.Println("Nothing to remove")
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every download of the active profile (or --account/--profile)",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		path := "/api/v1/downloads"
		account, _ := cmd.Flags().GetString("account")
		profile, _ := cmd.Flags().GetString("profile")
		if account != "" || profile != "" {
			path = ownerPath(account, profile)
		}

		var result struct {
			Removed int `json:"removed"`
		}
		exitOnError(doJSON(http.MethodDelete, path, nil, &result))
		fmt.Printf("Removed %d download(s)\n", result.Removed)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics for the active profile",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		var stats domain.DownloadStats
		exitOnError(doJSON(http.MethodGet, "/api/v1/downloads/stats", nil, &stats))

		fmt.Println("Download Statistics:")
		fmt.Printf("  Total:       %d\n", stats.Total)
		fmt.Printf("  Downloading: %d\n", stats.Downloading)
		fmt.Printf("  Paused:      %d\n", stats.Paused)
		fmt.Printf("  Completed:   %d\n", stats.Completed)
	},
}

func init() {
	startCmd.Flags().StringP("title", "t", "", "Title (optional when the catalog cache has the content)")
	startCmd.Flags().String("image", "", "Image URL")
	startCmd.Flags().String("season", "", "Season label, marks the content as a series")
	startCmd.Flags().String("size", "", "Size label (random when empty)")
	startCmd.Flags().String("media-type", "", "Explicit media type (movie, tv)")

	for _, cmd := range []*cobra.Command{startCmd, listCmd, clearCmd} {
		cmd.Flags().StringP("account", "a", "", "Account id instead of the active session")
		cmd.Flags().StringP("profile", "p", "", "Profile id instead of the active session")
	}
}

func ownerPath(account, profile string) string {
	owner := domain.ResolveOwner(account, profile)
	return "/api/v1/owners/" + url.PathEscape(owner.AccountID) + "/" + url.PathEscape(owner.ProfileID) + "/downloads"
}

func listPath(cmd *cobra.Command) string {
	account, _ := cmd.Flags().GetString("account")
	profile, _ := cmd.Flags().GetString("profile")
	if account == "" && profile == "" {
		return "/api/v1/downloads"
	}
	return ownerPath(account, profile)
}

func displayTitle(d domain.Download) string {
	if d.SeasonLabel != nil && *d.SeasonLabel != "" {
		return d.Title + " - " + *d.SeasonLabel
	}
	return d.Title
}

func remaining(d domain.Download) string {
	if d.RemainingEstimate == nil {
		return "-"
	}
	return *d.RemainingEstimate
}

func printDownloads(out io.Writer, downloads []domain.Download) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATE\tPROGRESS\tLEFT\tSIZE\tCREATED")
	for _, d := range downloads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d%%\t%s\t%s\t%s\n",
			truncate(d.ID, 8),
			truncate(displayTitle(d), 40),
			d.State,
			d.ProgressPercent,
			remaining(d),
			d.SizeLabel,
			d.CreatedDateLabel)
	}
	w.Flush()
}
