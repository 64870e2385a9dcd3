package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	searchTerm string
	playerID   string
	startYear  string
	endYear    string
)

func init() {
	searchCmd.Flags().StringVar(&searchTerm, "term", "", "Name fragment to search for")
	searchCmd.MarkFlagRequired("term")
	profileCmd.Flags().StringVar(&playerID, "player-id", "", "The player id to build a profile for")
	profileCmd.MarkFlagRequired("player-id")
	topPlayersCmd.Flags().StringVar(&startYear, "start-year", "2017", "First year of the range")
	topPlayersCmd.Flags().StringVar(&endYear, "end-year", "", "Last year of the range")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(randomCmd)
	rootCmd.AddCommand(topPlayersCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search players by name fragment",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/players/search?term=" + url.QueryEscape(searchTerm))
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Fetch the aggregated profile document for a player",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/player/data?player_id=" + url.QueryEscape(playerID))
	},
}

var randomCmd = &cobra.Command{
	Use:   "random",
	Short: "Pick a random player with a meaningful match history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/dashboard/random-player")
	},
}

var topPlayersCmd = &cobra.Command{
	Use:   "top-players",
	Short: "Show the top ten players per year",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/api/dashboard/top-players?startYear=" + url.QueryEscape(startYear)
		if endYear != "" {
			endpoint += "&endYear=" + url.QueryEscape(endYear)
		}
		return performGetRequest(endpoint)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
