package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type treeTeam struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type treeSection struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Teams []treeTeam `json:"teams"`
}

type treeDepartment struct {
	ID       uint          `json:"id"`
	Name     string        `json:"name"`
	Sections []treeSection `json:"sections"`
}

func newTreeCmd() *cobra.Command {
	var (
		baseURL string
		token   string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the department/section/team hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(baseURL, token)
			if err != nil {
				return err
			}

			body, err := client.get(cmd.Context(), "/org/api/tree", nil)
			if err != nil {
				return err
			}

			var payload struct {
				Departments []treeDepartment `json:"departments"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return err
			}

			for _, d := range payload.Departments {
				fmt.Printf("%s (#%d)\n", d.Name, d.ID)
				for _, s := range d.Sections {
					fmt.Printf("  %s (#%d)\n", s.Name, s.ID)
					for _, team := range s.Teams {
						fmt.Printf("    %s (#%d)\n", team.Name, team.ID)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:3200", "server base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	return cmd
}
