package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var (
		baseURL         string
		token           string
		format          string
		out             string
		includeInactive bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the visible roster as json or xlsx",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(baseURL, token)
			if err != nil {
				return err
			}

			query := url.Values{}
			if includeInactive {
				query.Set("include_inactive", "true")
			}

			switch format {
			case "json":
				body, err := client.get(cmd.Context(), "/personnel/api/employees", query)
				if err != nil {
					return err
				}
				var pretty json.RawMessage = body
				data, err := json.MarshalIndent(pretty, "", "  ")
				if err != nil {
					return err
				}
				return writeOutput(out, data)
			case "xlsx":
				if out == "" {
					return withCode(exitUsage, fmt.Errorf("--out is required for xlsx export"))
				}
				body, err := client.get(cmd.Context(), "/personnel/api/employees/export", query)
				if err != nil {
					return err
				}
				return os.WriteFile(out, body, 0o644)
			default:
				return withCode(exitUsage, fmt.Errorf("unknown format: %q (want json or xlsx)", format))
			}
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:3200", "server base URL")
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file (default stdout for json)")
	cmd.Flags().BoolVar(&includeInactive, "include-inactive", false, "include inactive employees")
	return cmd
}

func writeOutput(out string, data []byte) error {
	if out == "" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(out, data, 0o644)
}
