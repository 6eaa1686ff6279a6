package main

import (
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configFileName = "rarities.yaml"

const exampleConfig = `# rarities configuration
#
# Every key can also be set through the environment with a RARITIES_
# prefix, for example RARITIES_STORE_DRIVER=sqlite.

api:
  base_url: "https://api.inaturalist.org/v1"
  # Identify yourself to the API. Please include contact info.
  user_agent: ""
  # Minimum gap between requests. The public API asks for ~1/s.
  delay: 1s
  timeout: 30s
  retry:
    max_attempts: 8
    initial_backoff_ms: 1000
    max_backoff_ms: 60000
    multiplier: 2.0
    jitter_fraction: 0.25

scan:
  # Pages of recent observations to check per taxon before recording
  # "nothing found". 8 pages x 10 observations each.
  max_pages: 8
  # Taxa per global-count request. The API caps lookups at 500 ids.
  batch_size: 200

store:
  # json or sqlite
  driver: json
  # Defaults to <report.dir>/<login>.recency.json (or .db) per user.
  path: ""

report:
  dir: rarity-report
  top: 20
  html: true
  xlsx: false
  photos: true

log:
  level: info
  format: console
`

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the rarities.yaml configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an annotated example rarities.yaml",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configFileName); err == nil {
			return eris.Errorf("%s already exists, remove it first", configFileName)
		}
		if err := os.WriteFile(configFileName, []byte(exampleConfig), 0o644); err != nil {
			return eris.Wrap(err, "write config file")
		}
		fmt.Printf("wrote %s\n", configFileName)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Prints the merged result of defaults, rarities.yaml, and RARITIES_* environment variables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return eris.Wrap(err, "marshal config")
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
