package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/talentmatch/internal/credentials"
)

const (
	app = "talentmatch"
)

type Config struct {
	Catalog     string              `mapstructure:"catalog"`
	Profile     string              `mapstructure:"profile"`
	Listings    string              `mapstructure:"listings"`
	Candidates  string              `mapstructure:"candidates"`
	ExcludeFile string              `mapstructure:"exclude-file"`
	Credentials *credentials.Config `mapstructure:"credentials"`
	Match       *MatchConfig        `mapstructure:"match"`
}

type MatchConfig struct {
	Limit        int `mapstructure:"limit"`
	MinimumScore int `mapstructure:"minimum-score"`
	Workers      int `mapstructure:"workers"`
	Exclude      *struct {
		Employers []string `mapstructure:"employers"`
	} `mapstructure:"exclude"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentmatch ranks job listings for candidate profiles and validates skills with short assessments",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("credentials.file", "TALENTMATCH_CREDENTIALS_FILE"); err != nil {
		log.Fatalf("binding TALENTMATCH_CREDENTIALS_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("credentials.redis.addr", "TALENTMATCH_REDIS_ADDR"); err != nil {
		log.Fatalf("binding TALENTMATCH_REDIS_ADDR environment variable: %v", err)
	}

	viper.SetDefault("match.limit", 10)
	viper.SetDefault("match.workers", 4)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "candidate profile file (yaml or json)")
	rootCmd.PersistentFlags().String("catalog", "", "assessment catalog file. Default is the built-in catalog.")
	rootCmd.PersistentFlags().StringP("listings", "l", "", "file with job listings (yaml or json)")
	rootCmd.PersistentFlags().String("candidates", "", "file with candidate profiles (yaml or json)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	viper.BindPFlag("listings", rootCmd.PersistentFlags().Lookup("listings"))
	viper.BindPFlag("candidates", rootCmd.PersistentFlags().Lookup("candidates"))
}

func initConfig() {
	// The version command works without any config.
	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// A missing default config is fine: everything can come from flags.
	// An explicit or unparseable config is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Match == nil {
		config.Match = &MatchConfig{}
	}

	return config, nil
}

func (c *Config) excludedEmployers() []string {
	if c.Match == nil || c.Match.Exclude == nil {
		return nil
	}
	return c.Match.Exclude.Employers
}
