package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Procodx/familyGuardian/config"
	"github.com/Procodx/familyGuardian/pkg/cmd/cli"
)

var cfgFile string
var c = new(config.Config)
var cmdHandler = cli.NewHandler(c)

var (
	Version   = "dev-master"
	BuildTime = "undefined"
	GitHash   = "undefined"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "guardian",
	Short: "FamilyGuardian presence and emergency escalation engine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cmd.UsageString())
		os.Exit(2)
	},
}

// Execute runs the engine and is called by main.main()
func Execute() {
	c.BuildTime = BuildTime
	c.BuildVersion = Version
	c.BuildHash = GitHash

	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// enable ability to specify config file via flag
		viper.SetConfigFile(cfgFile)
	} else {
		path := absPathify("$HOME")
		if _, err := os.Stat(filepath.Join(path, ".guardian.yml")); err != nil {
			_, _ = os.Create(filepath.Join(path, ".guardian.yml"))
		}

		viper.SetConfigType("yaml")
		viper.SetConfigName(".guardian") // name of config file (without extension)
		viper.AddConfigPath("$HOME")     // adding home directory as first search path
	}
	viper.AutomaticEnv() // read in environment variables that match

	// Fetch settings
	viper.BindEnv("PORT")
	viper.SetDefault("PORT", 4001)

	viper.BindEnv("HOST")
	viper.SetDefault("HOST", "")

	viper.BindEnv("DATABASE_URL")
	viper.SetDefault("DATABASE_URL", "")

	viper.BindEnv("NATS_URL")
	viper.SetDefault("NATS_URL", "")

	viper.BindEnv("JWT_SECRET")
	viper.SetDefault("JWT_SECRET", "")

	viper.BindEnv("ADMIN_EMAIL")
	viper.SetDefault("ADMIN_EMAIL", "")

	viper.BindEnv("ADMIN_PASSWORD_HASH")
	viper.SetDefault("ADMIN_PASSWORD_HASH", "")

	viper.BindEnv("SMS_API_KEY")
	viper.SetDefault("SMS_API_KEY", "")

	viper.BindEnv("SMS_BASE_URL")
	viper.SetDefault("SMS_BASE_URL", "")

	viper.BindEnv("SMS_SENDER_ID")
	viper.SetDefault("SMS_SENDER_ID", "FamilyGuard")

	viper.BindEnv("ALERT_FALLBACK_NUMBER")
	viper.SetDefault("ALERT_FALLBACK_NUMBER", "")

	viper.BindEnv("SESSION_TIMEOUT")
	viper.SetDefault("SESSION_TIMEOUT", 120)

	viper.BindEnv("OFFLINE_OVERRIDES_CRITICAL")
	viper.SetDefault("OFFLINE_OVERRIDES_CRITICAL", true)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf(`Config file not found because "%s"`, err)
		fmt.Println("")
	}

	if err := viper.Unmarshal(c); err != nil {
		log.Fatal(fmt.Sprintf("Could not read config because %s.", err))
	}
}

func absPathify(inPath string) string {
	if strings.HasPrefix(inPath, "$HOME") {
		inPath = userHomeDir() + inPath[5:]
	}

	if strings.HasPrefix(inPath, "$") {
		end := strings.Index(inPath, string(os.PathSeparator))
		inPath = os.Getenv(inPath[1:end]) + inPath[end:]
	}

	if filepath.IsAbs(inPath) {
		return filepath.Clean(inPath)
	}

	p, err := filepath.Abs(inPath)
	if err == nil {
		return filepath.Clean(p)
	}
	return ""
}

func userHomeDir() string {
	if runtime.GOOS == "windows" {
		home := os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
		if home == "" {
			home = os.Getenv("USERPROFILE")
		}
		return home
	}
	return os.Getenv("HOME")
}
