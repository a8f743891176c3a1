package cli

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/oblivisheee/aum-engine/cmd/rpc"
	"github.com/oblivisheee/aum-engine/controller"
	"github.com/oblivisheee/aum-engine/lib"
	"github.com/oblivisheee/aum-engine/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rootCmd = &cobra.Command{
	Use:   "aum",
	Short: "the aum wallet fleet engine",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config = InitializeDataDirectory(DataDir, ConfigFile, lib.NewDefaultLogger())
		l = lib.NewLogger(lib.LoggerConfig{Level: config.GetLogLevel()}, config.DataDirPath)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(rpc.SoftwareVersion)
	},
}

var (
	config, l           = lib.Config{}, lib.LoggerI(nil)
	DataDir, ConfigFile = "", ""
)

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(clientCmd)
	rootCmd.PersistentFlags().StringVar(&DataDir, "data-dir", lib.DefaultDataDirPath(), "custom data directory location")
	rootCmd.PersistentFlags().StringVar(&ConfigFile, "config", lib.ConfigFilePath, "config file name inside the data directory (.json, .toml or .yaml)")
}

// Execute() runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "start the wallet fleet engine",
	Run: func(cmd *cobra.Command, args []string) {
		Start()
	},
}

// Start() is the entrypoint of the engine
func Start() {
	// initialize the metrics server
	metrics := lib.NewMetricsServer(config.MetricsConfig, l)
	// open the key storage, the password is only needed for encrypted keys
	var password []byte
	if config.Encrypt {
		password = getPassword(l)
	}
	db, err := store.New(config.StoreConfig, password, l.WithPrefix("store"))
	if err != nil {
		l.Fatal(err.Error())
	}
	// create a new instance of the engine
	app, err := controller.New(config, db, metrics, l)
	if err != nil {
		l.Fatal(err.Error())
	}
	// initialize the rpc server
	rpcServer := rpc.NewServer(app, config.RPCConfig, metrics, l.WithPrefix("rpc"))
	// start the metrics server
	metrics.Start()
	// start the engine
	if err = app.Start(); err != nil {
		l.Fatal(err.Error())
	}
	// start the rpc server
	rpcServer.Start()
	// block until a kill signal is received
	waitForKill()
	// gracefully stop the rpc server before the engine it calls into
	rpcServer.Stop()
	app.Stop()
	// gracefully stop the metrics server
	metrics.Stop()
	// exit
	os.Exit(0)
}

// waitForKill() blocks until a kill signal is received
func waitForKill() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGABRT)
	// block until kill signal is received
	s := <-stop
	l.Infof("Exit command %s received", s)
}

// getPassword() reads the keystore password from the environment or the terminal
func getPassword(log lib.LoggerI) []byte {
	if pwd := os.Getenv(lib.KeystorePasswordEnv); pwd != "" {
		return []byte(pwd)
	}
	log.Infof("Enter the keystore password:")
	password, e := term.ReadPassword(int(os.Stdin.Fd()))
	if e != nil {
		log.Fatal(e.Error())
	}
	if len(password) == 0 {
		log.Infof("Password cannot be empty")
		return getPassword(log)
	}
	return password
}

// InitializeDataDirectory() populates the data directory with a default configuration if missing
func InitializeDataDirectory(dataDirPath, configFile string, log lib.LoggerI) lib.Config {
	// make the data dir if missing
	if err := os.MkdirAll(dataDirPath, os.ModePerm); err != nil {
		log.Fatal(err.Error())
	}
	// make the config file if missing
	configFilePath := filepath.Join(dataDirPath, configFile)
	if _, err := os.Stat(configFilePath); errors.Is(err, os.ErrNotExist) {
		log.Infof("Creating %s file", configFile)
		c := lib.DefaultConfig()
		c.DataDirPath = dataDirPath
		if err = c.WriteToFile(configFilePath); err != nil {
			log.Fatal(err.Error())
		}
	}
	// load the config file
	c, err := lib.NewConfigFromFile(configFilePath)
	if err != nil {
		log.Fatal(err.Error())
	}
	c.DataDirPath = dataDirPath
	return c
}

func writeToConsole(a any, err error) {
	if err != nil {
		l.Fatal(err.Error())
	}
	switch a.(type) {
	case int, uint32, uint64:
		p := message.NewPrinter(language.English)
		if _, err := p.Printf("%d\n", a); err != nil {
			l.Fatal(err.Error())
		}
	case string, *string:
		fmt.Println(a)
	default:
		s, err := lib.MarshalJSONIndentString(a)
		if err != nil {
			l.Fatal(err.Error())
		}
		fmt.Println(s)
	}
}
